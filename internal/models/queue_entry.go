package models

import (
	"time"

	"gorm.io/datatypes"
)

// QueueStatus tracks a patient's progress through a doctor's daily queue.
type QueueStatus string

const (
	QueueWaiting        QueueStatus = "waiting"
	QueueInConsultation QueueStatus = "in_consultation"
	QueueDone           QueueStatus = "done"
	QueueAbsent         QueueStatus = "absent"
	QueueCancelled      QueueStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s QueueStatus) Terminal() bool {
	switch s {
	case QueueDone, QueueAbsent, QueueCancelled:
		return true
	}
	return false
}

// QueueEntry is created together with its appointment and duplicates the
// patient, doctor, date and time for queue queries.
type QueueEntry struct {
	BaseModel
	AppointmentID   string         `gorm:"size:36;not null;uniqueIndex" json:"appointmentId"`
	PatientID       string         `gorm:"size:36;not null;index" json:"patientId"`
	DoctorID        string         `gorm:"size:36;not null;index:idx_queue_doctor_date,priority:1" json:"doctorId"`
	Date            datatypes.Date `gorm:"not null;index:idx_queue_doctor_date,priority:2" json:"date"`
	AppointmentTime datatypes.Time `gorm:"not null" json:"appointmentTime"`
	Status          QueueStatus    `gorm:"size:20;not null;default:'waiting';index" json:"status"`
	CalledAt        *time.Time     `json:"calledAt,omitempty"`
	FinishedAt      *time.Time     `json:"finishedAt,omitempty"`

	Patient User `gorm:"foreignKey:PatientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}
