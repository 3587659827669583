package models

import (
	"time"

	"gorm.io/datatypes"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Terminal reports whether no further transition is allowed from s.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Appointment binds one patient to one doctor at one claimed slot.
// Doctor, date and times are copied from the slot at booking.
type Appointment struct {
	BaseModel
	PatientID   string            `gorm:"size:36;not null;index" json:"patientId"`
	DoctorID    string            `gorm:"size:36;not null;index:idx_appointments_doctor_date,priority:1" json:"doctorId"`
	SlotID      string            `gorm:"size:36;not null;index" json:"slotId"`
	Date        datatypes.Date    `gorm:"not null;index:idx_appointments_doctor_date,priority:2" json:"date"`
	StartTime   datatypes.Time    `gorm:"not null" json:"startTime"`
	EndTime     datatypes.Time    `gorm:"not null" json:"endTime"`
	Status      AppointmentStatus `gorm:"size:20;not null;default:'confirmed';index" json:"status"`
	CancelledAt *time.Time        `json:"cancelledAt,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`

	// Relations. SlotID is a plain reference: a freed slot may be deleted
	// while the cancelled appointment that once claimed it is kept.
	Patient    User        `gorm:"foreignKey:PatientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Doctor     User        `gorm:"foreignKey:DoctorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	QueueEntry *QueueEntry `gorm:"foreignKey:AppointmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
