package scheduling

import (
	"time"

	"gorm.io/datatypes"

	"hospital-frontdesk-server/internal/models"
)

// CreateSlotInput describes a new slot. DoctorID may be empty when a doctor
// creates a slot for themselves.
type CreateSlotInput struct {
	DoctorID string
	Date     time.Time
	Start    datatypes.Time
	End      datatypes.Time
}

// BookInput names the patient and the slot to claim. PatientID may be empty
// when a patient books for themselves.
type BookInput struct {
	PatientID string
	SlotID    string
}

// AppointmentFilter narrows ListAppointments. Zero fields match everything.
type AppointmentFilter struct {
	Status    models.AppointmentStatus
	DoctorID  string
	PatientID string
	Date      *time.Time
}

// SlotView is a slot as returned to callers.
type SlotView struct {
	ID        string `json:"id"`
	DoctorID  string `json:"doctorId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

func newSlotView(s models.Slot) SlotView {
	return SlotView{
		ID:        s.ID,
		DoctorID:  s.DoctorID,
		Date:      models.FormatDate(s.Date),
		StartTime: models.FormatTime(s.StartTime),
		EndTime:   models.FormatTime(s.EndTime),
		Available: s.Available,
	}
}

// AppointmentView is an appointment with the names of both parties and the
// state of its queue entry.
type AppointmentView struct {
	ID           string                   `json:"id"`
	PatientID    string                   `json:"patientId"`
	PatientName  string                   `json:"patientName"`
	DoctorID     string                   `json:"doctorId"`
	DoctorName   string                   `json:"doctorName"`
	Specialty    string                   `json:"specialty,omitempty"`
	SlotID       string                   `json:"slotId"`
	Date         string                   `json:"date"`
	StartTime    string                   `json:"startTime"`
	EndTime      string                   `json:"endTime"`
	Status       models.AppointmentStatus `json:"status"`
	QueueEntryID string                   `json:"queueEntryId,omitempty"`
	QueueStatus  models.QueueStatus       `json:"queueStatus,omitempty"`
	CreatedAt    time.Time                `json:"createdAt"`
	CancelledAt  *time.Time               `json:"cancelledAt,omitempty"`
	CompletedAt  *time.Time               `json:"completedAt,omitempty"`
}

// newAppointmentView expects Patient, Doctor and QueueEntry to be preloaded.
func newAppointmentView(a models.Appointment) AppointmentView {
	v := AppointmentView{
		ID:          a.ID,
		PatientID:   a.PatientID,
		PatientName: a.Patient.FullName(),
		DoctorID:    a.DoctorID,
		DoctorName:  a.Doctor.FullName(),
		Specialty:   a.Doctor.Specialty,
		SlotID:      a.SlotID,
		Date:        models.FormatDate(a.Date),
		StartTime:   models.FormatTime(a.StartTime),
		EndTime:     models.FormatTime(a.EndTime),
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
		CancelledAt: a.CancelledAt,
		CompletedAt: a.CompletedAt,
	}
	if a.QueueEntry != nil {
		v.QueueEntryID = a.QueueEntry.ID
		v.QueueStatus = a.QueueEntry.Status
	}
	return v
}

// QueueEntryView is one line of a doctor's daily queue.
type QueueEntryView struct {
	ID              string             `json:"id"`
	AppointmentID   string             `json:"appointmentId"`
	PatientID       string             `json:"patientId"`
	PatientName     string             `json:"patientName"`
	DoctorID        string             `json:"doctorId"`
	Date            string             `json:"date"`
	AppointmentTime string             `json:"appointmentTime"`
	Status          models.QueueStatus `json:"status"`
	CalledAt        *time.Time         `json:"calledAt,omitempty"`
	FinishedAt      *time.Time         `json:"finishedAt,omitempty"`
}

// newQueueEntryView expects Patient to be preloaded.
func newQueueEntryView(e models.QueueEntry) QueueEntryView {
	return QueueEntryView{
		ID:              e.ID,
		AppointmentID:   e.AppointmentID,
		PatientID:       e.PatientID,
		PatientName:     e.Patient.FullName(),
		DoctorID:        e.DoctorID,
		Date:            models.FormatDate(e.Date),
		AppointmentTime: models.FormatTime(e.AppointmentTime),
		Status:          e.Status,
		CalledAt:        e.CalledAt,
		FinishedAt:      e.FinishedAt,
	}
}

// DoctorQueue is one doctor's queue for one day, ordered by appointment time.
type DoctorQueue struct {
	Doctor  DoctorSummary    `json:"doctor"`
	Date    string           `json:"date"`
	Waiting int              `json:"waiting"`
	Entries []QueueEntryView `json:"entries"`
}

func newDoctorQueue(doctor models.User, date time.Time, entries []models.QueueEntry) DoctorQueue {
	q := DoctorQueue{
		Doctor:  newDoctorSummary(doctor),
		Date:    models.FormatDate(models.DateOf(date)),
		Entries: make([]QueueEntryView, 0, len(entries)),
	}
	for _, e := range entries {
		if e.Status == models.QueueWaiting {
			q.Waiting++
		}
		q.Entries = append(q.Entries, newQueueEntryView(e))
	}
	return q
}

// DoctorSummary identifies a doctor and their room.
type DoctorSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Specialty  string  `json:"specialty,omitempty"`
	RoomID     *string `json:"roomId,omitempty"`
	RoomNumber string  `json:"roomNumber,omitempty"`
}

// newDoctorSummary reads the room number from a preloaded Room, if any.
func newDoctorSummary(u models.User) DoctorSummary {
	d := DoctorSummary{
		ID:        u.ID,
		Name:      u.FullName(),
		Specialty: u.Specialty,
		RoomID:    u.RoomID,
	}
	if u.Room != nil {
		d.RoomNumber = u.Room.Number
	}
	return d
}

// RoomView is a room with the doctors assigned to it.
type RoomView struct {
	ID        string          `json:"id"`
	Number    string          `json:"number"`
	Name      string          `json:"name,omitempty"`
	Available bool            `json:"available"`
	Doctors   []DoctorSummary `json:"doctors"`
}

func newRoomView(r models.Room) RoomView {
	v := RoomView{
		ID:        r.ID,
		Number:    r.Number,
		Name:      r.Name,
		Available: r.Available,
		Doctors:   make([]DoctorSummary, 0, len(r.Doctors)),
	}
	for _, d := range r.Doctors {
		d.Room = &r
		v.Doctors = append(v.Doctors, newDoctorSummary(d))
	}
	return v
}
