package models

import (
	"time"

	"gorm.io/datatypes"
)

// Slot is a bookable interval [StartTime, EndTime) on one date of one doctor's calendar.
// A slot flips to unavailable when an appointment claims it and back when that
// appointment is cancelled. Claimed slots are never deleted.
type Slot struct {
	BaseModel
	DoctorID  string         `gorm:"size:36;not null;index:idx_slots_doctor_date,priority:1" json:"doctorId"`
	Date      datatypes.Date `gorm:"not null;index:idx_slots_doctor_date,priority:2" json:"date"`
	StartTime datatypes.Time `gorm:"not null" json:"startTime"`
	EndTime   datatypes.Time `gorm:"not null" json:"endTime"`
	Available bool           `gorm:"not null;default:true;index" json:"available"`

	Doctor User `gorm:"foreignKey:DoctorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// DateOf truncates t to midnight UTC of its calendar day, the form every
// date column is stored and queried in.
func DateOf(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// TimeOf returns the time-of-day part of t.
func TimeOf(t time.Time) datatypes.Time {
	return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0)
}

// FormatDate renders a stored date as YYYY-MM-DD.
func FormatDate(d datatypes.Date) string {
	return time.Time(d).Format(time.DateOnly)
}

// FormatTime renders a stored time of day as HH:MM.
func FormatTime(t datatypes.Time) string {
	d := time.Duration(t)
	return time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format("15:04")
}
