package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"hospital-frontdesk-server/internal/models"
	"hospital-frontdesk-server/internal/policy"
)

// StartConsultation calls a waiting patient in. Only the assigned doctor or
// the front desk may do so.
func (s *Service) StartConsultation(ctx context.Context, p policy.Principal, entryID string) (QueueEntryView, error) {
	if err := s.authorize(p, policy.QueueStart); err != nil {
		return QueueEntryView{}, err
	}

	var entry models.QueueEntry
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &entry, entryID, "queue entry"); err != nil {
			return err
		}
		if p.Role == models.RoleDoctor && !p.Is(entry.DoctorID) {
			return fail(ErrUnauthorized, "queue entry %s belongs to another doctor", entryID)
		}
		if entry.Status != models.QueueWaiting {
			return fail(ErrInvalidState, "queue entry %s is %s, not waiting", entryID, entry.Status)
		}

		res := tx.Model(&models.QueueEntry{}).
			Where("id = ? AND status = ?", entryID, models.QueueWaiting).
			Updates(map[string]any{"status": models.QueueInConsultation, "called_at": s.timestamp()})
		if res.Error != nil {
			return fmt.Errorf("start consultation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fail(ErrInvalidState, "queue entry %s is no longer waiting", entryID)
		}
		return loadQueueEntry(tx, &entry, entryID)
	})
	if err != nil {
		return QueueEntryView{}, err
	}

	s.log.Info().Str("queue_entry_id", entryID).Str("by", p.UserID).Msg("consultation started")
	return newQueueEntryView(entry), nil
}

// MarkAbsent records that a waiting patient did not show up. The entry
// becomes absent, the appointment is cancelled and its slot reopens, all in
// one transaction.
func (s *Service) MarkAbsent(ctx context.Context, p policy.Principal, entryID string) (QueueEntryView, error) {
	if err := s.authorize(p, policy.QueueAbsent); err != nil {
		return QueueEntryView{}, err
	}

	var entry models.QueueEntry
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &entry, entryID, "queue entry"); err != nil {
			return err
		}
		if entry.Status != models.QueueWaiting {
			return fail(ErrInvalidState, "queue entry %s is %s, not waiting", entryID, entry.Status)
		}

		var appointment models.Appointment
		if err := first(tx, &appointment, entry.AppointmentID, "appointment"); err != nil {
			return err
		}
		if err := s.cancelAppointment(tx, appointment, models.QueueAbsent); err != nil {
			return err
		}
		return loadQueueEntry(tx, &entry, entryID)
	})
	if err != nil {
		return QueueEntryView{}, err
	}

	s.log.Info().
		Str("queue_entry_id", entryID).
		Str("appointment_id", entry.AppointmentID).
		Str("by", p.UserID).
		Msg("patient marked absent")
	return newQueueEntryView(entry), nil
}

// CompleteEntry finishes the consultation behind a queue entry. It has the
// same effect as Complete on the entry's appointment.
func (s *Service) CompleteEntry(ctx context.Context, p policy.Principal, entryID string) (QueueEntryView, error) {
	if err := s.authorize(p, policy.QueueComplete); err != nil {
		return QueueEntryView{}, err
	}

	var entry models.QueueEntry
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &entry, entryID, "queue entry"); err != nil {
			return err
		}
		if entry.Status.Terminal() {
			return fail(ErrInvalidState, "queue entry %s is already %s", entryID, entry.Status)
		}

		var appointment models.Appointment
		if err := first(tx, &appointment, entry.AppointmentID, "appointment"); err != nil {
			return err
		}
		if err := s.completeAppointment(tx, p, appointment); err != nil {
			return err
		}
		return loadQueueEntry(tx, &entry, entryID)
	})
	if err != nil {
		return QueueEntryView{}, err
	}

	s.log.Info().Str("queue_entry_id", entryID).Str("by", p.UserID).Msg("consultation completed")
	return newQueueEntryView(entry), nil
}

// ViewDailyQueue returns a doctor's queue for date ordered by appointment
// time. Doctors only see their own queue. The result always reflects the
// store at call time.
func (s *Service) ViewDailyQueue(ctx context.Context, p policy.Principal, doctorID string, date time.Time) (DoctorQueue, error) {
	if err := s.authorize(p, policy.QueueView); err != nil {
		return DoctorQueue{}, err
	}
	if p.Role == models.RoleDoctor && !p.Is(doctorID) {
		return DoctorQueue{}, fail(ErrUnauthorized, "doctors can only view their own queue")
	}
	date = s.dayOr(date)

	db := s.db.WithContext(ctx)
	var doctor models.User
	if err := first(db.Preload("Room"), &doctor, doctorID, "doctor"); err != nil {
		return DoctorQueue{}, err
	}
	if doctor.Role != models.RoleDoctor {
		return DoctorQueue{}, fail(ErrValidation, "user %s is not a doctor", doctorID)
	}

	var entries []models.QueueEntry
	err := db.Preload("Patient").
		Where("doctor_id = ? AND date = ?", doctorID, models.DateOf(date)).
		Order("appointment_time ASC").
		Find(&entries).Error
	if err != nil {
		return DoctorQueue{}, fmt.Errorf("load queue: %w", err)
	}
	return newDoctorQueue(doctor, date, entries), nil
}

// QueueBoard returns the queue of every doctor with at least one entry on
// date, ordered by doctor name.
func (s *Service) QueueBoard(ctx context.Context, p policy.Principal, date time.Time) ([]DoctorQueue, error) {
	if err := s.authorize(p, policy.QueueBoard); err != nil {
		return nil, err
	}
	date = s.dayOr(date)

	db := s.db.WithContext(ctx)
	var entries []models.QueueEntry
	err := db.Preload("Patient").
		Where("date = ?", models.DateOf(date)).
		Order("appointment_time ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load queue board: %w", err)
	}
	if len(entries) == 0 {
		return []DoctorQueue{}, nil
	}

	byDoctor := make(map[string][]models.QueueEntry)
	ids := make([]string, 0)
	for _, e := range entries {
		if _, ok := byDoctor[e.DoctorID]; !ok {
			ids = append(ids, e.DoctorID)
		}
		byDoctor[e.DoctorID] = append(byDoctor[e.DoctorID], e)
	}

	var doctors []models.User
	if err := db.Preload("Room").Where("id IN ?", ids).Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}
	sort.Slice(doctors, func(i, j int) bool {
		if doctors[i].LastName != doctors[j].LastName {
			return doctors[i].LastName < doctors[j].LastName
		}
		return doctors[i].FirstName < doctors[j].FirstName
	})

	board := make([]DoctorQueue, 0, len(doctors))
	for _, d := range doctors {
		board = append(board, newDoctorQueue(d, date, byDoctor[d.ID]))
	}
	return board, nil
}

func loadQueueEntry(tx *gorm.DB, dest *models.QueueEntry, id string) error {
	*dest = models.QueueEntry{}
	return first(tx.Preload("Patient"), dest, id, "queue entry")
}
