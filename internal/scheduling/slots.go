package scheduling

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hospital-frontdesk-server/internal/models"
	"hospital-frontdesk-server/internal/policy"
)

// CreateSlot adds an available slot to a doctor's calendar. Doctors create
// slots for themselves; staff and admins may name any doctor.
func (s *Service) CreateSlot(ctx context.Context, p policy.Principal, in CreateSlotInput) (SlotView, error) {
	if err := s.authorize(p, policy.SlotCreate); err != nil {
		return SlotView{}, err
	}

	doctorID := in.DoctorID
	if p.Role == models.RoleDoctor {
		if doctorID == "" {
			doctorID = p.UserID
		}
		if !p.Is(doctorID) {
			return SlotView{}, fail(ErrUnauthorized, "doctors can only create their own slots")
		}
	}
	if doctorID == "" {
		return SlotView{}, fail(ErrValidation, "doctor is required")
	}
	if in.Date.IsZero() {
		return SlotView{}, fail(ErrValidation, "date is required")
	}
	if in.Start >= in.End {
		return SlotView{}, fail(ErrValidation, "start %s must be before end %s",
			models.FormatTime(in.Start), models.FormatTime(in.End))
	}

	slot := models.Slot{
		DoctorID:  doctorID,
		Date:      models.DateOf(in.Date),
		StartTime: in.Start,
		EndTime:   in.End,
		Available: true,
	}

	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if _, err := userWithRole(tx, doctorID, models.RoleDoctor); err != nil {
			return err
		}

		var overlapping int64
		err := tx.Model(&models.Slot{}).
			Where("doctor_id = ? AND date = ? AND start_time < ? AND end_time > ?",
				doctorID, slot.Date, slot.EndTime, slot.StartTime).
			Count(&overlapping).Error
		if err != nil {
			return fmt.Errorf("check overlapping slots: %w", err)
		}
		if overlapping > 0 {
			return fail(ErrConflict, "slot %s %s-%s overlaps an existing slot",
				models.FormatDate(slot.Date), models.FormatTime(slot.StartTime), models.FormatTime(slot.EndTime))
		}

		if err := tx.Omit(clause.Associations).Create(&slot).Error; err != nil {
			return fmt.Errorf("create slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return SlotView{}, err
	}

	s.log.Info().Str("slot_id", slot.ID).Str("doctor_id", doctorID).Msg("slot created")
	return newSlotView(slot), nil
}

// DeleteSlot removes a slot that has not been claimed. Only the owning doctor
// may delete it.
func (s *Service) DeleteSlot(ctx context.Context, p policy.Principal, slotID string) error {
	if err := s.authorize(p, policy.SlotDelete); err != nil {
		return err
	}

	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var slot models.Slot
		if err := first(tx, &slot, slotID, "slot"); err != nil {
			return err
		}
		if !p.Is(slot.DoctorID) {
			return fail(ErrUnauthorized, "slot %s belongs to another doctor", slotID)
		}
		if !slot.Available {
			return fail(ErrInvalidState, "slot %s is booked", slotID)
		}

		res := tx.Where("id = ? AND available = ?", slotID, true).Delete(&models.Slot{})
		if res.Error != nil {
			return fmt.Errorf("delete slot: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fail(ErrInvalidState, "slot %s is booked", slotID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("slot_id", slotID).Msg("slot deleted")
	return nil
}

// ListAvailableSlots returns the doctor's open slots dated from onwards,
// ordered by date then start time. A zero from means today.
func (s *Service) ListAvailableSlots(ctx context.Context, p policy.Principal, doctorID string, from time.Time) ([]SlotView, error) {
	if err := s.authorize(p, policy.SlotListAvailable); err != nil {
		return nil, err
	}
	return s.listSlots(ctx, doctorID, s.dayOr(from), true)
}

// ListDoctorSlots returns every slot of the doctor dated from onwards,
// booked or not. Doctors only see their own calendar.
func (s *Service) ListDoctorSlots(ctx context.Context, p policy.Principal, doctorID string, from time.Time) ([]SlotView, error) {
	if err := s.authorize(p, policy.SlotListAll); err != nil {
		return nil, err
	}
	if p.Role == models.RoleDoctor && !p.Is(doctorID) {
		return nil, fail(ErrUnauthorized, "doctors can only list their own slots")
	}
	return s.listSlots(ctx, doctorID, s.dayOr(from), false)
}

func (s *Service) listSlots(ctx context.Context, doctorID string, from time.Time, onlyAvailable bool) ([]SlotView, error) {
	db := s.db.WithContext(ctx)
	if _, err := userWithRole(db, doctorID, models.RoleDoctor); err != nil {
		return nil, err
	}

	q := db.Where("doctor_id = ? AND date >= ?", doctorID, models.DateOf(from))
	if onlyAvailable {
		q = q.Where("available = ?", true)
	}

	var slots []models.Slot
	if err := q.Order("date ASC").Order("start_time ASC").Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	views := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, newSlotView(slot))
	}
	return views, nil
}
