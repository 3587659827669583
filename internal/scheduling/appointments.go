package scheduling

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hospital-frontdesk-server/internal/models"
	"hospital-frontdesk-server/internal/policy"
)

var activeQueueStatuses = []models.QueueStatus{models.QueueWaiting, models.QueueInConsultation}

// Book claims a slot for a patient. The slot flip, the appointment and its
// queue entry commit together or not at all. Of two callers racing for one
// slot exactly one succeeds; the other gets ErrConflict.
func (s *Service) Book(ctx context.Context, p policy.Principal, in BookInput) (AppointmentView, error) {
	if err := s.authorize(p, policy.AppointmentBook); err != nil {
		return AppointmentView{}, err
	}

	patientID := in.PatientID
	if p.Role == models.RolePatient {
		if patientID == "" {
			patientID = p.UserID
		}
		if !p.Is(patientID) {
			return AppointmentView{}, fail(ErrUnauthorized, "patients can only book for themselves")
		}
	}
	if patientID == "" {
		return AppointmentView{}, fail(ErrValidation, "patient is required")
	}
	if in.SlotID == "" {
		return AppointmentView{}, fail(ErrValidation, "slot is required")
	}

	var appointment models.Appointment
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if _, err := userWithRole(tx, patientID, models.RolePatient); err != nil {
			return err
		}

		var slot models.Slot
		err := tx.First(&slot, "id = ?", in.SlotID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(ErrConflict, "slot %s no longer exists", in.SlotID)
		}
		if err != nil {
			return fmt.Errorf("load slot: %w", err)
		}
		var practising int64
		if err := tx.Model(&models.User{}).
			Where("id = ? AND role = ?", slot.DoctorID, models.RoleDoctor).
			Count(&practising).Error; err != nil {
			return fmt.Errorf("check slot owner: %w", err)
		}
		if practising == 0 {
			return fail(ErrConflict, "slot %s belongs to a user who is no longer a doctor", slot.ID)
		}

		res := tx.Model(&models.Slot{}).
			Where("id = ? AND available = ?", slot.ID, true).
			Update("available", false)
		if res.Error != nil {
			return fmt.Errorf("claim slot: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fail(ErrConflict, "slot %s is already booked", slot.ID)
		}

		appointment = models.Appointment{
			PatientID: patientID,
			DoctorID:  slot.DoctorID,
			SlotID:    slot.ID,
			Date:      slot.Date,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Status:    models.StatusConfirmed,
		}
		if err := tx.Omit(clause.Associations).Create(&appointment).Error; err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		entry := models.QueueEntry{
			AppointmentID:   appointment.ID,
			PatientID:       patientID,
			DoctorID:        slot.DoctorID,
			Date:            slot.Date,
			AppointmentTime: slot.StartTime,
			Status:          models.QueueWaiting,
		}
		if err := tx.Omit(clause.Associations).Create(&entry).Error; err != nil {
			return fmt.Errorf("create queue entry: %w", err)
		}

		return loadAppointment(tx, &appointment, appointment.ID)
	})
	if err != nil {
		return AppointmentView{}, err
	}

	s.log.Info().
		Str("appointment_id", appointment.ID).
		Str("slot_id", appointment.SlotID).
		Str("patient_id", patientID).
		Msg("appointment booked")
	return newAppointmentView(appointment), nil
}

// Cancel cancels a confirmed appointment on behalf of its patient or the
// front desk. The slot is freed and the queue entry leaves the active queue.
func (s *Service) Cancel(ctx context.Context, p policy.Principal, appointmentID string) (AppointmentView, error) {
	if err := s.authorize(p, policy.AppointmentCancel); err != nil {
		return AppointmentView{}, err
	}

	var appointment models.Appointment
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &appointment, appointmentID, "appointment"); err != nil {
			return err
		}
		if p.Role == models.RolePatient && !p.Is(appointment.PatientID) {
			return fail(ErrUnauthorized, "appointment %s belongs to another patient", appointmentID)
		}
		if err := s.cancelAppointment(tx, appointment, models.QueueCancelled); err != nil {
			return err
		}
		return loadAppointment(tx, &appointment, appointmentID)
	})
	if err != nil {
		return AppointmentView{}, err
	}

	s.log.Info().Str("appointment_id", appointmentID).Str("by", p.UserID).Msg("appointment cancelled")
	return newAppointmentView(appointment), nil
}

// cancelAppointment moves a confirmed appointment to cancelled, frees its
// slot and closes its active queue entry with queueStatus.
func (s *Service) cancelAppointment(tx *gorm.DB, a models.Appointment, queueStatus models.QueueStatus) error {
	if a.Status.Terminal() {
		return fail(ErrInvalidState, "appointment %s is already %s", a.ID, a.Status)
	}
	now := s.timestamp()

	res := tx.Model(&models.Appointment{}).
		Where("id = ? AND status = ?", a.ID, models.StatusConfirmed).
		Updates(map[string]any{"status": models.StatusCancelled, "cancelled_at": now})
	if res.Error != nil {
		return fmt.Errorf("cancel appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fail(ErrInvalidState, "appointment %s is no longer confirmed", a.ID)
	}

	if err := tx.Model(&models.Slot{}).Where("id = ?", a.SlotID).Update("available", true).Error; err != nil {
		return fmt.Errorf("free slot: %w", err)
	}

	err := tx.Model(&models.QueueEntry{}).
		Where("appointment_id = ? AND status IN ?", a.ID, activeQueueStatuses).
		Updates(map[string]any{"status": queueStatus, "finished_at": now}).Error
	if err != nil {
		return fmt.Errorf("close queue entry: %w", err)
	}
	return nil
}

// Complete marks a confirmed appointment completed and its queue entry done.
// The slot stays claimed.
func (s *Service) Complete(ctx context.Context, p policy.Principal, appointmentID string) (AppointmentView, error) {
	if err := s.authorize(p, policy.AppointmentComplete); err != nil {
		return AppointmentView{}, err
	}

	var appointment models.Appointment
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &appointment, appointmentID, "appointment"); err != nil {
			return err
		}
		if err := s.completeAppointment(tx, p, appointment); err != nil {
			return err
		}
		return loadAppointment(tx, &appointment, appointmentID)
	})
	if err != nil {
		return AppointmentView{}, err
	}

	s.log.Info().Str("appointment_id", appointmentID).Str("by", p.UserID).Msg("appointment completed")
	return newAppointmentView(appointment), nil
}

func (s *Service) completeAppointment(tx *gorm.DB, p policy.Principal, a models.Appointment) error {
	if p.Role == models.RoleDoctor && !p.Is(a.DoctorID) {
		return fail(ErrUnauthorized, "appointment %s is assigned to another doctor", a.ID)
	}
	if a.Status.Terminal() {
		return fail(ErrInvalidState, "appointment %s is already %s", a.ID, a.Status)
	}
	now := s.timestamp()

	res := tx.Model(&models.Appointment{}).
		Where("id = ? AND status = ?", a.ID, models.StatusConfirmed).
		Updates(map[string]any{"status": models.StatusCompleted, "completed_at": now})
	if res.Error != nil {
		return fmt.Errorf("complete appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fail(ErrInvalidState, "appointment %s is no longer confirmed", a.ID)
	}

	err := tx.Model(&models.QueueEntry{}).
		Where("appointment_id = ? AND status IN ?", a.ID, activeQueueStatuses).
		Updates(map[string]any{"status": models.QueueDone, "finished_at": now}).Error
	if err != nil {
		return fmt.Errorf("close queue entry: %w", err)
	}
	return nil
}

// GetAppointment returns one appointment. Patients and doctors only see
// appointments they take part in.
func (s *Service) GetAppointment(ctx context.Context, p policy.Principal, appointmentID string) (AppointmentView, error) {
	if err := s.authorize(p, policy.AppointmentRead); err != nil {
		return AppointmentView{}, err
	}

	var appointment models.Appointment
	if err := loadAppointment(s.db.WithContext(ctx), &appointment, appointmentID); err != nil {
		return AppointmentView{}, err
	}
	switch p.Role {
	case models.RolePatient:
		if !p.Is(appointment.PatientID) {
			return AppointmentView{}, fail(ErrUnauthorized, "appointment %s belongs to another patient", appointmentID)
		}
	case models.RoleDoctor:
		if !p.Is(appointment.DoctorID) {
			return AppointmentView{}, fail(ErrUnauthorized, "appointment %s is assigned to another doctor", appointmentID)
		}
	}
	return newAppointmentView(appointment), nil
}

// ListAppointments returns appointments matching f, ordered by date and time.
// Patients are restricted to their own appointments and doctors to theirs.
func (s *Service) ListAppointments(ctx context.Context, p policy.Principal, f AppointmentFilter) ([]AppointmentView, error) {
	if err := s.authorize(p, policy.AppointmentRead); err != nil {
		return nil, err
	}

	switch p.Role {
	case models.RolePatient:
		f.PatientID = p.UserID
	case models.RoleDoctor:
		f.DoctorID = p.UserID
	}

	q := s.db.WithContext(ctx).Model(&models.Appointment{})
	if f.PatientID != "" {
		q = q.Where("patient_id = ?", f.PatientID)
	}
	if f.DoctorID != "" {
		q = q.Where("doctor_id = ?", f.DoctorID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Date != nil {
		q = q.Where("date = ?", models.DateOf(*f.Date))
	}
	return findAppointments(q.Order("date ASC").Order("start_time ASC"))
}

// UpcomingAppointments returns the caller's confirmed appointments from
// today onwards.
func (s *Service) UpcomingAppointments(ctx context.Context, p policy.Principal) ([]AppointmentView, error) {
	if err := s.authorize(p, policy.AppointmentRead); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).
		Where("status = ? AND date >= ?", models.StatusConfirmed, models.DateOf(s.today()))
	switch p.Role {
	case models.RolePatient:
		q = q.Where("patient_id = ?", p.UserID)
	case models.RoleDoctor:
		q = q.Where("doctor_id = ?", p.UserID)
	}
	return findAppointments(q.Order("date ASC").Order("start_time ASC"))
}

// PatientHistory returns every appointment of a patient, most recent first.
func (s *Service) PatientHistory(ctx context.Context, p policy.Principal, patientID string) ([]AppointmentView, error) {
	if err := s.authorize(p, policy.PatientHistory); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if _, err := userWithRole(db, patientID, models.RolePatient); err != nil {
		return nil, err
	}
	return findAppointments(db.Where("patient_id = ?", patientID).Order("date DESC").Order("start_time DESC"))
}

func withParties(db *gorm.DB) *gorm.DB {
	return db.Preload("Patient").Preload("Doctor").Preload("QueueEntry")
}

func loadAppointment(tx *gorm.DB, dest *models.Appointment, id string) error {
	*dest = models.Appointment{}
	return first(withParties(tx), dest, id, "appointment")
}

func findAppointments(q *gorm.DB) ([]AppointmentView, error) {
	var appointments []models.Appointment
	if err := withParties(q).Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	views := make([]AppointmentView, 0, len(appointments))
	for _, a := range appointments {
		views = append(views, newAppointmentView(a))
	}
	return views, nil
}
