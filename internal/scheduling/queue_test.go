package scheduling

import (
	"testing"
	"time"

	"hospital-frontdesk-server/internal/models"
)

func TestConsultationScenario(t *testing.T) {
	f := newFixture(t)
	s := f.slot(t, f.doctor, day, hm(9, 0), hm(9, 30))
	a := f.book(t, f.patient, s.ID)

	if a.Status != models.StatusConfirmed || a.QueueStatus != models.QueueWaiting {
		t.Fatalf("unexpected booking %+v", a)
	}
	if f.storedSlot(t, s.ID).Available {
		t.Fatalf("slot should be claimed")
	}

	e, err := f.svc.StartConsultation(f.ctx, f.staff, a.QueueEntryID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if e.Status != models.QueueInConsultation || e.CalledAt == nil {
		t.Fatalf("unexpected entry %+v", e)
	}
	if got := f.storedAppointment(t, a.ID).Status; got != models.StatusConfirmed {
		t.Fatalf("appointment should stay confirmed during consultation, got %s", got)
	}

	e, err = f.svc.CompleteEntry(f.ctx, f.staff, a.QueueEntryID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if e.Status != models.QueueDone || e.FinishedAt == nil {
		t.Fatalf("unexpected entry %+v", e)
	}
	if got := f.storedAppointment(t, a.ID).Status; got != models.StatusCompleted {
		t.Fatalf("appointment status = %s, want completed", got)
	}
	if f.storedSlot(t, s.ID).Available {
		t.Fatalf("slot must remain unavailable after completion")
	}

	_, err = f.svc.CompleteEntry(f.ctx, f.staff, a.QueueEntryID)
	expectKind(t, err, ErrInvalidState)
}

func TestStartConsultation(t *testing.T) {
	f := newFixture(t)
	a := f.book(t, f.patient, f.slot(t, f.doctor, day, hm(9, 0), hm(9, 30)).ID)

	_, err := f.svc.StartConsultation(f.ctx, f.doctor2, a.QueueEntryID)
	expectKind(t, err, ErrUnauthorized)

	if _, err := f.svc.StartConsultation(f.ctx, f.doctor, a.QueueEntryID); err != nil {
		t.Fatalf("assigned doctor start: %v", err)
	}
	_, err = f.svc.StartConsultation(f.ctx, f.doctor, a.QueueEntryID)
	expectKind(t, err, ErrInvalidState)

	_, err = f.svc.StartConsultation(f.ctx, f.doctor, "missing")
	expectKind(t, err, ErrNotFound)
}

func TestMarkAbsent(t *testing.T) {
	f := newFixture(t)
	s := f.slot(t, f.doctor, day, hm(9, 0), hm(9, 30))
	a := f.book(t, f.patient, s.ID)

	e, err := f.svc.MarkAbsent(f.ctx, f.staff, a.QueueEntryID)
	if err != nil {
		t.Fatalf("mark absent: %v", err)
	}
	if e.Status != models.QueueAbsent {
		t.Fatalf("entry status = %s, want absent", e.Status)
	}
	if !f.storedSlot(t, s.ID).Available {
		t.Fatalf("slot should reopen")
	}
	if got := f.storedAppointment(t, a.ID).Status; got != models.StatusCancelled {
		t.Fatalf("appointment status = %s, want cancelled", got)
	}

	_, err = f.svc.MarkAbsent(f.ctx, f.staff, a.QueueEntryID)
	expectKind(t, err, ErrInvalidState)

	// the reopened slot is bookable again
	f.book(t, f.other, s.ID)
}

func TestMarkAbsentOnlyFromWaiting(t *testing.T) {
	f := newFixture(t)
	inConsultation := f.book(t, f.patient, f.slot(t, f.doctor, day, hm(9, 0), hm(9, 30)).ID)
	done := f.book(t, f.other, f.slot(t, f.doctor, day, hm(10, 0), hm(10, 30)).ID)

	if _, err := f.svc.StartConsultation(f.ctx, f.doctor, inConsultation.QueueEntryID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.svc.Complete(f.ctx, f.doctor, done.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	tests := []struct {
		name            string
		appt            AppointmentView
		wantQueue       models.QueueStatus
		wantAppointment models.AppointmentStatus
		wantAvailable   bool
	}{
		{"in consultation", inConsultation, models.QueueInConsultation, models.StatusConfirmed, false},
		{"done", done, models.QueueDone, models.StatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.MarkAbsent(f.ctx, f.staff, tt.appt.QueueEntryID)
			expectKind(t, err, ErrInvalidState)

			if got := f.storedEntry(t, tt.appt.ID).Status; got != tt.wantQueue {
				t.Fatalf("queue status = %s, want %s", got, tt.wantQueue)
			}
			if got := f.storedAppointment(t, tt.appt.ID).Status; got != tt.wantAppointment {
				t.Fatalf("appointment status = %s, want %s", got, tt.wantAppointment)
			}
			if got := f.storedSlot(t, tt.appt.SlotID).Available; got != tt.wantAvailable {
				t.Fatalf("slot available = %v, want %v", got, tt.wantAvailable)
			}
		})
	}
}

func TestViewDailyQueue(t *testing.T) {
	f := newFixture(t)
	late := f.book(t, f.other, f.slot(t, f.doctor, day, hm(11, 0), hm(11, 30)).ID)
	early := f.book(t, f.patient, f.slot(t, f.doctor, day, hm(9, 0), hm(9, 30)).ID)
	f.book(t, f.patient, f.slot(t, f.doctor, day.AddDate(0, 0, 1), hm(8, 0), hm(8, 30)).ID)
	f.book(t, f.patient, f.slot(t, f.doctor2, day, hm(8, 0), hm(8, 30)).ID)

	if _, err := f.svc.StartConsultation(f.ctx, f.doctor, early.QueueEntryID); err != nil {
		t.Fatalf("start: %v", err)
	}

	q, err := f.svc.ViewDailyQueue(f.ctx, f.doctor, f.doctor.UserID, day)
	if err != nil {
		t.Fatalf("view queue: %v", err)
	}
	if q.Date != "2024-06-01" || q.Doctor.ID != f.doctor.UserID {
		t.Fatalf("unexpected queue header %+v", q)
	}
	if len(q.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(q.Entries))
	}
	if q.Entries[0].AppointmentID != early.ID || q.Entries[1].AppointmentID != late.ID {
		t.Fatalf("entries not ordered by appointment time")
	}
	if q.Entries[0].Status != models.QueueInConsultation || q.Entries[1].PatientName != "Quinn Jones" {
		t.Fatalf("unexpected entries %+v", q.Entries)
	}
	if q.Waiting != 1 {
		t.Fatalf("waiting = %d, want 1", q.Waiting)
	}

	_, err = f.svc.ViewDailyQueue(f.ctx, f.doctor2, f.doctor.UserID, day)
	expectKind(t, err, ErrUnauthorized)
	_, err = f.svc.ViewDailyQueue(f.ctx, f.staff, f.patient.UserID, day)
	expectKind(t, err, ErrValidation)
}

func TestQueueBoard(t *testing.T) {
	f := newFixture(t)
	f.book(t, f.patient, f.slot(t, f.doctor, day, hm(9, 0), hm(9, 30)).ID)
	f.book(t, f.other, f.slot(t, f.doctor2, day, hm(9, 0), hm(9, 30)).ID)
	f.book(t, f.patient, f.slot(t, f.doctor2, day, hm(8, 0), hm(8, 30)).ID)

	board, err := f.svc.QueueBoard(f.ctx, f.staff, day)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("expected 2 doctors on the board, got %d", len(board))
	}
	// Cuddy sorts before House
	if board[0].Doctor.ID != f.doctor2.UserID || len(board[0].Entries) != 2 {
		t.Fatalf("unexpected first queue %+v", board[0])
	}
	if board[0].Entries[0].AppointmentTime != "08:00" {
		t.Fatalf("board entries not ordered by time: %+v", board[0].Entries)
	}

	empty, err := f.svc.QueueBoard(f.ctx, f.admin, day.AddDate(0, 1, 0))
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty board, got %v %v", empty, err)
	}

	_, err = f.svc.QueueBoard(f.ctx, f.doctor, day)
	expectKind(t, err, ErrUnauthorized)
}

func TestZeroDateMeansToday(t *testing.T) {
	f := newFixture(t)
	today := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	current := f.slot(t, f.doctor, today, hm(14, 0), hm(14, 30))
	f.slot(t, f.doctor, today.AddDate(0, 0, -1), hm(9, 0), hm(9, 30))
	a := f.book(t, f.patient, current.ID)
	f.book(t, f.other, f.slot(t, f.doctor, day, hm(9, 0), hm(9, 30)).ID)
	open := f.slot(t, f.doctor, day, hm(10, 0), hm(10, 30))

	q, err := f.svc.ViewDailyQueue(f.ctx, f.doctor, f.doctor.UserID, time.Time{})
	if err != nil {
		t.Fatalf("view queue: %v", err)
	}
	if q.Date != "2024-05-31" || len(q.Entries) != 1 || q.Entries[0].AppointmentID != a.ID {
		t.Fatalf("zero date should resolve to the service clock's day, got %+v", q)
	}

	board, err := f.svc.QueueBoard(f.ctx, f.staff, time.Time{})
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(board) != 1 || board[0].Date != "2024-05-31" {
		t.Fatalf("unexpected board %+v", board)
	}

	slots, err := f.svc.ListAvailableSlots(f.ctx, f.patient, f.doctor.UserID, time.Time{})
	if err != nil {
		t.Fatalf("list slots: %v", err)
	}
	if len(slots) != 1 || slots[0].ID != open.ID {
		t.Fatalf("expected only the open slot from today onwards, got %+v", slots)
	}
}
