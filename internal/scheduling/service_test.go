package scheduling

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hospital-frontdesk-server/internal/models"
	"hospital-frontdesk-server/internal/policy"
)

var (
	testNow = time.Date(2024, 5, 31, 8, 0, 0, 0, time.UTC)
	day     = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc     *Service
	db      *gorm.DB
	ctx     context.Context
	admin   policy.Principal
	staff   policy.Principal
	doctor  policy.Principal
	doctor2 policy.Principal
	patient policy.Principal
	other   policy.Principal
}

// newFixture opens a private in-memory sqlite database with one connection,
// so concurrent transactions serialize the way row locks would.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := models.OpenDB(models.DatabaseConfig{
		Driver:       models.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{
		svc: NewService(db, zerolog.Nop(), WithClock(func() time.Time { return testNow })),
		db:  db,
		ctx: context.Background(),
	}
	f.admin = f.user(t, models.RoleAdmin, "Ada", "Admin")
	f.staff = f.user(t, models.RoleStaff, "Sam", "Desk")
	f.doctor = f.user(t, models.RoleDoctor, "Gregory", "House")
	f.doctor2 = f.user(t, models.RoleDoctor, "Lisa", "Cuddy")
	f.patient = f.user(t, models.RolePatient, "Pat", "Smith")
	f.other = f.user(t, models.RolePatient, "Quinn", "Jones")
	return f
}

func (f *fixture) user(t *testing.T, role models.Role, first, last string) policy.Principal {
	t.Helper()
	u := models.User{
		Email:     fmt.Sprintf("%s.%s@example.com", first, last),
		Password:  "hash",
		FirstName: first,
		LastName:  last,
		Role:      role,
	}
	if role == models.RoleDoctor {
		u.Specialty = "Cardiology"
	}
	if err := f.db.Create(&u).Error; err != nil {
		t.Fatalf("create %s: %v", role, err)
	}
	return policy.Principal{UserID: u.ID, Role: role}
}

func hm(h, m int) datatypes.Time {
	return datatypes.NewTime(h, m, 0, 0)
}

func (f *fixture) slot(t *testing.T, doctor policy.Principal, date time.Time, start, end datatypes.Time) SlotView {
	t.Helper()
	v, err := f.svc.CreateSlot(f.ctx, doctor, CreateSlotInput{Date: date, Start: start, End: end})
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return v
}

func (f *fixture) book(t *testing.T, patient policy.Principal, slotID string) AppointmentView {
	t.Helper()
	v, err := f.svc.Book(f.ctx, patient, BookInput{SlotID: slotID})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	return v
}

func (f *fixture) storedSlot(t *testing.T, id string) models.Slot {
	t.Helper()
	var s models.Slot
	if err := f.db.First(&s, "id = ?", id).Error; err != nil {
		t.Fatalf("load slot %s: %v", id, err)
	}
	return s
}

func (f *fixture) storedAppointment(t *testing.T, id string) models.Appointment {
	t.Helper()
	var a models.Appointment
	if err := f.db.First(&a, "id = ?", id).Error; err != nil {
		t.Fatalf("load appointment %s: %v", id, err)
	}
	return a
}

func (f *fixture) storedEntry(t *testing.T, appointmentID string) models.QueueEntry {
	t.Helper()
	var e models.QueueEntry
	if err := f.db.First(&e, "appointment_id = ?", appointmentID).Error; err != nil {
		t.Fatalf("load queue entry for %s: %v", appointmentID, err)
	}
	return e
}

func expectKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

func TestKindOf(t *testing.T) {
	for _, k := range kinds {
		if got := KindOf(fmt.Errorf("wrapped: %w", fail(k, "x"))); got != k {
			t.Errorf("KindOf(%v) = %v", k, got)
		}
	}
	if KindOf(errors.New("disk on fire")) != nil {
		t.Errorf("KindOf should be nil for foreign errors")
	}
}

func TestOperationsRejectUnauthorizedRoles(t *testing.T) {
	f := newFixture(t)
	s := f.slot(t, f.doctor, day, hm(9, 0), hm(9, 30))
	a := f.book(t, f.patient, s.ID)

	cases := []struct {
		name string
		call func() error
	}{
		{"patient creates slot", func() error {
			_, err := f.svc.CreateSlot(f.ctx, f.patient, CreateSlotInput{Date: day, Start: hm(10, 0), End: hm(10, 30)})
			return err
		}},
		{"doctor books", func() error {
			_, err := f.svc.Book(f.ctx, f.doctor, BookInput{PatientID: f.patient.UserID, SlotID: s.ID})
			return err
		}},
		{"doctor cancels", func() error {
			_, err := f.svc.Cancel(f.ctx, f.doctor, a.ID)
			return err
		}},
		{"patient completes", func() error {
			_, err := f.svc.Complete(f.ctx, f.patient, a.ID)
			return err
		}},
		{"doctor marks absent", func() error {
			_, err := f.svc.MarkAbsent(f.ctx, f.doctor, a.QueueEntryID)
			return err
		}},
		{"patient views queue", func() error {
			_, err := f.svc.ViewDailyQueue(f.ctx, f.patient, f.doctor.UserID, day)
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectKind(t, tc.call(), ErrUnauthorized)
		})
	}

	// nothing above may have changed state
	if got := f.storedAppointment(t, a.ID).Status; got != models.StatusConfirmed {
		t.Fatalf("appointment status = %s, want confirmed", got)
	}
	if got := f.storedEntry(t, a.ID).Status; got != models.QueueWaiting {
		t.Fatalf("queue status = %s, want waiting", got)
	}
}
