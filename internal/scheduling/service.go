// Package scheduling implements the slot, appointment, queue and room
// lifecycle. Every operation authorizes the caller, then reads and mutates
// the store inside a single gorm transaction.
package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hospital-frontdesk-server/internal/models"
	"hospital-frontdesk-server/internal/policy"
)

// Service exposes the scheduling operations.
type Service struct {
	db  *gorm.DB
	log zerolog.Logger
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service on db.
func NewService(db *gorm.DB, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		db:  db,
		log: log.With().Str("component", "scheduling").Logger(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

func (s *Service) today() time.Time {
	return time.Time(models.DateOf(s.now()))
}

// dayOr returns date, or today on the service clock when date is zero.
func (s *Service) dayOr(date time.Time) time.Time {
	if date.IsZero() {
		return s.today()
	}
	return date
}

// transaction runs fn in one store transaction. A non-nil error from fn
// rolls everything back.
func (s *Service) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *Service) authorize(p policy.Principal, op policy.Operation) error {
	if !policy.Authorize(p.Role, op) {
		return fail(ErrUnauthorized, "role %q may not perform %s", p.Role, op)
	}
	return nil
}

// first loads one row by id into dest, mapping a missing row to ErrNotFound.
func first(tx *gorm.DB, dest any, id, what string) error {
	err := tx.First(dest, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(ErrNotFound, "%s %s", what, id)
	}
	if err != nil {
		return err
	}
	return nil
}

// userWithRole loads a user and checks its role.
func userWithRole(tx *gorm.DB, id string, role models.Role) (models.User, error) {
	var u models.User
	if err := first(tx, &u, id, string(role)); err != nil {
		return u, err
	}
	if u.Role != role {
		return u, fail(ErrValidation, "user %s is not a %s", id, role)
	}
	return u, nil
}
