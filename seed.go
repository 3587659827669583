package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hospital-frontdesk-server/internal/config"
	"hospital-frontdesk-server/internal/models"
)

var seedRooms = []models.Room{
	{Number: "S001", Name: "Consultation 1"},
	{Number: "S002", Name: "Consultation 2"},
	{Number: "S003", Name: "Consultation 3"},
	{Number: "S004", Name: "Consultation 4"},
}

const sampleDoctorEmail = "doctor@hospital.local"

// seed creates the admin account, the default rooms and one sample doctor
// sharing the admin password. Existing rows are left alone, so running it
// twice is harmless.
func seed(db *gorm.DB, cfg *config.Config, logger zerolog.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		password := cfg.SeedAdminPassword
		if password == "" {
			password = uuid.NewString()
			logger.Warn().Str("email", cfg.SeedAdminEmail).Str("password", password).
				Msg("SEED_ADMIN_PASSWORD not set, generated one")
		}
		if _, err := seedUser(tx, models.User{
			Email:     cfg.SeedAdminEmail,
			FirstName: "System",
			LastName:  "Administrator",
			Role:      models.RoleAdmin,
		}, password); err != nil {
			return err
		}

		var first *models.Room
		for i := range seedRooms {
			room := seedRooms[i]
			room.Available = true
			if err := tx.Where(models.Room{Number: room.Number}).FirstOrCreate(&room).Error; err != nil {
				return fmt.Errorf("seed room %s: %w", room.Number, err)
			}
			if first == nil {
				first = &room
			}
		}

		created, err := seedUser(tx, models.User{
			Email:     sampleDoctorEmail,
			FirstName: "Sample",
			LastName:  "Doctor",
			Role:      models.RoleDoctor,
			Specialty: "General Medicine",
			RoomID:    &first.ID,
		}, password)
		if err != nil {
			return err
		}

		logger.Info().Int("rooms", len(seedRooms)).Bool("doctor_created", created).Msg("seed complete")
		return nil
	})
}

// seedUser creates u with password unless the email is already registered.
func seedUser(tx *gorm.DB, u models.User, password string) (bool, error) {
	var existing models.User
	err := tx.Where("email = ?", u.Email).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("look up %s: %w", u.Email, err)
	}
	if err := u.SetPassword(password); err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if err := tx.Omit("Room", "RefreshTokens").Create(&u).Error; err != nil {
		return false, fmt.Errorf("create %s: %w", u.Email, err)
	}
	return true, nil
}
