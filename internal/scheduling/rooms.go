package scheduling

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hospital-frontdesk-server/internal/models"
	"hospital-frontdesk-server/internal/policy"
)

// CreateRoom registers a consultation room. Room numbers are unique.
func (s *Service) CreateRoom(ctx context.Context, p policy.Principal, number, name string) (RoomView, error) {
	if err := s.authorize(p, policy.RoomManage); err != nil {
		return RoomView{}, err
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return RoomView{}, fail(ErrValidation, "room number is required")
	}

	room := models.Room{Number: number, Name: strings.TrimSpace(name), Available: true}
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Room{}).Where("number = ?", number).Count(&existing).Error; err != nil {
			return fmt.Errorf("check room number: %w", err)
		}
		if existing > 0 {
			return fail(ErrConflict, "room %s already exists", number)
		}
		if err := tx.Omit(clause.Associations).Create(&room).Error; err != nil {
			return fmt.Errorf("create room: %w", err)
		}
		return nil
	})
	if err != nil {
		return RoomView{}, err
	}

	s.log.Info().Str("room_id", room.ID).Str("number", number).Msg("room created")
	return newRoomView(room), nil
}

// ListRooms returns every room ordered by number, with assigned doctors.
func (s *Service) ListRooms(ctx context.Context, p policy.Principal) ([]RoomView, error) {
	if err := s.authorize(p, policy.RoomList); err != nil {
		return nil, err
	}

	var rooms []models.Room
	err := s.db.WithContext(ctx).
		Preload("Doctors", "role = ?", models.RoleDoctor).
		Order("number ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	views := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		views = append(views, newRoomView(r))
	}
	return views, nil
}

// SetRoomAvailability opens or closes a room.
func (s *Service) SetRoomAvailability(ctx context.Context, p policy.Principal, roomID string, available bool) (RoomView, error) {
	if err := s.authorize(p, policy.RoomManage); err != nil {
		return RoomView{}, err
	}

	var room models.Room
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &room, roomID, "room"); err != nil {
			return err
		}
		if err := tx.Model(&room).Update("available", available).Error; err != nil {
			return fmt.Errorf("update room: %w", err)
		}
		room = models.Room{}
		return first(tx.Preload("Doctors"), &room, roomID, "room")
	})
	if err != nil {
		return RoomView{}, err
	}

	s.log.Info().Str("room_id", roomID).Bool("available", available).Msg("room availability changed")
	return newRoomView(room), nil
}

// AssignRoom sets or clears (roomID nil) a doctor's room.
func (s *Service) AssignRoom(ctx context.Context, p policy.Principal, doctorID string, roomID *string) (DoctorSummary, error) {
	if err := s.authorize(p, policy.RoomAssign); err != nil {
		return DoctorSummary{}, err
	}

	var doctor models.User
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if _, err := userWithRole(tx, doctorID, models.RoleDoctor); err != nil {
			return err
		}
		if roomID != nil {
			var room models.Room
			if err := first(tx, &room, *roomID, "room"); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.User{}).Where("id = ?", doctorID).Update("room_id", roomID).Error; err != nil {
			return fmt.Errorf("assign room: %w", err)
		}
		return first(tx.Preload("Room"), &doctor, doctorID, "doctor")
	})
	if err != nil {
		return DoctorSummary{}, err
	}

	s.log.Info().Str("doctor_id", doctorID).Interface("room_id", roomID).Msg("room assigned")
	return newDoctorSummary(doctor), nil
}

// DeleteRoom removes a room no doctor is assigned to.
func (s *Service) DeleteRoom(ctx context.Context, p policy.Principal, roomID string) error {
	if err := s.authorize(p, policy.RoomDelete); err != nil {
		return err
	}

	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var room models.Room
		if err := first(tx, &room, roomID, "room"); err != nil {
			return err
		}
		var assigned int64
		if err := tx.Model(&models.User{}).Where("room_id = ?", roomID).Count(&assigned).Error; err != nil {
			return fmt.Errorf("check room assignments: %w", err)
		}
		if assigned > 0 {
			return fail(ErrConflict, "room %s is assigned to %d doctor(s)", room.Number, assigned)
		}
		if err := tx.Delete(&models.Room{}, "id = ?", roomID).Error; err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("room_id", roomID).Msg("room deleted")
	return nil
}
