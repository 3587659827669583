package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-frontdesk-server/internal/scheduling"
	"hospital-frontdesk-server/internal/utils"
)

// RoomHandler handles consultation room requests.
type RoomHandler struct {
	Scheduler *scheduling.Service
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(scheduler *scheduling.Service) *RoomHandler {
	return &RoomHandler{Scheduler: scheduler}
}

// CreateRoomRequest represents the request body for creating a room.
type CreateRoomRequest struct {
	Number string `json:"number" validate:"required,max=20"`
	Name   string `json:"name" validate:"max=100"`
}

// CreateRoom handles registering a room.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req CreateRoomRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	room, err := h.Scheduler.CreateRoom(c.Request.Context(), p, req.Number, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Room created successfully", room)
}

// GetRooms handles listing rooms with their doctors.
func (h *RoomHandler) GetRooms(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	rooms, err := h.Scheduler.ListRooms(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Rooms fetched successfully", rooms)
}

// RoomAvailabilityRequest represents the request body for opening or closing a room.
type RoomAvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

// SetAvailability handles opening or closing a room.
func (h *RoomHandler) SetAvailability(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req RoomAvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	room, err := h.Scheduler.SetRoomAvailability(c.Request.Context(), p, c.Param("id"), *req.Available)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Room updated successfully", room)
}

// AssignRoomRequest represents the request body for assigning a doctor's
// room. A null roomId clears the assignment.
type AssignRoomRequest struct {
	RoomID *string `json:"roomId" validate:"omitempty,uuid"`
}

// AssignRoom handles setting a doctor's room.
func (h *RoomHandler) AssignRoom(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req AssignRoomRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	doctor, err := h.Scheduler.AssignRoom(c.Request.Context(), p, c.Param("id"), req.RoomID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Room assigned successfully", doctor)
}

// DeleteRoom handles removing a room no doctor uses.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.Scheduler.DeleteRoom(c.Request.Context(), p, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Room deleted successfully", nil)
}
