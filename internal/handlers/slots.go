package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-frontdesk-server/internal/models"
	"hospital-frontdesk-server/internal/scheduling"
	"hospital-frontdesk-server/internal/utils"
)

// SlotHandler handles doctor calendar requests.
type SlotHandler struct {
	Scheduler *scheduling.Service
}

// NewSlotHandler creates a new SlotHandler.
func NewSlotHandler(scheduler *scheduling.Service) *SlotHandler {
	return &SlotHandler{Scheduler: scheduler}
}

// CreateSlotRequest represents the request body for creating a slot.
// DoctorID is only read for staff and admins.
type CreateSlotRequest struct {
	DoctorID  string `json:"doctorId" validate:"omitempty,uuid"`
	Date      string `json:"date" validate:"required,date"`
	StartTime string `json:"startTime" validate:"required,clock"`
	EndTime   string `json:"endTime" validate:"required,clock"`
}

// CreateSlot handles adding a slot to a doctor's calendar.
func (h *SlotHandler) CreateSlot(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req CreateSlotRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	// formats were checked by the validator
	date, _ := utils.ParseDate(req.Date)
	start, _ := utils.ParseClock(req.StartTime)
	end, _ := utils.ParseClock(req.EndTime)

	slot, err := h.Scheduler.CreateSlot(c.Request.Context(), p, scheduling.CreateSlotInput{
		DoctorID: req.DoctorID,
		Date:     date,
		Start:    models.TimeOf(start),
		End:      models.TimeOf(end),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Slot created successfully", slot)
}

// DeleteSlot handles removing an unbooked slot.
func (h *SlotHandler) DeleteSlot(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.Scheduler.DeleteSlot(c.Request.Context(), p, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Slot deleted successfully", nil)
}

// ListAvailableSlots handles fetching a doctor's bookable slots from ?from=
// (default today).
func (h *SlotHandler) ListAvailableSlots(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	from, ok := utils.DateQuery(c, "from")
	if !ok {
		return
	}
	slots, err := h.Scheduler.ListAvailableSlots(c.Request.Context(), p, c.Param("id"), from)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Available slots fetched successfully", slots)
}

// ListDoctorSlots handles fetching every slot of a doctor, booked or not.
func (h *SlotHandler) ListDoctorSlots(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	from, ok := utils.DateQuery(c, "from")
	if !ok {
		return
	}
	slots, err := h.Scheduler.ListDoctorSlots(c.Request.Context(), p, c.Param("id"), from)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Slots fetched successfully", slots)
}
