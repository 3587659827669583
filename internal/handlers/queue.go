package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"hospital-frontdesk-server/internal/policy"
	"hospital-frontdesk-server/internal/scheduling"
	"hospital-frontdesk-server/internal/utils"
)

// QueueHandler handles daily queue requests.
type QueueHandler struct {
	Scheduler *scheduling.Service
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(scheduler *scheduling.Service) *QueueHandler {
	return &QueueHandler{Scheduler: scheduler}
}

// GetDoctorQueue handles fetching one doctor's queue for ?date= (default today).
func (h *QueueHandler) GetDoctorQueue(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	date, ok := utils.DateQuery(c, "date")
	if !ok {
		return
	}
	queue, err := h.Scheduler.ViewDailyQueue(c.Request.Context(), p, c.Param("id"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Queue fetched successfully", queue)
}

// GetQueueBoard handles fetching every doctor's queue for ?date=.
func (h *QueueHandler) GetQueueBoard(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	date, ok := utils.DateQuery(c, "date")
	if !ok {
		return
	}
	board, err := h.Scheduler.QueueBoard(c.Request.Context(), p, date)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Queue board fetched successfully", board)
}

type entryTransition func(ctx context.Context, p policy.Principal, entryID string) (scheduling.QueueEntryView, error)

func (h *QueueHandler) transition(c *gin.Context, apply entryTransition, message string) {
	p, ok := principal(c)
	if !ok {
		return
	}
	entry, err := apply(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, message, entry)
}

// StartConsultation handles calling a waiting patient in.
func (h *QueueHandler) StartConsultation(c *gin.Context) {
	h.transition(c, h.Scheduler.StartConsultation, "Consultation started")
}

// MarkAbsent handles recording a no-show.
func (h *QueueHandler) MarkAbsent(c *gin.Context) {
	h.transition(c, h.Scheduler.MarkAbsent, "Patient marked absent")
}

// CompleteEntry handles finishing a consultation from the queue.
func (h *QueueHandler) CompleteEntry(c *gin.Context) {
	h.transition(c, h.Scheduler.CompleteEntry, "Consultation completed")
}
