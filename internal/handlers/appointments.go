package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-frontdesk-server/internal/models"
	"hospital-frontdesk-server/internal/scheduling"
	"hospital-frontdesk-server/internal/utils"
)

// AppointmentHandler handles appointment-related requests.
type AppointmentHandler struct {
	Scheduler *scheduling.Service
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(scheduler *scheduling.Service) *AppointmentHandler {
	return &AppointmentHandler{Scheduler: scheduler}
}

// CreateAppointmentRequest represents the request body for booking a slot.
// Patients leave PatientID empty; staff and admins book on behalf of one.
type CreateAppointmentRequest struct {
	SlotID    string `json:"slotId" validate:"required,uuid"`
	PatientID string `json:"patientId" validate:"omitempty,uuid"`
}

// CreateAppointment handles booking a slot.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Scheduler.Book(c.Request.Context(), p, scheduling.BookInput{
		PatientID: req.PatientID,
		SlotID:    req.SlotID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Appointment booked successfully", appointment)
}

// GetAppointmentsForUser handles listing appointments. Patients and doctors
// get their own; staff and admins may filter by ?status=, ?doctorId=,
// ?patientId= and ?date=.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	filter := scheduling.AppointmentFilter{
		Status:    models.AppointmentStatus(c.Query("status")),
		DoctorID:  c.Query("doctorId"),
		PatientID: c.Query("patientId"),
	}
	switch filter.Status {
	case "", models.StatusConfirmed, models.StatusCancelled, models.StatusCompleted:
	default:
		utils.BadRequest(c, "Invalid status filter")
		return
	}
	if raw := c.Query("date"); raw != "" {
		date, err := utils.ParseDate(raw)
		if err != nil {
			utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		filter.Date = &date
	}

	appointments, err := h.Scheduler.ListAppointments(c.Request.Context(), p, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetUpcomingAppointments handles listing the caller's confirmed
// appointments from today onwards.
func (h *AppointmentHandler) GetUpcomingAppointments(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	appointments, err := h.Scheduler.UpcomingAppointments(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Upcoming appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single appointment.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	appointment, err := h.Scheduler.GetAppointment(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment)
}

// CancelAppointment handles cancelling a confirmed appointment.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	appointment, err := h.Scheduler.Cancel(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Appointment cancelled successfully", appointment)
}

// CompleteAppointment handles closing a consultation from the appointment.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	appointment, err := h.Scheduler.Complete(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Appointment completed successfully", appointment)
}

// GetPatientHistory handles fetching a patient's appointment history.
func (h *AppointmentHandler) GetPatientHistory(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	history, err := h.Scheduler.PatientHistory(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Patient history fetched successfully", history)
}
