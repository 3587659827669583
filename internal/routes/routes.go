package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hospital-frontdesk-server/internal/config"
	"hospital-frontdesk-server/internal/handlers"
	"hospital-frontdesk-server/internal/middleware"
	"hospital-frontdesk-server/internal/models"
	"hospital-frontdesk-server/internal/scheduling"
)

// SetupRoutes configures the application routes.
//
// Role middleware only guards the account routes. Scheduling routes are
// authorized inside the scheduling service, which also checks ownership.
func SetupRoutes(router *gin.Engine, db *gorm.DB, scheduler *scheduling.Service, cfg *config.Config, log zerolog.Logger) {
	authHandler := handlers.NewAuthHandler(db, cfg, log)
	userHandler := handlers.NewUserHandler(db, log)
	slotHandler := handlers.NewSlotHandler(scheduler)
	appointmentHandler := handlers.NewAppointmentHandler(scheduler)
	queueHandler := handlers.NewQueueHandler(scheduler)
	roomHandler := handlers.NewRoomHandler(scheduler)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Personnel management (admin only)
		userRoutes := private.Group("/users")
		userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			userRoutes.POST("", userHandler.CreateUser)
			userRoutes.GET("", userHandler.GetUsers)
			userRoutes.GET("/:id", userHandler.GetUserByID)
			userRoutes.PUT("/:id", userHandler.UpdateUser)
		}

		patientRoutes := private.Group("/patients")
		{
			frontDesk := middleware.RoleAuthMiddleware(models.RoleStaff, models.RoleAdmin)
			patientRoutes.GET("", frontDesk, userHandler.GetPatients)
			patientRoutes.PUT("/:id", frontDesk, userHandler.UpdatePatient)
			patientRoutes.GET("/:id/history", appointmentHandler.GetPatientHistory)
		}

		// Doctor directory, calendars and room assignment
		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", userHandler.GetDoctors)
			doctorRoutes.GET("/specialties", userHandler.GetSpecialties)
			doctorRoutes.GET("/:id/slots", slotHandler.ListAvailableSlots)
			doctorRoutes.GET("/:id/slots/all", slotHandler.ListDoctorSlots)
			doctorRoutes.PUT("/:id/room", roomHandler.AssignRoom)
		}

		slotRoutes := private.Group("/slots")
		{
			slotRoutes.POST("", slotHandler.CreateSlot)
			slotRoutes.DELETE("/:id", slotHandler.DeleteSlot)
		}

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/upcoming", appointmentHandler.GetUpcomingAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.POST("/:id/cancel", appointmentHandler.CancelAppointment)
			appointmentRoutes.POST("/:id/complete", appointmentHandler.CompleteAppointment)
		}

		queueRoutes := private.Group("/queue")
		{
			queueRoutes.GET("/board", queueHandler.GetQueueBoard)
			queueRoutes.GET("/doctors/:id", queueHandler.GetDoctorQueue)
			queueRoutes.POST("/:id/start", queueHandler.StartConsultation)
			queueRoutes.POST("/:id/absent", queueHandler.MarkAbsent)
			queueRoutes.POST("/:id/complete", queueHandler.CompleteEntry)
		}

		roomRoutes := private.Group("/rooms")
		{
			roomRoutes.POST("", roomHandler.CreateRoom)
			roomRoutes.GET("", roomHandler.GetRooms)
			roomRoutes.PATCH("/:id/availability", roomHandler.SetAvailability)
			roomRoutes.DELETE("/:id", roomHandler.DeleteRoom)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
