package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hospital-frontdesk-server/internal/models"
	"hospital-frontdesk-server/internal/utils"
)

// UserHandler handles personnel, patient and doctor directory requests.
type UserHandler struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB, log zerolog.Logger) *UserHandler {
	return &UserHandler{DB: db, Log: log}
}

// CreateUserRequest represents the request body for creating a personnel
// account by an admin.
type CreateUserRequest struct {
	FirstName   string  `json:"firstName" validate:"required,max=100"`
	LastName    string  `json:"lastName" validate:"required,max=100"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8"`
	Role        string  `json:"role" validate:"required,oneof=doctor staff admin"`
	PhoneNumber string  `json:"phoneNumber" validate:"omitempty,max=20"`
	Specialty   string  `json:"specialty" validate:"required_if=Role doctor,max=100"`
	RoomID      *string `json:"roomId" validate:"omitempty,uuid"`
}

// CreateUser handles creating a doctor, staff or admin account.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := emailTaken(h.DB, email, "")
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if taken {
		utils.Conflict(c, "User with this email already exists")
		return
	}

	user := models.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       email,
		Role:        models.Role(req.Role),
		PhoneNumber: req.PhoneNumber,
	}
	if user.Role == models.RoleDoctor {
		user.Specialty = strings.TrimSpace(req.Specialty)
		if req.RoomID != nil {
			if !h.roomExists(c, *req.RoomID) {
				return
			}
			user.RoomID = req.RoomID
		}
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	h.Log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("personnel created")
	utils.Created(c, "User created successfully", user.Sanitize())
}

// GetUsers handles listing personnel, optionally filtered by ?role=.
func (h *UserHandler) GetUsers(c *gin.Context) {
	q := h.DB.Where("role IN ?", []models.Role{models.RoleDoctor, models.RoleStaff, models.RoleAdmin})
	if role := models.Role(c.Query("role")); role != "" {
		if !role.IsPersonnel() {
			utils.BadRequest(c, "Invalid role filter")
			return
		}
		q = q.Where("role = ?", role)
	}

	var users []models.User
	if err := q.Order("last_name ASC").Order("first_name ASC").Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}
	utils.Success(c, "Users fetched successfully", sanitizeAll(users))
}

// GetUserByID handles fetching a single user by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, ok := h.loadUser(c, c.Param("id"))
	if !ok {
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// UpdateUserRequest represents the request body for updating a personnel
// account by an admin.
type UpdateUserRequest struct {
	FirstName   string `json:"firstName" validate:"max=100"`
	LastName    string `json:"lastName" validate:"max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
	Role        string `json:"role" validate:"omitempty,oneof=doctor staff admin"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=20"`
	Specialty   string `json:"specialty" validate:"max=100"`
}

// UpdateUser handles updating personnel. Admin accounts keep their role and
// patients are managed through the patient routes.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, ok := h.loadUser(c, c.Param("id"))
	if !ok {
		return
	}
	if !user.Role.IsPersonnel() {
		utils.BadRequest(c, "Patients are updated through the patient routes")
		return
	}
	if req.Role != "" && models.Role(req.Role) != user.Role {
		if user.Role == models.RoleAdmin {
			utils.Forbidden(c, "Admin accounts cannot change role")
			return
		}
		if user.Role == models.RoleDoctor {
			busy, err := h.hasOpenSchedule(user.ID)
			if err != nil {
				utils.InternalServerError(c, "Database error: "+err.Error())
				return
			}
			if busy {
				utils.Conflict(c, "Doctor still has open slots or confirmed appointments")
				return
			}
		}
		user.Role = models.Role(req.Role)
		if user.Role != models.RoleDoctor {
			user.Specialty = ""
			user.RoomID = nil
		}
	}

	if !h.applyCommonUpdates(c, &user, req.FirstName, req.LastName, req.Email, req.PhoneNumber) {
		return
	}
	if req.Specialty != "" && user.Role == models.RoleDoctor {
		user.Specialty = strings.TrimSpace(req.Specialty)
	}

	if err := h.DB.Omit("Room", "RefreshTokens").Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}
	utils.Success(c, "User updated successfully", user.Sanitize())
}

// GetPatients handles listing patients for the front desk, optionally
// matching ?search= against name or email.
func (h *UserHandler) GetPatients(c *gin.Context) {
	q := h.DB.Where("role = ?", models.RolePatient)
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var patients []models.User
	if err := q.Order("last_name ASC").Order("first_name ASC").Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}
	utils.Success(c, "Patients fetched successfully", sanitizeAll(patients))
}

// UpdatePatientRequest represents the request body for updating a patient
// record at the front desk.
type UpdatePatientRequest struct {
	FirstName   string `json:"firstName" validate:"max=100"`
	LastName    string `json:"lastName" validate:"max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=20"`
	DateOfBirth string `json:"dateOfBirth" validate:"omitempty,date"`
}

// UpdatePatient handles updating a patient's contact details.
func (h *UserHandler) UpdatePatient(c *gin.Context) {
	var req UpdatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, ok := h.loadUser(c, c.Param("id"))
	if !ok {
		return
	}
	if user.Role != models.RolePatient {
		utils.NotFound(c, "Patient not found")
		return
	}
	if !h.applyCommonUpdates(c, &user, req.FirstName, req.LastName, req.Email, req.PhoneNumber) {
		return
	}
	if req.DateOfBirth != "" {
		dob, _ := utils.ParseDate(req.DateOfBirth)
		user.DateOfBirth = &dob
	}

	if err := h.DB.Omit("Room", "RefreshTokens").Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}
	utils.Success(c, "Patient updated successfully", user.Sanitize())
}

// GetDoctors handles fetching all doctors, optionally filtered by
// ?specialty=. Patients use it to pick a doctor before booking.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	q := h.DB.Where("role = ?", models.RoleDoctor)
	if specialty := strings.TrimSpace(c.Query("specialty")); specialty != "" {
		q = q.Where("specialty = ?", specialty)
	}

	var doctors []models.User
	if err := q.Order("last_name ASC").Order("first_name ASC").Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}
	utils.Success(c, "Doctors fetched successfully", sanitizeAll(doctors))
}

// GetSpecialties handles listing the distinct specialties of doctors.
func (h *UserHandler) GetSpecialties(c *gin.Context) {
	specialties := make([]string, 0)
	err := h.DB.Model(&models.User{}).
		Where("role = ? AND specialty <> ''", models.RoleDoctor).
		Distinct().
		Order("specialty ASC").
		Pluck("specialty", &specialties).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch specialties: "+err.Error())
		return
	}
	utils.Success(c, "Specialties fetched successfully", specialties)
}

func (h *UserHandler) loadUser(c *gin.Context, id string) (models.User, bool) {
	var user models.User
	if err := h.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return user, false
	}
	return user, true
}

// hasOpenSchedule reports whether the doctor still has bookable slots or
// confirmed appointments.
func (h *UserHandler) hasOpenSchedule(doctorID string) (bool, error) {
	var slots, appointments int64
	if err := h.DB.Model(&models.Slot{}).
		Where("doctor_id = ? AND available = ?", doctorID, true).
		Count(&slots).Error; err != nil {
		return false, err
	}
	if err := h.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND status = ?", doctorID, models.StatusConfirmed).
		Count(&appointments).Error; err != nil {
		return false, err
	}
	return slots > 0 || appointments > 0, nil
}

func (h *UserHandler) roomExists(c *gin.Context, roomID string) bool {
	var n int64
	if err := h.DB.Model(&models.Room{}).Where("id = ?", roomID).Count(&n).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return false
	}
	if n == 0 {
		utils.NotFound(c, "Room not found")
		return false
	}
	return true
}

// applyCommonUpdates copies non-empty fields onto user, checking email
// uniqueness. It writes the error response and returns false on failure.
func (h *UserHandler) applyCommonUpdates(c *gin.Context, user *models.User, firstName, lastName, email, phone string) bool {
	if firstName != "" {
		user.FirstName = firstName
	}
	if lastName != "" {
		user.LastName = lastName
	}
	if phone != "" {
		user.PhoneNumber = phone
	}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" && email != user.Email {
		taken, err := emailTaken(h.DB, email, user.ID)
		if err != nil {
			utils.InternalServerError(c, "Database error checking email: "+err.Error())
			return false
		}
		if taken {
			utils.Conflict(c, "New email is already in use")
			return false
		}
		user.Email = email
	}
	return true
}

func sanitizeAll(users []models.User) []models.UserSanitized {
	out := make([]models.UserSanitized, len(users))
	for i := range users {
		out[i] = users[i].Sanitize()
	}
	return out
}
