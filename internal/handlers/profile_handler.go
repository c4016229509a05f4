package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "carteira/internal/errors"
	"carteira/internal/logger"
	"carteira/internal/models"
	"carteira/internal/services"
	"carteira/internal/uploads"
)

// ProfileHandler serves the profile and settings pages.
type ProfileHandler struct {
	userService    services.UserServicer
	profileService services.ProfileServicer
	store          uploads.Store
	auditService   services.AuditServicer
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(userService services.UserServicer, profileService services.ProfileServicer, store uploads.Store, auditService services.AuditServicer) *ProfileHandler {
	return &ProfileHandler{
		userService:    userService,
		profileService: profileService,
		store:          store,
		auditService:   auditService,
	}
}

// ProfileResponse combines the user, its profile and the photo location.
type ProfileResponse struct {
	User     UserResponse        `json:"user"`
	Profile  *models.UserProfile `json:"profile"`
	PhotoURL string              `json:"photo_url,omitempty"`
}

// UpdateProfileRequest holds the editable profile fields. Omitted fields
// are left unchanged.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Email     *string `json:"email" binding:"omitempty,email,max=255"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
	BirthDate *string `json:"birth_date"`
	CPF       *string `json:"cpf" binding:"omitempty,max=14"`
	Address   *string `json:"address" binding:"omitempty,max=255"`
	City      *string `json:"city" binding:"omitempty,max=100"`
	State     *string `json:"state"`
	Bio       *string `json:"bio"`
}

// UpdateSettingsRequest holds the editable preferences.
type UpdateSettingsRequest struct {
	Language           *string `json:"language"`
	Currency           *string `json:"currency"`
	DateFormat         *string `json:"date_format"`
	EmailNotifications *bool   `json:"email_notifications"`
	Theme              *string `json:"theme"`
	AutoCategory       *bool   `json:"auto_category"`
	DashboardLayout    *string `json:"dashboard_layout"`
	TwoFactorEnabled   *bool   `json:"two_factor_enabled"`
}

func (h *ProfileHandler) respond(c *gin.Context, status int, user *models.User, profile *models.UserProfile) {
	photoURL, err := h.store.URL(c.Request.Context(), profile.PhotoKey)
	if err != nil {
		logger.Get().Warnw("photo url unavailable", "user_id", user.ID, "error", err)
	}
	c.JSON(status, ProfileResponse{User: toUserResponse(user), Profile: profile, PhotoURL: photoURL})
}

// GetProfile returns the user's profile
// @Summary     Get profile
// @Description Get the authenticated user's data, profile and preferences
// @Tags        profile
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ProfileResponse "Profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	profile, err := h.profileService.GetProfile(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.respond(c, http.StatusOK, user, profile)
}

// UpdateProfile updates the user's names, email and personal details
// @Summary     Update profile
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Fields to change"
// @Success     200 {object} ProfileResponse "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already in use"
// @Router      /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.ProfileUpdateFields{
		Phone:   req.Phone,
		CPF:     req.CPF,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Bio:     req.Bio,
	}
	if req.BirthDate != nil && *req.BirthDate != "" {
		d, err := time.Parse(dateLayout, *req.BirthDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "birth_date must be YYYY-MM-DD"))
			return
		}
		fields.BirthDate = &d
	}

	user, err := h.userService.UpdateUser(userID, services.UserUpdateFields{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	profile, err := h.profileService.UpdateProfile(userID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdateProfile, services.AuditResourceUser, userID, c.ClientIP(), nil)
	h.respond(c, http.StatusOK, user, profile)
}

// UploadPhoto replaces the profile photo
// @Summary     Upload profile photo
// @Tags        profile
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       photo formData file true "Image file"
// @Success     200 {object} ProfileResponse "Updated profile"
// @Failure     400 {object} ErrorResponse "Missing or unsupported file"
// @Failure     502 {object} ErrorResponse "Storage unavailable"
// @Router      /profile/photo [post]
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	key, err := saveUpload(c, h.store, "photo", uploads.PrefixProfilePhotos)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if key == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Selecione uma imagem."))
		return
	}

	previous, profile, err := h.profileService.SetPhoto(userID, key)
	if err != nil {
		_ = h.store.Delete(c.Request.Context(), key)
		respondWithError(c, err)
		return
	}
	removeUpload(c, h.store, previous)

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdatePhoto, services.AuditResourceUser, userID, c.ClientIP(), map[string]any{"key": key})
	h.respond(c, http.StatusOK, user, profile)
}

// UpdateSettings updates display preferences
// @Summary     Update settings
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateSettingsRequest true "Preferences to change"
// @Success     200 {object} models.UserProfile "Updated preferences"
// @Failure     400 {object} ErrorResponse "Unsupported value"
// @Router      /settings [put]
func (h *ProfileHandler) UpdateSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	profile, err := h.profileService.UpdateSettings(userID, services.SettingsUpdateFields(req))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdateSettings, services.AuditResourceUser, userID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, profile)
}
