package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "carteira/internal/errors"
	"carteira/internal/models"
)

var (
	validThemes    = map[string]bool{"light": true, "dark": true, "system": true}
	validLayouts   = map[string]bool{"compact": true, "comfortable": true, "spacious": true}
	validLanguages = map[string]bool{"pt-BR": true, "en-US": true, "es-ES": true}
	validDateFmts  = map[string]bool{"dd/mm/yyyy": true, "mm/dd/yyyy": true, "yyyy-mm-dd": true}
)

// profileService handles profile and preference persistence.
type profileService struct {
	db *gorm.DB
}

// NewProfileService creates a new ProfileServicer.
func NewProfileService(db *gorm.DB) ProfileServicer {
	return &profileService{db: db}
}

// GetProfile returns the user's profile, creating a default one on first access.
func (s *profileService) GetProfile(userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	created := models.DefaultProfile(userID)
	if err := s.db.Create(created).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return created, nil
}

// UpdateProfile applies the non-nil personal detail fields.
func (s *profileService) UpdateProfile(userID string, fields ProfileUpdateFields) (*models.UserProfile, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if fields.Phone != nil {
		updates["phone"] = strings.TrimSpace(*fields.Phone)
	}
	if fields.BirthDate != nil {
		d := models.DateOnly(*fields.BirthDate)
		updates["birth_date"] = &d
	}
	if fields.CPF != nil {
		updates["cpf"] = strings.TrimSpace(*fields.CPF)
	}
	if fields.Address != nil {
		updates["address"] = strings.TrimSpace(*fields.Address)
	}
	if fields.City != nil {
		updates["city"] = strings.TrimSpace(*fields.City)
	}
	if fields.State != nil {
		state := strings.ToUpper(strings.TrimSpace(*fields.State))
		if len(state) > 2 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "state must be a two-letter code")
		}
		updates["state"] = state
	}
	if fields.Bio != nil {
		if len([]rune(*fields.Bio)) > 500 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "bio must be at most 500 characters")
		}
		updates["bio"] = *fields.Bio
	}

	return s.apply(profile, updates)
}

// UpdateSettings applies the non-nil preference fields.
func (s *profileService) UpdateSettings(userID string, fields SettingsUpdateFields) (*models.UserProfile, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if fields.Language != nil {
		if !validLanguages[*fields.Language] {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported language")
		}
		updates["language"] = *fields.Language
	}
	if fields.Currency != nil {
		currency := strings.ToUpper(*fields.Currency)
		if len(currency) != 3 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be a three-letter code")
		}
		updates["currency"] = currency
	}
	if fields.DateFormat != nil {
		if !validDateFmts[*fields.DateFormat] {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported date format")
		}
		updates["date_format"] = *fields.DateFormat
	}
	if fields.Theme != nil {
		if !validThemes[*fields.Theme] {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported theme")
		}
		updates["theme"] = *fields.Theme
	}
	if fields.DashboardLayout != nil {
		if !validLayouts[*fields.DashboardLayout] {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported dashboard layout")
		}
		updates["dashboard_layout"] = *fields.DashboardLayout
	}
	if fields.EmailNotifications != nil {
		updates["email_notifications"] = *fields.EmailNotifications
	}
	if fields.AutoCategory != nil {
		updates["auto_category"] = *fields.AutoCategory
	}
	if fields.TwoFactorEnabled != nil {
		updates["two_factor_enabled"] = *fields.TwoFactorEnabled
	}

	return s.apply(profile, updates)
}

// SetPhoto stores a new photo key and returns the key it replaced.
func (s *profileService) SetPhoto(userID, key string) (string, *models.UserProfile, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return "", nil, err
	}
	previous := profile.PhotoKey

	updated, err := s.apply(profile, map[string]any{"photo_key": key})
	if err != nil {
		return "", nil, err
	}
	return previous, updated, nil
}

func (s *profileService) apply(profile *models.UserProfile, updates map[string]any) (*models.UserProfile, error) {
	if len(updates) == 0 {
		return profile, nil
	}
	if err := s.db.Model(profile).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var fresh models.UserProfile
	if err := s.db.Where("id = ?", profile.ID).First(&fresh).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &fresh, nil
}
