package models

import "time"

// UserProfile holds personal details and display preferences. One row per
// user, created on first access.
type UserProfile struct {
	Base
	UserID    string     `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	PhotoKey  string     `json:"photo_key,omitempty"`
	Phone     string     `gorm:"size:20" json:"phone"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	CPF       string     `gorm:"size:14" json:"cpf"`
	Address   string     `gorm:"size:255" json:"address"`
	City      string     `gorm:"size:100" json:"city"`
	State     string     `gorm:"size:2" json:"state"`
	Bio       string     `gorm:"size:500" json:"bio"`

	// Preferences
	Language           string `gorm:"size:10;not null;default:'pt-BR'" json:"language"`
	Currency           string `gorm:"size:3;not null;default:'BRL'" json:"currency"`
	DateFormat         string `gorm:"size:10;not null;default:'dd/mm/yyyy'" json:"date_format"`
	EmailNotifications bool   `gorm:"not null;default:true" json:"email_notifications"`
	Theme              string `gorm:"size:10;not null;default:'system'" json:"theme"`
	AutoCategory       bool   `gorm:"not null;default:true" json:"auto_category"`
	DashboardLayout    string `gorm:"size:20;not null;default:'comfortable'" json:"dashboard_layout"`
	TwoFactorEnabled   bool   `gorm:"not null;default:false" json:"two_factor_enabled"`
}

// DefaultProfile returns a profile for userID with the default preferences.
func DefaultProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:             userID,
		Language:           "pt-BR",
		Currency:           "BRL",
		DateFormat:         "dd/mm/yyyy",
		EmailNotifications: true,
		Theme:              "system",
		AutoCategory:       true,
		DashboardLayout:    "comfortable",
	}
}
