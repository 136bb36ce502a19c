package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InitialBalance is credited to every account at registration.
var InitialBalance = decimal.NewFromInt(100)

// User represents a registered marketplace member.
type User struct {
	ID                  uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Name                string          `json:"name" gorm:"size:255;not null"`
	Email               string          `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash        string          `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Phone               string          `json:"phone,omitempty" gorm:"size:32"`
	Address             string          `json:"address,omitempty" gorm:"size:255"`
	Balance             decimal.Decimal `json:"balance" gorm:"type:decimal(20,2);not null;default:100"`
	Verified            bool            `json:"verified" gorm:"default:false;index"`
	VerificationToken   *string         `json:"-" gorm:"size:64;index"`
	VerificationExpires *time.Time      `json:"-"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`

	// Relations
	Listings []Textbook `json:"listings,omitempty" gorm:"foreignKey:SellerID"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// PublicUser is the projection safe to return to any caller.
// Credential and verification material never leave the server.
type PublicUser struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone,omitempty"`
	Address string    `json:"address,omitempty"`
}

// Sanitized returns the public projection of the user.
func (u *User) Sanitized() PublicUser {
	return PublicUser{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		Address: u.Address,
	}
}
