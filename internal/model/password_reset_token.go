package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetTokenTTL is how long a reset token stays valid.
const PasswordResetTokenTTL = 30 * time.Minute

// PasswordResetToken is a single-use credential for resetting a
// forgotten password. Rows older than PasswordResetTokenTTL are
// treated as expired by the repository and purged lazily.
type PasswordResetToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index"`
	Token     string    `json:"-" gorm:"size:64;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *PasswordResetToken) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Expired reports whether the token is past its TTL at the given time.
func (p *PasswordResetToken) Expired(now time.Time) bool {
	return now.Sub(p.CreatedAt) > PasswordResetTokenTTL
}
