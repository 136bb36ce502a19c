package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"papyrus/internal/model"
)

// PasswordResetRepository defines reset-token persistence operations.
// Expiry is enforced at the store level: FindValid only matches rows
// younger than the cutoff, standing in for a TTL index.
type PasswordResetRepository interface {
	Create(ctx context.Context, token *model.PasswordResetToken) error
	FindValid(ctx context.Context, token string, cutoff time.Time) (*model.PasswordResetToken, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByUser invalidates all outstanding tokens for a user, used
	// when a new reset request supersedes earlier ones.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type passwordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository creates a new password reset repository.
func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *passwordResetRepository) FindValid(ctx context.Context, token string, cutoff time.Time) (*model.PasswordResetToken, error) {
	var row model.PasswordResetToken
	if err := r.db.WithContext(ctx).
		Where("token = ? AND created_at > ?", token, cutoff).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *passwordResetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PasswordResetToken{}).Error
}

func (r *passwordResetRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.PasswordResetToken{}).Error
}
