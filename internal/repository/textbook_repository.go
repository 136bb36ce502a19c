package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"papyrus/internal/model"
)

// TextbookRepository defines listing persistence operations.
type TextbookRepository interface {
	Create(ctx context.Context, textbook *model.Textbook) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Textbook, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Textbook, error)
	// FindAll returns listings with the seller preloaded. With activeOnly
	// set, sold listings (buyer assigned) are filtered in the query.
	FindAll(ctx context.Context, activeOnly bool) ([]model.Textbook, error)
	// SearchByTitle does a case-insensitive substring match on the title.
	SearchByTitle(ctx context.Context, query string, activeOnly bool) ([]model.Textbook, error)
	FindBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Textbook, error)
	// UpdateOwned patches a listing only if it belongs to sellerID and is
	// still unsold. Returns the number of rows matched so callers can
	// translate zero into a not-found-or-unauthorized failure.
	UpdateOwned(ctx context.Context, id, sellerID uuid.UUID, patch map[string]interface{}) (int64, error)
	// DeleteOwned removes a listing under the same ownership rule.
	DeleteOwned(ctx context.Context, id, sellerID uuid.UUID) (int64, error)
	// ClaimForBuyer conditionally assigns the buyer: the UPDATE only
	// matches while buyer_id is still NULL, so at most one purchase of a
	// listing can ever succeed.
	ClaimForBuyer(ctx context.Context, id, buyerID uuid.UUID) (int64, error)
	// WithTransaction executes fn with repositories bound to a single
	// database transaction spanning listings and user balances.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, textbooks TextbookRepository, users UserRepository) error) error
}

type textbookRepository struct {
	db *gorm.DB
}

// NewTextbookRepository creates a new textbook repository.
func NewTextbookRepository(db *gorm.DB) TextbookRepository {
	return &textbookRepository{db: db}
}

func (r *textbookRepository) Create(ctx context.Context, textbook *model.Textbook) error {
	return r.db.WithContext(ctx).Create(textbook).Error
}

func (r *textbookRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Textbook, error) {
	var textbook model.Textbook
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&textbook).Error; err != nil {
		return nil, err
	}
	return &textbook, nil
}

// FindByIDForUpdate finds a listing by ID with a row-level lock for update.
func (r *textbookRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Textbook, error) {
	var textbook model.Textbook
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&textbook).Error; err != nil {
		return nil, err
	}
	return &textbook, nil
}

func (r *textbookRepository) FindAll(ctx context.Context, activeOnly bool) ([]model.Textbook, error) {
	q := r.db.WithContext(ctx).Preload("Seller")
	if activeOnly {
		q = q.Where("buyer_id IS NULL")
	}
	var textbooks []model.Textbook
	if err := q.Order("created_at DESC").Find(&textbooks).Error; err != nil {
		return nil, err
	}
	return textbooks, nil
}

func (r *textbookRepository) SearchByTitle(ctx context.Context, query string, activeOnly bool) ([]model.Textbook, error) {
	q := r.db.WithContext(ctx).Preload("Seller").
		Where("LOWER(title) LIKE LOWER(?)", "%"+query+"%")
	if activeOnly {
		q = q.Where("buyer_id IS NULL")
	}
	var textbooks []model.Textbook
	if err := q.Order("created_at DESC").Find(&textbooks).Error; err != nil {
		return nil, err
	}
	return textbooks, nil
}

func (r *textbookRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Textbook, error) {
	var textbooks []model.Textbook
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&textbooks).Error; err != nil {
		return nil, err
	}
	return textbooks, nil
}

func (r *textbookRepository) UpdateOwned(ctx context.Context, id, sellerID uuid.UUID, patch map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Textbook{}).
		Where("id = ? AND seller_id = ? AND buyer_id IS NULL", id, sellerID).
		Updates(patch)
	return res.RowsAffected, res.Error
}

func (r *textbookRepository) DeleteOwned(ctx context.Context, id, sellerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND seller_id = ? AND buyer_id IS NULL", id, sellerID).
		Delete(&model.Textbook{})
	return res.RowsAffected, res.Error
}

func (r *textbookRepository) ClaimForBuyer(ctx context.Context, id, buyerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Textbook{}).
		Where("id = ? AND buyer_id IS NULL", id).
		Update("buyer_id", buyerID)
	return res.RowsAffected, res.Error
}

// WithTransaction executes fn within a database transaction, handing it
// textbook and user repositories bound to the same transaction.
func (r *textbookRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, textbooks TextbookRepository, users UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &textbookRepository{db: tx}, &userRepository{db: tx})
	})
}
