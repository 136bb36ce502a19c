package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"papyrus/internal/cache"
	"papyrus/internal/errors"
	"papyrus/internal/model"
	"papyrus/internal/repository"
)

const (
	activeListingsCacheKey = "textbooks:active"
	listingsCacheTTL       = 30 * time.Second
)

// CreateListingInput carries the fields accepted when creating a listing.
type CreateListingInput struct {
	Title       string
	Author      string
	ISBN        string
	Price       decimal.Decimal
	Condition   model.Condition
	Category    string
	Description string
	Images      []string
}

// UpdateListingInput is a partial patch; nil fields are left untouched.
type UpdateListingInput struct {
	Title       *string
	Author      *string
	ISBN        *string
	Price       *decimal.Decimal
	Condition   *model.Condition
	Category    *string
	Description *string
	Images      []string
}

// TextbookService handles listing creation, browsing and seller mutations.
type TextbookService interface {
	Create(ctx context.Context, sellerID uuid.UUID, input CreateListingInput) (*model.Textbook, error)
	ListAll(ctx context.Context, activeOnly bool) ([]model.ListingView, error)
	Search(ctx context.Context, query string, activeOnly bool) ([]model.ListingView, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Textbook, error)
	Update(ctx context.Context, id, sellerID uuid.UUID, input UpdateListingInput) (*model.Textbook, error)
	Delete(ctx context.Context, id, sellerID uuid.UUID) error
}

type textbookService struct {
	textbookRepo repository.TextbookRepository
	cache        *cache.Client
}

// NewTextbookService creates a new textbook service.
func NewTextbookService(textbookRepo repository.TextbookRepository, cacheClient *cache.Client) TextbookService {
	return &textbookService{
		textbookRepo: textbookRepo,
		cache:        cacheClient,
	}
}

// Create validates and persists a new unsold listing for the seller.
func (s *textbookService) Create(ctx context.Context, sellerID uuid.UUID, input CreateListingInput) (*model.Textbook, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", errors.ErrValidation)
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: price must be greater than zero", errors.ErrValidation)
	}
	condition := input.Condition
	if condition == "" {
		condition = model.ConditionUsed
	}
	if !model.ValidCondition(condition) {
		return nil, fmt.Errorf("%w: unknown condition %q", errors.ErrValidation, input.Condition)
	}
	category := input.Category
	if category == "" {
		category = "Uncategorized"
	}
	if !model.ValidCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", errors.ErrValidation, input.Category)
	}

	textbook := &model.Textbook{
		Title:       input.Title,
		Author:      input.Author,
		ISBN:        input.ISBN,
		Price:       input.Price,
		Condition:   condition,
		Category:    category,
		Description: input.Description,
		Images:      input.Images,
		SellerID:    sellerID,
		BuyerID:     nil,
	}

	if err := s.textbookRepo.Create(ctx, textbook); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	_ = s.cache.Delete(ctx, activeListingsCacheKey)
	return textbook, nil
}

// ListAll returns listings with the seller's public identity attached.
// The active view is served from cache when fresh.
func (s *textbookService) ListAll(ctx context.Context, activeOnly bool) ([]model.ListingView, error) {
	if activeOnly {
		if data, _ := s.cache.Get(ctx, activeListingsCacheKey); data != nil {
			var cached []model.ListingView
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	textbooks, err := s.textbookRepo.FindAll(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list textbooks: %w", err)
	}
	views := toListingViews(textbooks)

	if activeOnly {
		if payload, err := json.Marshal(views); err == nil {
			_ = s.cache.Set(ctx, activeListingsCacheKey, payload, listingsCacheTTL)
		}
	}
	return views, nil
}

// Search does a case-insensitive substring match on the title.
func (s *textbookService) Search(ctx context.Context, query string, activeOnly bool) ([]model.ListingView, error) {
	textbooks, err := s.textbookRepo.SearchByTitle(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("search textbooks: %w", err)
	}
	return toListingViews(textbooks), nil
}

// ListBySeller returns all of a seller's listings, sold and unsold.
func (s *textbookService) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Textbook, error) {
	textbooks, err := s.textbookRepo.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller textbooks: %w", err)
	}
	return textbooks, nil
}

// Update patches a listing the seller owns while it is unsold. A miss
// (absent, foreign, or already sold) is reported uniformly so callers
// cannot distinguish "not found" from "not yours".
func (s *textbookService) Update(ctx context.Context, id, sellerID uuid.UUID, input UpdateListingInput) (*model.Textbook, error) {
	patch := map[string]interface{}{}
	if input.Title != nil {
		if *input.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", errors.ErrValidation)
		}
		patch["title"] = *input.Title
	}
	if input.Author != nil {
		patch["author"] = *input.Author
	}
	if input.ISBN != nil {
		patch["isbn"] = *input.ISBN
	}
	if input.Price != nil {
		if input.Price.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: price must be greater than zero", errors.ErrValidation)
		}
		patch["price"] = *input.Price
	}
	if input.Condition != nil {
		if !model.ValidCondition(*input.Condition) {
			return nil, fmt.Errorf("%w: unknown condition %q", errors.ErrValidation, *input.Condition)
		}
		patch["condition"] = *input.Condition
	}
	if input.Category != nil {
		if !model.ValidCategory(*input.Category) {
			return nil, fmt.Errorf("%w: unknown category %q", errors.ErrValidation, *input.Category)
		}
		patch["category"] = *input.Category
	}
	if input.Description != nil {
		patch["description"] = *input.Description
	}
	if input.Images != nil {
		images, err := json.Marshal(input.Images)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid images", errors.ErrValidation)
		}
		patch["images"] = string(images)
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", errors.ErrValidation)
	}

	affected, err := s.textbookRepo.UpdateOwned(ctx, id, sellerID, patch)
	if err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	if affected == 0 {
		return nil, errors.ErrNotFoundOrUnauthorized
	}

	_ = s.cache.Delete(ctx, activeListingsCacheKey)

	textbook, err := s.textbookRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFoundOrUnauthorized
		}
		return nil, fmt.Errorf("reload listing: %w", err)
	}
	return textbook, nil
}

// Delete removes an unsold listing the seller owns, under the same
// uniform miss rule as Update. Sold listings are not deletable.
func (s *textbookService) Delete(ctx context.Context, id, sellerID uuid.UUID) error {
	affected, err := s.textbookRepo.DeleteOwned(ctx, id, sellerID)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if affected == 0 {
		return errors.ErrNotFoundOrUnauthorized
	}
	_ = s.cache.Delete(ctx, activeListingsCacheKey)
	return nil
}

func toListingViews(textbooks []model.Textbook) []model.ListingView {
	views := make([]model.ListingView, 0, len(textbooks))
	for _, t := range textbooks {
		views = append(views, model.ListingView{
			Textbook:   t,
			SellerInfo: t.Seller.Sanitized(),
		})
	}
	return views
}
