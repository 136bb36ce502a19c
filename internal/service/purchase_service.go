package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"papyrus/internal/cache"
	"papyrus/internal/errors"
	"papyrus/internal/mail"
	"papyrus/internal/model"
	"papyrus/internal/repository"
)

// PurchaseService executes the buy workflow: claim the listing for the
// buyer and move the price from buyer to seller, all inside one
// database transaction.
type PurchaseService interface {
	Purchase(ctx context.Context, listingID, buyerID uuid.UUID) (*model.Textbook, error)
}

type purchaseService struct {
	textbookRepo repository.TextbookRepository
	userRepo     repository.UserRepository
	cache        *cache.Client
	mailer       mail.Mailer
}

// NewPurchaseService creates a new purchase service.
func NewPurchaseService(
	textbookRepo repository.TextbookRepository,
	userRepo repository.UserRepository,
	cacheClient *cache.Client,
	mailer mail.Mailer,
) PurchaseService {
	return &purchaseService{
		textbookRepo: textbookRepo,
		userRepo:     userRepo,
		cache:        cacheClient,
		mailer:       mailer,
	}
}

// Purchase transfers the listing to the buyer. Concurrent attempts on
// the same listing serialize on its row lock; only the first can claim
// it (the buyer column is set with a conditional update that matches
// only while it is NULL), every later attempt observes AlreadySold.
// Balance moves use atomic increments, so two purchases touching the
// same seller or buyer never lose updates, and the buyer row is locked
// so concurrent purchases of different listings cannot both pass the
// funds check and drive the balance negative. The transaction commits
// all of it or none of it.
func (s *purchaseService) Purchase(ctx context.Context, listingID, buyerID uuid.UUID) (*model.Textbook, error) {
	var purchased *model.Textbook

	err := s.textbookRepo.WithTransaction(ctx, func(ctx context.Context, textbooks repository.TextbookRepository, users repository.UserRepository) error {
		listing, err := textbooks.FindByIDForUpdate(ctx, listingID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrListingNotFound
			}
			return fmt.Errorf("load listing: %w", err)
		}

		buyer, err := users.FindByIDForUpdate(ctx, buyerID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrUserNotFound
			}
			return fmt.Errorf("load buyer: %w", err)
		}

		if listing.Price.GreaterThan(buyer.Balance) {
			return errors.ErrInsufficientFunds
		}
		if listing.SellerID == buyerID {
			return errors.ErrSelfPurchase
		}
		if listing.Sold() {
			return errors.ErrAlreadySold
		}

		// Claim the listing. The condition re-checks buyer_id IS NULL at
		// write time, so even without the row lock at most one purchase
		// can ever match.
		affected, err := textbooks.ClaimForBuyer(ctx, listingID, buyerID)
		if err != nil {
			return fmt.Errorf("claim listing: %w", err)
		}
		if affected == 0 {
			return errors.ErrAlreadySold
		}

		if err := users.AddToBalance(ctx, buyerID, listing.Price.Neg()); err != nil {
			return fmt.Errorf("debit buyer: %w", err)
		}
		if err := users.AddToBalance(ctx, listing.SellerID, listing.Price); err != nil {
			return fmt.Errorf("credit seller: %w", err)
		}

		listing.BuyerID = &buyerID
		purchased = listing
		return nil
	})

	if err != nil {
		log.Printf("purchase of %s by %s failed: %v", listingID, buyerID, err)
		return nil, err
	}

	_ = s.cache.Delete(ctx, activeListingsCacheKey)

	s.notify(ctx, purchased, buyerID)

	return purchased, nil
}

// notify sends best-effort confirmations; the purchase is already
// committed and is never rolled back on delivery failure.
func (s *purchaseService) notify(ctx context.Context, listing *model.Textbook, buyerID uuid.UUID) {
	if buyer, err := s.userRepo.FindByID(ctx, buyerID); err == nil {
		if err := s.mailer.SendPurchaseConfirmation(ctx, buyer.Email, listing.Title, "buyer"); err != nil {
			log.Printf("buyer confirmation mail failed: %v", err)
		}
	}
	if seller, err := s.userRepo.FindByID(ctx, listing.SellerID); err == nil {
		if err := s.mailer.SendPurchaseConfirmation(ctx, seller.Email, listing.Title, "seller"); err != nil {
			log.Printf("seller confirmation mail failed: %v", err)
		}
	}
}
