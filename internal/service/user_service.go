package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"papyrus/internal/cache"
	"papyrus/internal/errors"
	"papyrus/internal/model"
	"papyrus/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// DefaultTopUp is credited by AddBalance when no amount is given.
var DefaultTopUp = decimal.NewFromInt(100)

// UpdateUserInput is a partial patch of a user's own profile.
type UpdateUserInput struct {
	Name     *string
	Phone    *string
	Address  *string
	Password *string
}

// UserService exposes account operations for the authenticated user.
type UserService interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*model.User, error)
	AddBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]model.PublicUser, error)
}

type userService struct {
	userRepo repository.UserRepository
	cache    *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(userRepo repository.UserRepository, cacheClient *cache.Client) UserService {
	return &userService{userRepo: userRepo, cache: cacheClient}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

// Get retrieves a user by ID with caching.
func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// Update patches the user's own profile; a new password is re-hashed
// before storage. Only the patched columns are written, so the balance
// is never overwritten from this read.
func (s *userService) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	fields := make([]string, 0, 4)
	if input.Name != nil {
		if *input.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", errors.ErrValidation)
		}
		user.Name = *input.Name
		fields = append(fields, "name")
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
		fields = append(fields, "phone")
	}
	if input.Address != nil {
		user.Address = *input.Address
		fields = append(fields, "address")
	}
	if input.Password != nil {
		if *input.Password == "" {
			return nil, fmt.Errorf("%w: password cannot be empty", errors.ErrValidation)
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
		fields = append(fields, "password_hash")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", errors.ErrValidation)
	}

	if err := s.userRepo.Update(ctx, user, fields...); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return user, nil
}

// AddBalance tops up the account with an atomic increment. A zero amount
// applies the default top-up; negative amounts are rejected.
func (s *userService) AddBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*model.User, error) {
	if amount.IsZero() {
		amount = DefaultTopUp
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be greater than zero", errors.ErrValidation)
	}

	if err := s.userRepo.AddToBalance(ctx, id, amount); err != nil {
		return nil, fmt.Errorf("add balance: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return user, nil
}

// Delete removes the account. Listings referencing the user are left in
// place and become orphaned; there is no automatic cascade.
func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

// List returns the public projection of every user.
func (s *userService) List(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	public := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Sanitized())
	}
	return public, nil
}
