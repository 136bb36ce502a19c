package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"papyrus/internal/model"
	"papyrus/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User, fields ...string) error {
	args := m.Called(ctx, user, fields)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByVerificationToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) AddToBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockPasswordResetRepository is a mock implementation of PasswordResetRepository.
type MockPasswordResetRepository struct {
	mock.Mock
}

func (m *MockPasswordResetRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) FindValid(ctx context.Context, token string, cutoff time.Time) (*model.PasswordResetToken, error) {
	args := m.Called(ctx, token, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PasswordResetToken), args.Error(1)
}

func (m *MockPasswordResetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockTextbookRepository is a mock implementation of TextbookRepository.
// WithTransaction runs the callback against the mock itself and the
// Users repository configured for the test, standing in for the
// transaction-bound repositories.
type MockTextbookRepository struct {
	mock.Mock
	Users repository.UserRepository
}

func (m *MockTextbookRepository) Create(ctx context.Context, textbook *model.Textbook) error {
	args := m.Called(ctx, textbook)
	return args.Error(0)
}

func (m *MockTextbookRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Textbook, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Textbook), args.Error(1)
}

func (m *MockTextbookRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Textbook, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Textbook), args.Error(1)
}

func (m *MockTextbookRepository) FindAll(ctx context.Context, activeOnly bool) ([]model.Textbook, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Textbook), args.Error(1)
}

func (m *MockTextbookRepository) SearchByTitle(ctx context.Context, query string, activeOnly bool) ([]model.Textbook, error) {
	args := m.Called(ctx, query, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Textbook), args.Error(1)
}

func (m *MockTextbookRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Textbook, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Textbook), args.Error(1)
}

func (m *MockTextbookRepository) UpdateOwned(ctx context.Context, id, sellerID uuid.UUID, patch map[string]interface{}) (int64, error) {
	args := m.Called(ctx, id, sellerID, patch)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTextbookRepository) DeleteOwned(ctx context.Context, id, sellerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, id, sellerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTextbookRepository) ClaimForBuyer(ctx context.Context, id, buyerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, id, buyerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTextbookRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, textbooks repository.TextbookRepository, users repository.UserRepository) error) error {
	return fn(ctx, m, m.Users)
}

// MockMailer is a mock implementation of mail.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerification(ctx context.Context, to, verifyURL string) error {
	args := m.Called(ctx, to, verifyURL)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	args := m.Called(ctx, to, resetURL)
	return args.Error(0)
}

func (m *MockMailer) SendPurchaseConfirmation(ctx context.Context, to, title, role string) error {
	args := m.Called(ctx, to, title, role)
	return args.Error(0)
}
