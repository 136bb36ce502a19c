package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"papyrus/internal/errors"
	"papyrus/internal/model"
)

func TestUserService_Get(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, Email: "test@example.com"}, nil)

		svc := NewUserService(mockRepo, nil)
		user, err := svc.Get(context.Background(), id)

		assert.NoError(t, err)
		assert.Equal(t, "test@example.com", user.Email)
		mockRepo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		svc := NewUserService(mockRepo, nil)
		user, err := svc.Get(context.Background(), id)

		assert.ErrorIs(t, err, errors.ErrUserNotFound)
		assert.Nil(t, user)
	})
}

func TestUserService_Update(t *testing.T) {
	id := uuid.New()
	newName := "New Name"
	newPassword := "newpassword"
	emptyName := ""

	t.Run("patches profile and rehashes password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{
			ID:           id,
			Name:         "Old Name",
			PasswordHash: "old-hash",
		}, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Name == newName &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(newPassword)) == nil
		}), []string{"name", "password_hash"}).Return(nil)

		svc := NewUserService(mockRepo, nil)
		user, err := svc.Update(context.Background(), id, UpdateUserInput{
			Name:     &newName,
			Password: &newPassword,
		})

		assert.NoError(t, err)
		assert.Equal(t, newName, user.Name)
		mockRepo.AssertExpectations(t)
	})

	t.Run("never writes the balance column", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		phone := "555-0199"
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{
			ID:      id,
			Balance: decimal.NewFromInt(40),
		}, nil)
		mockRepo.On("Update", mock.Anything, mock.Anything, mock.MatchedBy(func(fields []string) bool {
			for _, f := range fields {
				if f == "balance" {
					return false
				}
			}
			return len(fields) == 1 && fields[0] == "phone"
		})).Return(nil)

		svc := NewUserService(mockRepo, nil)
		_, err := svc.Update(context.Background(), id, UpdateUserInput{Phone: &phone})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty patch rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{ID: id}, nil)

		svc := NewUserService(mockRepo, nil)
		user, err := svc.Update(context.Background(), id, UpdateUserInput{})

		assert.ErrorIs(t, err, errors.ErrValidation)
		assert.Nil(t, user)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{ID: id}, nil)

		svc := NewUserService(mockRepo, nil)
		user, err := svc.Update(context.Background(), id, UpdateUserInput{Name: &emptyName})

		assert.ErrorIs(t, err, errors.ErrValidation)
		assert.Nil(t, user)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserService_AddBalance(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name          string
		amount        decimal.Decimal
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:   "explicit amount",
			amount: decimal.NewFromInt(50),
			setupMock: func(mRepo *MockUserRepository) {
				mRepo.On("AddToBalance", mock.Anything, id, mock.MatchedBy(func(d decimal.Decimal) bool {
					return d.Equal(decimal.NewFromInt(50))
				})).Return(nil)
				mRepo.On("FindByID", mock.Anything, id).Return(&model.User{
					ID:      id,
					Balance: decimal.NewFromInt(150),
				}, nil)
			},
			expectedError: nil,
		},
		{
			name:   "zero amount applies the default top-up",
			amount: decimal.Zero,
			setupMock: func(mRepo *MockUserRepository) {
				mRepo.On("AddToBalance", mock.Anything, id, mock.MatchedBy(func(d decimal.Decimal) bool {
					return d.Equal(DefaultTopUp)
				})).Return(nil)
				mRepo.On("FindByID", mock.Anything, id).Return(&model.User{
					ID:      id,
					Balance: decimal.NewFromInt(200),
				}, nil)
			},
			expectedError: nil,
		},
		{
			name:          "negative amount rejected",
			amount:        decimal.NewFromInt(-5),
			setupMock:     func(mRepo *MockUserRepository) {},
			expectedError: errors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewUserService(mockRepo, nil)
			user, err := svc.AddBalance(context.Background(), id, tt.amount)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				mockRepo.AssertNotCalled(t, "AddToBalance", mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Delete(t *testing.T) {
	id := uuid.New()

	t.Run("deleted", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Delete", mock.Anything, id).Return(nil)

		svc := NewUserService(mockRepo, nil)
		assert.NoError(t, svc.Delete(context.Background(), id))
		mockRepo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Delete", mock.Anything, id).Return(gorm.ErrRecordNotFound)

		svc := NewUserService(mockRepo, nil)
		assert.ErrorIs(t, svc.Delete(context.Background(), id), errors.ErrUserNotFound)
	})
}

func TestUserService_List_SanitizesUsers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("List", mock.Anything).Return([]model.User{
		{ID: uuid.New(), Name: "Alice Chen", Email: "alice@example.com", PasswordHash: "secret-hash"},
		{ID: uuid.New(), Name: "Bob Marsh", Email: "bob@example.com", PasswordHash: "secret-hash"},
	}, nil)

	svc := NewUserService(mockRepo, nil)
	users, err := svc.List(context.Background())

	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "Alice Chen", users[0].Name)
	mockRepo.AssertExpectations(t)
}
