package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"papyrus/internal/auth"
	"papyrus/internal/errors"
	"papyrus/internal/model"
)

const testClientURL = "http://localhost:3000"

func newAuthServiceForTest(userRepo *MockUserRepository, resetRepo *MockPasswordResetRepository, mailer *MockMailer) AuthService {
	return NewAuthService(userRepo, resetRepo, auth.NewJWTService("test-secret"), mailer, testClientURL)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockUserRepository, *MockMailer)
		expectedError error
	}{
		{
			name: "successful registration",
			input: RegisterInput{
				Name:     "Test User",
				Email:    "test@example.com",
				Password: "password123",
			},
			setupMock: func(mRepo *MockUserRepository, mMail *MockMailer) {
				mRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				mRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				mMail.On("SendVerification", mock.Anything, "test@example.com", mock.Anything).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "user already exists",
			input: RegisterInput{
				Name:     "Existing User",
				Email:    "existing@example.com",
				Password: "password123",
			},
			setupMock: func(mRepo *MockUserRepository, mMail *MockMailer) {
				mRepo.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: errors.ErrDuplicateUser,
		},
		{
			name: "missing required fields",
			input: RegisterInput{
				Email: "incomplete@example.com",
			},
			setupMock:     func(mRepo *MockUserRepository, mMail *MockMailer) {},
			expectedError: errors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockResetRepo := new(MockPasswordResetRepository)
			mockMailer := new(MockMailer)
			tt.setupMock(mockRepo, mockMailer)

			svc := newAuthServiceForTest(mockRepo, mockResetRepo, mockMailer)
			user, err := svc.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.input.Email, user.Email)
				assert.False(t, user.Verified)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.input.Password, user.PasswordHash)
				assert.True(t, user.Balance.Equal(model.InitialBalance))
				if assert.NotNil(t, user.VerificationToken) {
					assert.Len(t, *user.VerificationToken, 64)
				}
				if assert.NotNil(t, user.VerificationExpires) {
					assert.WithinDuration(t, time.Now().Add(30*time.Minute), *user.VerificationExpires, time.Minute)
				}
			}

			mockRepo.AssertExpectations(t)
			mockMailer.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_MailFailureDoesNotRollBack(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockResetRepo := new(MockPasswordResetRepository)
	mockMailer := new(MockMailer)

	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
	mockMailer.On("SendVerification", mock.Anything, "test@example.com", mock.Anything).Return(assert.AnError)

	svc := newAuthServiceForTest(mockRepo, mockResetRepo, mockMailer)
	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "password123",
	})

	assert.NoError(t, err)
	assert.NotNil(t, user)
	mockRepo.AssertExpectations(t)
	mockMailer.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository) {
				mRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           uuid.New(),
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
					Verified:     true,
				}, nil)
			},
			expectedError: nil,
		},
		{
			name:     "user not found",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository) {
				mRepo.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrong-password",
			setupMock: func(mRepo *MockUserRepository) {
				mRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           uuid.New(),
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
					Verified:     true,
				}, nil)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
		{
			name:     "unverified account fails even with correct password",
			email:    "unverified@example.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository) {
				mRepo.On("FindByEmail", mock.Anything, "unverified@example.com").Return(&model.User{
					ID:           uuid.New(),
					Email:        "unverified@example.com",
					PasswordHash: string(hashedPassword),
					Verified:     false,
				}, nil)
			},
			expectedError: errors.ErrEmailNotVerified,
		},
		{
			name:     "unverified account fails with wrong password too",
			email:    "unverified@example.com",
			password: "wrong-password",
			setupMock: func(mRepo *MockUserRepository) {
				mRepo.On("FindByEmail", mock.Anything, "unverified@example.com").Return(&model.User{
					ID:           uuid.New(),
					Email:        "unverified@example.com",
					PasswordHash: string(hashedPassword),
					Verified:     false,
				}, nil)
			},
			expectedError: errors.ErrEmailNotVerified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := newAuthServiceForTest(mockRepo, new(MockPasswordResetRepository), new(MockMailer))
			token, user, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_VerifyEmail(t *testing.T) {
	token := "sometoken"

	t.Run("successful verification clears the token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		expires := time.Now().Add(10 * time.Minute)
		user := &model.User{
			ID:                  uuid.New(),
			Email:               "test@example.com",
			VerificationToken:   &token,
			VerificationExpires: &expires,
		}
		mockRepo.On("FindByVerificationToken", mock.Anything, token, mock.Anything).Return(user, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Verified && u.VerificationToken == nil && u.VerificationExpires == nil
		}), []string{"verified", "verification_token", "verification_expires"}).Return(nil)

		svc := newAuthServiceForTest(mockRepo, new(MockPasswordResetRepository), new(MockMailer))
		err := svc.VerifyEmail(context.Background(), token)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown or expired token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByVerificationToken", mock.Anything, token, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

		svc := newAuthServiceForTest(mockRepo, new(MockPasswordResetRepository), new(MockMailer))
		err := svc.VerifyEmail(context.Background(), token)

		assert.ErrorIs(t, err, errors.ErrInvalidOrExpiredToken)
		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_ResendVerification(t *testing.T) {
	t.Run("reissues token for unverified user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockMailer := new(MockMailer)
		oldToken := "oldtoken"
		oldExpires := time.Now().Add(-time.Minute)
		user := &model.User{
			ID:                  uuid.New(),
			Email:               "test@example.com",
			Verified:            false,
			VerificationToken:   &oldToken,
			VerificationExpires: &oldExpires,
		}
		mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.VerificationToken != nil && *u.VerificationToken != oldToken &&
				u.VerificationExpires != nil && u.VerificationExpires.After(time.Now())
		}), []string{"verification_token", "verification_expires"}).Return(nil)
		mockMailer.On("SendVerification", mock.Anything, "test@example.com", mock.Anything).Return(nil)

		svc := newAuthServiceForTest(mockRepo, new(MockPasswordResetRepository), mockMailer)
		err := svc.ResendVerification(context.Background(), "test@example.com")

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockMailer.AssertExpectations(t)
	})

	t.Run("already verified", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
			Email:    "test@example.com",
			Verified: true,
		}, nil)

		svc := newAuthServiceForTest(mockRepo, new(MockPasswordResetRepository), new(MockMailer))
		err := svc.ResendVerification(context.Background(), "test@example.com")

		assert.ErrorIs(t, err, errors.ErrAlreadyVerified)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

		svc := newAuthServiceForTest(mockRepo, new(MockPasswordResetRepository), new(MockMailer))
		err := svc.ResendVerification(context.Background(), "nobody@example.com")

		assert.ErrorIs(t, err, errors.ErrUserNotFound)
	})
}

func TestAuthService_RequestPasswordReset(t *testing.T) {
	t.Run("known email issues a token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockResetRepo := new(MockPasswordResetRepository)
		mockMailer := new(MockMailer)
		userID := uuid.New()
		mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
			ID:    userID,
			Email: "test@example.com",
		}, nil)
		mockResetRepo.On("DeleteByUser", mock.Anything, userID).Return(nil)
		mockResetRepo.On("Create", mock.Anything, mock.MatchedBy(func(row *model.PasswordResetToken) bool {
			return row.UserID == userID && len(row.Token) == 64
		})).Return(nil)
		mockMailer.On("SendPasswordReset", mock.Anything, "test@example.com", mock.Anything).Return(nil)

		svc := newAuthServiceForTest(mockRepo, mockResetRepo, mockMailer)
		err := svc.RequestPasswordReset(context.Background(), "test@example.com")

		assert.NoError(t, err)
		mockResetRepo.AssertExpectations(t)
		mockMailer.AssertExpectations(t)
	})

	t.Run("unknown email reports success without issuing a token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockResetRepo := new(MockPasswordResetRepository)
		mockMailer := new(MockMailer)
		mockRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

		svc := newAuthServiceForTest(mockRepo, mockResetRepo, mockMailer)
		err := svc.RequestPasswordReset(context.Background(), "nobody@example.com")

		assert.NoError(t, err)
		mockResetRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		mockMailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_SubmitPasswordReset(t *testing.T) {
	t.Run("valid token resets password and is consumed", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockResetRepo := new(MockPasswordResetRepository)
		userID := uuid.New()
		rowID := uuid.New()
		oldHash := "old-hash"
		row := &model.PasswordResetToken{
			ID:        rowID,
			UserID:    userID,
			Token:     "resettoken",
			CreatedAt: time.Now().Add(-5 * time.Minute),
		}
		mockResetRepo.On("FindValid", mock.Anything, "resettoken", mock.Anything).Return(row, nil)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{
			ID:           userID,
			Email:        "test@example.com",
			PasswordHash: oldHash,
		}, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.PasswordHash != oldHash &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("newpassword")) == nil
		}), []string{"password_hash"}).Return(nil)
		mockResetRepo.On("Delete", mock.Anything, rowID).Return(nil)

		svc := newAuthServiceForTest(mockRepo, mockResetRepo, new(MockMailer))
		err := svc.SubmitPasswordReset(context.Background(), "resettoken", "newpassword")

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockResetRepo.AssertExpectations(t)
	})

	t.Run("expired or unknown token", func(t *testing.T) {
		mockResetRepo := new(MockPasswordResetRepository)
		mockResetRepo.On("FindValid", mock.Anything, "stale", mock.Anything).Return(nil, gorm.ErrRecordNotFound)

		svc := newAuthServiceForTest(new(MockUserRepository), mockResetRepo, new(MockMailer))
		err := svc.SubmitPasswordReset(context.Background(), "stale", "newpassword")

		assert.ErrorIs(t, err, errors.ErrInvalidOrExpiredToken)
	})

	t.Run("cutoff is thirty minutes before now", func(t *testing.T) {
		mockResetRepo := new(MockPasswordResetRepository)
		mockResetRepo.On("FindValid", mock.Anything, "any", mock.MatchedBy(func(cutoff time.Time) bool {
			expected := time.Now().Add(-30 * time.Minute)
			diff := cutoff.Sub(expected)
			return diff > -time.Minute && diff < time.Minute
		})).Return(nil, gorm.ErrRecordNotFound)

		svc := newAuthServiceForTest(new(MockUserRepository), mockResetRepo, new(MockMailer))
		err := svc.SubmitPasswordReset(context.Background(), "any", "newpassword")

		assert.ErrorIs(t, err, errors.ErrInvalidOrExpiredToken)
		mockResetRepo.AssertExpectations(t)
	})
}
