package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"papyrus/internal/auth"
	"papyrus/internal/errors"
	"papyrus/internal/mail"
	"papyrus/internal/model"
	"papyrus/internal/repository"
)

const bcryptCost = 10

// verificationTokenTTL is how long an email verification link stays valid.
const verificationTokenTTL = 30 * time.Minute

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

// AuthService handles registration, verification and session issuance.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	RequestPasswordReset(ctx context.Context, email string) error
	SubmitPasswordReset(ctx context.Context, token, newPassword string) error
}

type authService struct {
	userRepo   repository.UserRepository
	resetRepo  repository.PasswordResetRepository
	jwtService *auth.JWTService
	mailer     mail.Mailer
	clientURL  string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	jwtService *auth.JWTService,
	mailer mail.Mailer,
	clientURL string,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		resetRepo:  resetRepo,
		jwtService: jwtService,
		mailer:     mailer,
		clientURL:  clientURL,
	}
}

// Register creates an unverified user with a hashed password, an initial
// balance and a pending verification token, then dispatches the
// verification mail. The user row is committed before the send is
// attempted; a delivery failure is logged and recovered through the
// resend-verification flow, never by rolling back the registration.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", errors.ErrValidation)
	}

	existing, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, errors.ErrDuplicateUser
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	token, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, err
	}
	expires := time.Now().Add(verificationTokenTTL)

	user := &model.User{
		Name:                input.Name,
		Email:               input.Email,
		PasswordHash:        string(hashedPassword),
		Phone:               input.Phone,
		Address:             input.Address,
		Balance:             model.InitialBalance,
		Verified:            false,
		VerificationToken:   &token,
		VerificationExpires: &expires,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.mailer.SendVerification(ctx, user.Email, s.verifyURL(token)); err != nil {
		log.Printf("verification mail to %s failed, resend available: %v", user.Email, err)
	}

	return user, nil
}

// VerifyEmail consumes a verification token: the token must match a
// pending user and be unexpired, and is cleared on success so a second
// use fails.
func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.userRepo.FindByVerificationToken(ctx, token, time.Now())
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("find verification token: %w", err)
	}

	user.Verified = true
	user.VerificationToken = nil
	user.VerificationExpires = nil
	if err := s.userRepo.Update(ctx, user, "verified", "verification_token", "verification_expires"); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// ResendVerification reissues the verification token, invalidating the
// previous one, and resends the mail.
func (s *authService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if user.Verified {
		return errors.ErrAlreadyVerified
	}

	token, err := auth.NewOpaqueToken()
	if err != nil {
		return err
	}
	expires := time.Now().Add(verificationTokenTTL)
	user.VerificationToken = &token
	user.VerificationExpires = &expires
	if err := s.userRepo.Update(ctx, user, "verification_token", "verification_expires"); err != nil {
		return fmt.Errorf("update verification token: %w", err)
	}

	if err := s.mailer.SendVerification(ctx, user.Email, s.verifyURL(token)); err != nil {
		log.Printf("verification mail to %s failed: %v", user.Email, err)
	}
	return nil
}

// Login authenticates a user and issues a 7-day session token. The
// verification check deliberately precedes the password check, matching
// the client contract that unverified accounts always get the
// needs-verification response.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", errors.ErrValidation)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, errors.ErrInvalidCredentials
	}

	if !user.Verified {
		return "", nil, errors.ErrEmailNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, errors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateSessionToken(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("generate session token: %w", err)
	}

	return token, user, nil
}

// RequestPasswordReset issues a 30-minute single-use reset token and
// mails the reset link. The response is uniform whether or not the email
// is registered, so the endpoint cannot be used to enumerate accounts.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Printf("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	// A new request supersedes any outstanding token.
	if err := s.resetRepo.DeleteByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("invalidate previous reset tokens: %w", err)
	}

	token, err := auth.NewOpaqueToken()
	if err != nil {
		return err
	}
	row := &model.PasswordResetToken{
		UserID: user.ID,
		Token:  token,
	}
	if err := s.resetRepo.Create(ctx, row); err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.clientURL, token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		log.Printf("reset mail to %s failed: %v", user.Email, err)
	}
	return nil
}

// SubmitPasswordReset consumes a reset token and stores the re-hashed
// password. Existing session tokens stay valid; there is no server-side
// revocation for the stateless 7-day sessions.
func (s *authService) SubmitPasswordReset(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", errors.ErrValidation)
	}

	cutoff := time.Now().Add(-model.PasswordResetTokenTTL)
	row, err := s.resetRepo.FindValid(ctx, token, cutoff)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("find reset token: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, row.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("find user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user, "password_hash"); err != nil {
		return fmt.Errorf("store new password: %w", err)
	}

	// Single use.
	if err := s.resetRepo.Delete(ctx, row.ID); err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	return nil
}

func (s *authService) verifyURL(token string) string {
	return fmt.Sprintf("%s/verify/%s", s.clientURL, token)
}
