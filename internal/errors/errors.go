package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("invalid input")
	// ErrDuplicateUser is returned when registering an email that already exists.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInvalidCredentials is returned on login failure. Deliberately
	// generic: it never reveals whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailNotVerified is returned when logging into an unverified account.
	ErrEmailNotVerified = errors.New("please verify your email before logging in")
	// ErrInvalidOrExpiredToken is returned for bad verification or reset tokens.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	// ErrNotFoundOrUnauthorized conflates "listing not found" and "not your
	// listing" so callers cannot probe for existence of others' listings.
	ErrNotFoundOrUnauthorized = errors.New("listing not found")
	// ErrListingNotFound is returned when a purchase targets an absent listing.
	ErrListingNotFound = errors.New("listing not found")
	// ErrInsufficientFunds is returned when the buyer's balance cannot cover the price.
	ErrInsufficientFunds = errors.New("insufficient balance")
	// ErrSelfPurchase is returned when a seller tries to buy their own listing.
	ErrSelfPurchase = errors.New("cannot purchase your own listing")
	// ErrAlreadySold is returned when a listing has already been purchased.
	ErrAlreadySold = errors.New("listing already sold")
	// ErrUserNotFound is returned when a user record is absent.
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyVerified is returned when resending verification for a verified account.
	ErrAlreadyVerified = errors.New("email already verified")
	// ErrUnauthorized is returned for missing or invalid session tokens.
	ErrUnauthorized = errors.New("unauthorized")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	// NeedsVerification lets the client offer a resend action when a login
	// fails only because the email is unverified.
	NeedsVerification bool `json:"needs_verification,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become
// a generic 500 so store-level detail never reaches the client.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrDuplicateUser):
		return NewHTTPError(http.StatusConflict, err.Error(), "DUPLICATE_USER")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrEmailNotVerified):
		return NewHTTPError(http.StatusForbidden, err.Error(), "EMAIL_NOT_VERIFIED")
	case errors.Is(err, ErrInvalidOrExpiredToken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_OR_EXPIRED_TOKEN")
	case errors.Is(err, ErrNotFoundOrUnauthorized):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrListingNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "LISTING_NOT_FOUND")
	case errors.Is(err, ErrInsufficientFunds):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INSUFFICIENT_FUNDS")
	case errors.Is(err, ErrSelfPurchase):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "SELF_PURCHASE")
	case errors.Is(err, ErrAlreadySold):
		return NewHTTPError(http.StatusConflict, err.Error(), "ALREADY_SOLD")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrAlreadyVerified):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ALREADY_VERIFIED")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHORIZED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
