package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	apperrors "papyrus/internal/errors"
)

type testValidator struct {
	validator *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.validator.Struct(i)
}

func newTestContext(body string) echo.Context {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func assertValidationEnvelope(t *testing.T, err error) apperrors.ErrorResponse {
	t.Helper()

	var httpErr *echo.HTTPError
	if !assert.ErrorAs(t, err, &httpErr) {
		t.FailNow()
	}
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)

	resp, ok := httpErr.Message.(apperrors.ErrorResponse)
	if !assert.True(t, ok, "message should be the standard error envelope") {
		t.FailNow()
	}
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.NotEmpty(t, resp.Error)
	return resp
}

func TestAuthHandler_Register_ValidationFailureEnvelope(t *testing.T) {
	c := newTestContext(`{"email":"not-an-email","password":"short"}`)
	h := NewAuthHandler(nil, "http://localhost:3000")

	err := h.Register(c)

	resp := assertValidationEnvelope(t, err)
	// Validator internals like "Key: 'RegisterRequest.Email' Error:..."
	// must never reach the client.
	assert.NotContains(t, resp.Error, "Key:")
	assert.NotContains(t, resp.Error, "RegisterRequest")
}

func TestAuthHandler_Register_MalformedBodyEnvelope(t *testing.T) {
	c := newTestContext(`{not json`)
	h := NewAuthHandler(nil, "http://localhost:3000")

	err := h.Register(c)

	resp := assertValidationEnvelope(t, err)
	assert.Equal(t, "invalid request body", resp.Error)
}

func TestAuthHandler_Login_ValidationFailureEnvelope(t *testing.T) {
	c := newTestContext(`{"email":"someone@example.com"}`)
	h := NewAuthHandler(nil, "http://localhost:3000")

	err := h.Login(c)

	resp := assertValidationEnvelope(t, err)
	assert.NotContains(t, resp.Error, "LoginRequest")
}
