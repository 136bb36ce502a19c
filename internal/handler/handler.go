package handler

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"papyrus/internal/errors"
)

// respondError translates a domain error into the standard error envelope
// with its taxonomy status code.
func respondError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// badRequest returns a 400 in the standard error envelope.
func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  "VALIDATION_ERROR",
	})
}

// validationError names the offending fields without echoing validator
// internals to the client.
func validationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if stderrors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		names := make([]string, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			names = append(names, fe.Field())
		}
		return badRequest("invalid fields: " + strings.Join(names, ", "))
	}
	return badRequest("invalid input")
}

// errorIs wraps stdlib errors.Is; the name avoids clashing with the
// internal errors package imported throughout this package.
func errorIs(err, target error) bool {
	return stderrors.Is(err, target)
}
