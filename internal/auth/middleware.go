package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"papyrus/internal/errors"
	"papyrus/internal/model"
	"papyrus/internal/repository"
)

// currentUserKey is the echo context key the resolved user is stored under.
const currentUserKey = "currentUser"

// CurrentUserMiddleware authenticates the bearer token and resolves its
// subject to a live user record, attaching it to the request context.
// Missing, malformed, or expired tokens yield a generic 401, as do
// tokens signed for a user that no longer exists.
func CurrentUserMiddleware(jwtService *JWTService, userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				return unauthorized()
			}

			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				return unauthorized()
			}
			userID, err := claims.SubjectID()
			if err != nil {
				return unauthorized()
			}

			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if err != nil {
				return unauthorized()
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

func unauthorized() error {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: errors.ErrUnauthorized.Error(),
		Code:  "UNAUTHORIZED",
	})
}

// CurrentUser returns the authenticated user attached by
// CurrentUserMiddleware, or nil outside a secured route.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(currentUserKey).(*model.User)
	return user
}
