package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"papyrus/internal/auth"
	"papyrus/internal/service"
)

// UserHandler handles account endpoints for the authenticated user.
type UserHandler struct {
	userService service.UserService
	authService service.AuthService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService, authService service.AuthService) *UserHandler {
	return &UserHandler{userService: userService, authService: authService}
}

// UpdateUserRequest is a partial patch of the caller's own profile.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Password *string `json:"password"`
}

// AddBalanceRequest tops up the caller's balance. A missing amount
// applies the default top-up.
type AddBalanceRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Add godoc
// @Summary Create a new user (signup alias)
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/add [post]
func (h *UserHandler) Add(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "User created. Please check your email to verify your account.",
		"user":    user.Sanitized(),
	})
}

// Me godoc
// @Summary Get the authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [post]
func (h *UserHandler) Me(c echo.Context) error {
	user := auth.CurrentUser(c)
	fresh, err := h.userService.Get(c.Request().Context(), user.ID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user": fresh,
	})
}

// Update godoc
// @Summary Update the authenticated user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateUserRequest true "Patch data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/update [post]
func (h *UserHandler) Update(c echo.Context) error {
	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	user := auth.CurrentUser(c)
	updated, err := h.userService.Update(c.Request().Context(), user.ID, service.UpdateUserInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		Password: req.Password,
	})
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "User updated",
		"user":    updated,
	})
}

// AddBalance godoc
// @Summary Top up the authenticated user's balance
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddBalanceRequest true "Top-up amount"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/addBalance [post]
func (h *UserHandler) AddBalance(c echo.Context) error {
	var req AddBalanceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	user := auth.CurrentUser(c)
	updated, err := h.userService.AddBalance(c.Request().Context(), user.ID, req.Amount)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Balance was updated successfully",
		"user":    updated,
	})
}

// Delete godoc
// @Summary Delete the authenticated user's account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/delete [post]
func (h *UserHandler) Delete(c echo.Context) error {
	user := auth.CurrentUser(c)
	if err := h.userService.Delete(c.Request().Context(), user.ID); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "User deleted successfully",
	})
}

// List godoc
// @Summary List all users (public projection)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /users/all [post]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"users": users,
	})
}
