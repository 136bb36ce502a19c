package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"papyrus/internal/auth"
	"papyrus/internal/errors"
	"papyrus/internal/model"
	"papyrus/internal/service"
)

// TextbookHandler handles listing endpoints.
type TextbookHandler struct {
	textbookService service.TextbookService
	purchaseService service.PurchaseService
}

// NewTextbookHandler creates a new textbook handler.
func NewTextbookHandler(textbookService service.TextbookService, purchaseService service.PurchaseService) *TextbookHandler {
	return &TextbookHandler{
		textbookService: textbookService,
		purchaseService: purchaseService,
	}
}

// AddTextbookRequest represents a new listing.
type AddTextbookRequest struct {
	Title       string          `json:"title" validate:"required"`
	Author      string          `json:"author"`
	ISBN        string          `json:"isbn"`
	Price       decimal.Decimal `json:"price"`
	Condition   string          `json:"condition"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
}

// UpdateTextbookRequest is a partial patch of an owned listing.
type UpdateTextbookRequest struct {
	ID          string           `json:"id" validate:"required,uuid"`
	Title       *string          `json:"title"`
	Author      *string          `json:"author"`
	ISBN        *string          `json:"isbn"`
	Price       *decimal.Decimal `json:"price"`
	Condition   *string          `json:"condition"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Images      []string         `json:"images"`
}

// TextbookIDRequest addresses a single listing.
type TextbookIDRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

// SearchRequest carries the title substring to match.
type SearchRequest struct {
	Search string `json:"search"`
}

// ByUserRequest addresses a seller's listings.
type ByUserRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// Add godoc
// @Summary Create a listing
// @Tags textbooks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddTextbookRequest true "Listing data"
// @Success 201 {object} model.Textbook
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /textbooks/add [post]
func (h *TextbookHandler) Add(c echo.Context) error {
	var req AddTextbookRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	seller := auth.CurrentUser(c)
	textbook, err := h.textbookService.Create(c.Request().Context(), seller.ID, service.CreateListingInput{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Price:       req.Price,
		Condition:   model.Condition(req.Condition),
		Category:    req.Category,
		Description: req.Description,
		Images:      req.Images,
	})
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusCreated, textbook)
}

// Update godoc
// @Summary Update an owned, unsold listing
// @Tags textbooks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateTextbookRequest true "Patch data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /textbooks/update [post]
func (h *TextbookHandler) Update(c echo.Context) error {
	var req UpdateTextbookRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	listingID, err := uuid.Parse(req.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid id",
			Code:  "INVALID_UUID",
		})
	}

	seller := auth.CurrentUser(c)
	input := service.UpdateListingInput{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Price:       req.Price,
		Description: req.Description,
		Images:      req.Images,
	}
	if req.Condition != nil {
		condition := model.Condition(*req.Condition)
		input.Condition = &condition
	}
	if req.Category != nil {
		input.Category = req.Category
	}

	textbook, err := h.textbookService.Update(c.Request().Context(), listingID, seller.ID, input)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Textbook updated",
		"textbook": textbook,
	})
}

// Delete godoc
// @Summary Delete an owned, unsold listing
// @Tags textbooks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TextbookIDRequest true "Listing id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /textbooks/delete [post]
func (h *TextbookHandler) Delete(c echo.Context) error {
	var req TextbookIDRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	listingID, err := uuid.Parse(req.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid id",
			Code:  "INVALID_UUID",
		})
	}

	seller := auth.CurrentUser(c)
	if err := h.textbookService.Delete(c.Request().Context(), listingID, seller.ID); err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Textbook deleted",
	})
}

// Purchase godoc
// @Summary Purchase a listing
// @Tags textbooks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TextbookIDRequest true "Listing id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /textbooks/purchase [post]
func (h *TextbookHandler) Purchase(c echo.Context) error {
	var req TextbookIDRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	listingID, err := uuid.Parse(req.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid id",
			Code:  "INVALID_UUID",
		})
	}

	buyer := auth.CurrentUser(c)
	textbook, err := h.purchaseService.Purchase(c.Request().Context(), listingID, buyer.ID)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Purchase successful",
		"textbook": textbook,
	})
}

// Search godoc
// @Summary Search active listings by title
// @Tags textbooks
// @Accept json
// @Produce json
// @Param request body SearchRequest true "Title substring"
// @Success 200 {object} map[string]interface{}
// @Router /textbooks/search [post]
func (h *TextbookHandler) Search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	results, err := h.textbookService.Search(c.Request().Context(), req.Search, true)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"results": results,
	})
}

// All godoc
// @Summary List all active listings
// @Tags textbooks
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /textbooks/all [post]
func (h *TextbookHandler) All(c echo.Context) error {
	textbooks, err := h.textbookService.ListAll(c.Request().Context(), true)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"textbooks": textbooks,
	})
}

// ByUser godoc
// @Summary List a seller's listings, sold and unsold
// @Tags textbooks
// @Accept json
// @Produce json
// @Param request body ByUserRequest true "Seller id"
// @Success 200 {object} map[string]interface{}
// @Router /textbooks/by-user [post]
func (h *TextbookHandler) ByUser(c echo.Context) error {
	var req ByUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	sellerID, err := uuid.Parse(req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid userId",
			Code:  "INVALID_UUID",
		})
	}

	textbooks, err := h.textbookService.ListBySeller(c.Request().Context(), sellerID)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"textbooks": textbooks,
	})
}
