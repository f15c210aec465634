package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kudiapp/kudi-backend/internal/domain"
	"github.com/kudiapp/kudi-backend/internal/middleware"
	"github.com/kudiapp/kudi-backend/internal/service"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	ParentID *string `json:"parentId,omitempty"`
	Icon     string  `json:"icon,omitempty"`
	Color    string  `json:"color,omitempty"`
}

// UpdateCategoryRequest represents the update category request body.
// Setting parentId to an empty string promotes the category to top level.
type UpdateCategoryRequest struct {
	Name     *string `json:"name,omitempty"`
	ParentID *string `json:"parentId,omitempty"`
	Icon     *string `json:"icon,omitempty"`
	Color    *string `json:"color,omitempty"`
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	parentID, err := parseOptionalUUID(req.ParentID)
	if err != nil {
		return NewValidationError(c, "Invalid parentId", []ValidationError{
			{Field: "parentId", Message: "Must be a valid UUID"},
		})
	}

	input := service.CreateCategoryInput{
		Name:     req.Name,
		Type:     domain.CategoryType(req.Type),
		ParentID: parentID,
		Icon:     req.Icon,
		Color:    req.Color,
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), userID, input)
	if err != nil {
		return RespondDomainError(c, err, "Failed to create category")
	}

	return c.JSON(http.StatusCreated, category)
}

// GetCategories handles GET /api/v1/categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	userID := middleware.GetUserID(c)
	includeInactive := c.QueryParam("includeInactive") == "true"

	categories, err := h.categoryService.GetCategories(c.Request().Context(), userID, includeInactive)
	if err != nil {
		return RespondDomainError(c, err, "Failed to list categories")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"data": categories})
}

// GetCategory handles GET /api/v1/categories/:id
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	category, err := h.categoryService.GetCategory(c.Request().Context(), userID, id)
	if err != nil {
		return RespondDomainError(c, err, "Failed to get category")
	}

	return c.JSON(http.StatusOK, category)
}

// UpdateCategory handles PUT /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	var req UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateCategoryInput{
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
	}
	if req.ParentID != nil {
		if *req.ParentID == "" {
			input.ClearParent = true
		} else {
			parentID, err := parseOptionalUUID(req.ParentID)
			if err != nil {
				return NewValidationError(c, "Invalid parentId", []ValidationError{
					{Field: "parentId", Message: "Must be a valid UUID"},
				})
			}
			input.ParentID = parentID
		}
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), userID, id, input)
	if err != nil {
		return RespondDomainError(c, err, "Failed to update category")
	}

	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), userID, id); err != nil {
		return RespondDomainError(c, err, "Failed to delete category")
	}

	return c.NoContent(http.StatusNoContent)
}
