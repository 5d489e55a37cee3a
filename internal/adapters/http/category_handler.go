package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/daygrid/core/internal/application/services"
	"github.com/daygrid/core/internal/domain/entities"
	"github.com/daygrid/core/internal/infrastructure/logger"
	"github.com/daygrid/core/internal/ports"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categoryService *services.CategoryService
	logger          *logger.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *services.CategoryService, logger *logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// CreateCategory handles category creation
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), userID, req)
	if err != nil {
		h.logger.Error("Create category failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, category)
}

// GetCategory handles getting a category by ID
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	userID := getUserIDFromContext(c)

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}

	category, err := h.categoryService.GetCategory(c.Request().Context(), userID, categoryID)
	if err != nil {
		return categoryError(err)
	}

	return c.JSON(http.StatusOK, category)
}

// UpdateCategory handles category updates
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	userID := getUserIDFromContext(c)

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}

	var req ports.UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), userID, categoryID, req)
	if err != nil {
		h.logger.Error("Update category failed", "error", err, "category_id", categoryID)
		return categoryError(err)
	}

	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles category deletion
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID := getUserIDFromContext(c)

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), userID, categoryID); err != nil {
		h.logger.Error("Delete category failed", "error", err, "category_id", categoryID)
		return categoryError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Category deleted successfully"})
}

// ListCategories handles listing the user's categories
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	userID := getUserIDFromContext(c)

	categories, err := h.categoryService.ListCategories(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("List categories failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve categories")
	}

	return c.JSON(http.StatusOK, categories)
}

func categoryError(err error) error {
	switch {
	case errors.Is(err, entities.ErrCategoryNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	case errors.Is(err, entities.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
