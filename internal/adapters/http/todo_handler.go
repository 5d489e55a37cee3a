package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/daygrid/core/internal/application/services"
	"github.com/daygrid/core/internal/domain/entities"
	"github.com/daygrid/core/internal/infrastructure/logger"
	"github.com/daygrid/core/internal/ports"
)

// TodoHandler handles todo-related requests
type TodoHandler struct {
	todoService *services.TodoService
	logger      *logger.Logger
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(todoService *services.TodoService, logger *logger.Logger) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
		logger:      logger,
	}
}

// CreateTodo handles todo creation
func (h *TodoHandler) CreateTodo(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.CreateTodoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	todo, err := h.todoService.CreateTodo(c.Request().Context(), userID, req)
	if err != nil {
		h.logger.Error("Create todo failed", "error", err, "user_id", userID)
		return todoError(err)
	}

	return c.JSON(http.StatusCreated, todo)
}

// GetTodo handles getting a todo by ID
func (h *TodoHandler) GetTodo(c echo.Context) error {
	userID := getUserIDFromContext(c)

	todoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid todo ID")
	}

	todo, err := h.todoService.GetTodo(c.Request().Context(), userID, todoID)
	if err != nil {
		return todoError(err)
	}

	return c.JSON(http.StatusOK, todo)
}

// UpdateTodo handles todo updates, including status transitions
func (h *TodoHandler) UpdateTodo(c echo.Context) error {
	userID := getUserIDFromContext(c)

	todoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid todo ID")
	}

	var req ports.UpdateTodoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	todo, err := h.todoService.UpdateTodo(c.Request().Context(), userID, todoID, req)
	if err != nil {
		h.logger.Error("Update todo failed", "error", err, "todo_id", todoID)
		return todoError(err)
	}

	return c.JSON(http.StatusOK, todo)
}

// DeleteTodo handles todo deletion
func (h *TodoHandler) DeleteTodo(c echo.Context) error {
	userID := getUserIDFromContext(c)

	todoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid todo ID")
	}

	if err := h.todoService.DeleteTodo(c.Request().Context(), userID, todoID); err != nil {
		h.logger.Error("Delete todo failed", "error", err, "todo_id", todoID)
		return todoError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Todo deleted successfully"})
}

// ListTodos handles listing todos with optional filters
func (h *TodoHandler) ListTodos(c echo.Context) error {
	filter := ports.TodoFilter{UserID: getUserIDFromContext(c)}

	if categoryStr := c.QueryParam("category_id"); categoryStr != "" {
		categoryID, err := uuid.Parse(categoryStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid category_id parameter")
		}
		filter.CategoryID = &categoryID
	}

	if status := c.QueryParam("status"); status != "" {
		todoStatus := entities.TodoStatus(status)
		if !todoStatus.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid status parameter")
		}
		filter.Status = &todoStatus
	}

	if priority := c.QueryParam("priority"); priority != "" {
		todoPriority := entities.Priority(priority)
		if !todoPriority.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid priority parameter")
		}
		filter.Priority = &todoPriority
	}

	if search := c.QueryParam("search"); search != "" {
		filter.Search = &search
	}

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		filter.Limit = limit
	} else {
		filter.Limit = 20
	}

	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid offset parameter")
		}
		filter.Offset = offset
	}

	todos, err := h.todoService.ListTodos(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("List todos failed", "error", err, "user_id", filter.UserID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve todos")
	}

	return c.JSON(http.StatusOK, todos)
}

func todoError(err error) error {
	switch {
	case errors.Is(err, entities.ErrTodoNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Todo not found")
	case errors.Is(err, entities.ErrCategoryNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	case errors.Is(err, entities.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
