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

// LinkHandler handles requests for links attached to todos
type LinkHandler struct {
	linkService *services.LinkService
	logger      *logger.Logger
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(linkService *services.LinkService, logger *logger.Logger) *LinkHandler {
	return &LinkHandler{
		linkService: linkService,
		logger:      logger,
	}
}

// AddLink handles attaching a link to a todo
func (h *LinkHandler) AddLink(c echo.Context) error {
	userID := getUserIDFromContext(c)

	todoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid todo ID")
	}

	var req ports.AddLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	link, err := h.linkService.AddLink(c.Request().Context(), userID, todoID, req)
	if err != nil {
		h.logger.Error("Add link failed", "error", err, "todo_id", todoID)
		return linkError(err)
	}

	return c.JSON(http.StatusCreated, link)
}

// DeleteLink handles removing a link
func (h *LinkHandler) DeleteLink(c echo.Context) error {
	userID := getUserIDFromContext(c)

	linkID, err := uuid.Parse(c.Param("linkId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid link ID")
	}

	if err := h.linkService.DeleteLink(c.Request().Context(), userID, linkID); err != nil {
		h.logger.Error("Delete link failed", "error", err, "link_id", linkID)
		return linkError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Link deleted successfully"})
}

// ListLinks handles listing a todo's links
func (h *LinkHandler) ListLinks(c echo.Context) error {
	userID := getUserIDFromContext(c)

	todoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid todo ID")
	}

	links, err := h.linkService.ListLinks(c.Request().Context(), userID, todoID)
	if err != nil {
		h.logger.Error("List links failed", "error", err, "todo_id", todoID)
		return linkError(err)
	}

	return c.JSON(http.StatusOK, links)
}

func linkError(err error) error {
	switch {
	case errors.Is(err, entities.ErrLinkNotFound), errors.Is(err, entities.ErrTodoNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.Is(err, entities.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
