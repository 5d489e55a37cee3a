package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/daygrid/core/internal/application/services"
	"github.com/daygrid/core/internal/domain/entities"
	"github.com/daygrid/core/internal/infrastructure/logger"
	"github.com/daygrid/core/internal/ports"
)

// CalendarHandler serves the bucketed month and week views
type CalendarHandler struct {
	calendarService *services.CalendarService
	logger          *logger.Logger
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendarService *services.CalendarService, logger *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
		logger:          logger,
	}
}

// GetCalendar returns the visible window around the anchor date with the
// user's scheduled todos bucketed by day. Defaults: today, month mode.
func (h *CalendarHandler) GetCalendar(c echo.Context) error {
	userID := getUserIDFromContext(c)

	anchor, mode, err := calendarParams(c)
	if err != nil {
		return err
	}

	view, err := h.calendarService.Refresh(c.Request().Context(), userID, anchor, mode)
	if err != nil {
		h.logger.Error("Calendar refresh failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load calendar")
	}

	return c.JSON(http.StatusOK, view)
}

// Navigate returns the anchor shifted by one unit of the current mode.
// Direction is "next" or "prev"; the client follows up with GetCalendar.
func (h *CalendarHandler) Navigate(c echo.Context) error {
	anchor, mode, err := calendarParams(c)
	if err != nil {
		return err
	}

	direction := 1
	switch c.QueryParam("direction") {
	case "", "next":
	case "prev":
		direction = -1
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid direction parameter")
	}

	next := h.calendarService.Navigate(direction, mode, anchor)

	return c.JSON(http.StatusOK, map[string]string{
		"anchor": next.Format(entities.ScheduledDateLayout),
		"mode":   string(mode),
	})
}

func calendarParams(c echo.Context) (time.Time, ports.CalendarMode, error) {
	anchor := time.Now().UTC()
	if anchorStr := c.QueryParam("anchor"); anchorStr != "" {
		parsed, err := time.Parse(entities.ScheduledDateLayout, anchorStr)
		if err != nil {
			return time.Time{}, "", echo.NewHTTPError(http.StatusBadRequest, "Invalid anchor date, expected YYYY-MM-DD")
		}
		anchor = parsed
	}

	mode := ports.CalendarModeMonth
	if modeStr := c.QueryParam("mode"); modeStr != "" {
		mode = ports.CalendarMode(modeStr)
		if !mode.IsValid() {
			return time.Time{}, "", echo.NewHTTPError(http.StatusBadRequest, "Invalid mode parameter")
		}
	}

	return anchor, mode, nil
}
