package http

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/daygrid/core/internal/application/services"
	"github.com/daygrid/core/internal/domain/entities"
	"github.com/daygrid/core/internal/infrastructure/logger"
	"github.com/daygrid/core/internal/ports"
)

// BoardHandler exposes the positioned note board of a todo. Every mutation
// goes through the board service, which owns persistence timing.
type BoardHandler struct {
	boardService *services.BoardService
	todoService  *services.TodoService
	logger       *logger.Logger
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(boardService *services.BoardService, todoService *services.TodoService, logger *logger.Logger) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		todoService:  todoService,
		logger:       logger,
	}
}

// AddNoteRequest adds a note to the board. Kind is "text" or "image"; image
// notes carry base64-encoded file bytes and an optional MIME type.
type AddNoteRequest struct {
	Kind     entities.NoteKind `json:"kind" validate:"required"`
	Data     string            `json:"data,omitempty"`
	MimeType string            `json:"mime_type,omitempty"`
}

// EditNoteRequest replaces a text note's content.
type EditNoteRequest struct {
	Content string `json:"content"`
}

// DragRequest carries the pointer position for a drag step.
type DragRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GetBoard loads the stored note document into a session and returns it
func (h *BoardHandler) GetBoard(c echo.Context) error {
	todoID, err := h.boardTodoID(c)
	if err != nil {
		return err
	}

	view, err := h.boardService.Load(c.Request().Context(), todoID)
	if err != nil {
		h.logger.Error("Load board failed", "error", err, "todo_id", todoID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load board")
	}

	return c.JSON(http.StatusOK, view)
}

// AddNote adds a text or image note to the board
func (h *BoardHandler) AddNote(c echo.Context) error {
	todoID, err := h.boardTodoID(c)
	if err != nil {
		return err
	}

	var req AddNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	var note *ports.NoteView
	switch req.Kind {
	case entities.NoteKindText:
		note, err = h.boardService.AddText(c.Request().Context(), todoID)
	case entities.NoteKindImage:
		data, decodeErr := base64.StdEncoding.DecodeString(req.Data)
		if decodeErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid image data")
		}
		note, err = h.boardService.AddImage(c.Request().Context(), todoID, data, req.MimeType)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown note kind")
	}
	if err != nil {
		h.logger.Error("Add note failed", "error", err, "todo_id", todoID, "kind", req.Kind)
		return boardError(err)
	}

	return c.JSON(http.StatusCreated, note)
}

// EditNote updates a note's content; the write is coalesced by the service
func (h *BoardHandler) EditNote(c echo.Context) error {
	todoID, err := h.boardTodoID(c)
	if err != nil {
		return err
	}

	var req EditNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.boardService.EditContent(c.Request().Context(), todoID, c.Param("noteId"), req.Content); err != nil {
		return boardError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Note updated"})
}

// RemoveNote deletes a note from the board
func (h *BoardHandler) RemoveNote(c echo.Context) error {
	todoID, err := h.boardTodoID(c)
	if err != nil {
		return err
	}

	if err := h.boardService.Remove(c.Request().Context(), todoID, c.Param("noteId")); err != nil {
		return boardError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Note removed"})
}

// BeginDrag starts dragging a note from the given pointer position
func (h *BoardHandler) BeginDrag(c echo.Context) error {
	todoID, err := h.boardTodoID(c)
	if err != nil {
		return err
	}

	var req DragRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.boardService.BeginDrag(todoID, c.Param("noteId"), ports.Point{X: req.X, Y: req.Y}); err != nil {
		return boardError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Drag started"})
}

// UpdateDrag moves the dragged note to follow the pointer
func (h *BoardHandler) UpdateDrag(c echo.Context) error {
	todoID, err := h.boardTodoID(c)
	if err != nil {
		return err
	}

	var req DragRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.boardService.UpdateDrag(todoID, ports.Point{X: req.X, Y: req.Y}); err != nil {
		return boardError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Drag updated"})
}

// EndDrag drops the note and persists the board
func (h *BoardHandler) EndDrag(c echo.Context) error {
	todoID, err := h.boardTodoID(c)
	if err != nil {
		return err
	}

	if err := h.boardService.EndDrag(c.Request().Context(), todoID); err != nil {
		return boardError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Drag ended"})
}

// CloseBoard flushes pending writes and drops the session
func (h *BoardHandler) CloseBoard(c echo.Context) error {
	todoID, err := h.boardTodoID(c)
	if err != nil {
		return err
	}

	h.boardService.Close(c.Request().Context(), todoID)

	return c.JSON(http.StatusOK, MessageResponse{Message: "Board closed"})
}

// boardTodoID parses the todo id and verifies the caller owns the todo
// before any board operation touches it.
func (h *BoardHandler) boardTodoID(c echo.Context) (uuid.UUID, error) {
	todoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid todo ID")
	}

	if _, err := h.todoService.GetTodo(c.Request().Context(), getUserIDFromContext(c), todoID); err != nil {
		return uuid.Nil, todoError(err)
	}

	return todoID, nil
}

func boardError(err error) error {
	switch {
	case errors.Is(err, entities.ErrNoteNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Note not found")
	case errors.Is(err, entities.ErrEmptyImage):
		return echo.NewHTTPError(http.StatusBadRequest, "Image data is empty")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
