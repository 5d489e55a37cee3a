package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/daygrid/core/internal/domain/entities"
)

// AuthService interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	ValidateToken(tokenString string) (*Claims, error)
}

// CategoryService interface for category management
type CategoryService interface {
	CreateCategory(ctx context.Context, userID uuid.UUID, req CreateCategoryRequest) (*entities.Category, error)
	GetCategory(ctx context.Context, userID, id uuid.UUID) (*entities.Category, error)
	UpdateCategory(ctx context.Context, userID, id uuid.UUID, req UpdateCategoryRequest) (*entities.Category, error)
	DeleteCategory(ctx context.Context, userID, id uuid.UUID) error
	ListCategories(ctx context.Context, userID uuid.UUID) ([]*entities.Category, error)
}

// TodoService interface for todo management
type TodoService interface {
	CreateTodo(ctx context.Context, userID uuid.UUID, req CreateTodoRequest) (*entities.Todo, error)
	GetTodo(ctx context.Context, userID, id uuid.UUID) (*entities.Todo, error)
	UpdateTodo(ctx context.Context, userID, id uuid.UUID, req UpdateTodoRequest) (*entities.Todo, error)
	DeleteTodo(ctx context.Context, userID, id uuid.UUID) error
	ListTodos(ctx context.Context, filter TodoFilter) ([]*entities.Todo, error)
}

// LinkService interface for todo link management
type LinkService interface {
	AddLink(ctx context.Context, userID, todoID uuid.UUID, req AddLinkRequest) (*entities.TodoLink, error)
	DeleteLink(ctx context.Context, userID, linkID uuid.UUID) error
	ListLinks(ctx context.Context, userID, todoID uuid.UUID) ([]*entities.TodoLink, error)
}

// BoardService manages the positioned note board of a todo
type BoardService interface {
	Load(ctx context.Context, todoID uuid.UUID) (*BoardView, error)
	AddText(ctx context.Context, todoID uuid.UUID) (*NoteView, error)
	AddImage(ctx context.Context, todoID uuid.UUID, data []byte, mimeType string) (*NoteView, error)
	EditContent(ctx context.Context, todoID uuid.UUID, noteID, content string) error
	BeginDrag(todoID uuid.UUID, noteID string, pointer Point) error
	UpdateDrag(todoID uuid.UUID, pointer Point) error
	EndDrag(ctx context.Context, todoID uuid.UUID) error
	Remove(ctx context.Context, todoID uuid.UUID, noteID string) error
	Close(ctx context.Context, todoID uuid.UUID)
}

// CalendarService computes visible windows and day buckets
type CalendarService interface {
	Refresh(ctx context.Context, userID uuid.UUID, anchor time.Time, mode CalendarMode) (*CalendarView, error)
	Navigate(direction int, mode CalendarMode, anchor time.Time) time.Time
}

// Calendar types

type CalendarMode string

const (
	CalendarModeMonth CalendarMode = "month"
	CalendarModeWeek  CalendarMode = "week"
)

func (m CalendarMode) IsValid() bool {
	return m == CalendarModeMonth || m == CalendarModeWeek
}

// DateRange is an inclusive [Start, End] window of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CalendarEntry is the read-only projection of a todo for calendar display.
type CalendarEntry struct {
	ID     uuid.UUID           `json:"id"`
	Date   string              `json:"date"`
	Title  string              `json:"title"`
	Status entities.TodoStatus `json:"status"`
}

// DayBucket holds the entries scheduled on one calendar day.
type DayBucket struct {
	Date    string          `json:"date"`
	Entries []CalendarEntry `json:"entries"`
}

// CalendarView is the full rendered state of the visible window.
type CalendarView struct {
	Anchor string       `json:"anchor"`
	Mode   CalendarMode `json:"mode"`
	Range  DateRange    `json:"range"`
	Days   []DayBucket  `json:"days"`
	Stale  bool         `json:"stale"`
}

// Board types

// Point is a pointer position on the board, origin top-left.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoteSyncState reports where a note stands relative to remote storage.
type NoteSyncState string

const (
	NoteSyncClean   NoteSyncState = "clean"
	NoteSyncPending NoteSyncState = "pending"
	NoteSyncFailed  NoteSyncState = "failed"
)

// NoteView pairs a note item with its sync status for display.
type NoteView struct {
	entities.NoteItem
	SyncState NoteSyncState `json:"sync_state"`
}

// BoardView is the full board of one todo.
type BoardView struct {
	TodoID uuid.UUID  `json:"todo_id"`
	Notes  []NoteView `json:"notes"`
}

// Request/Response Types

// Auth related types
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest accepts an email or a username in Identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int64          `json:"expires_in"`
	User         *entities.User `json:"user"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Category related types
type CreateCategoryRequest struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Color *string `json:"color" validate:"omitempty,max=20"`
}

type UpdateCategoryRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Color *string `json:"color" validate:"omitempty,max=20"`
}

// Todo related types
type CreateTodoRequest struct {
	Title              string             `json:"title" validate:"required,max=200"`
	Description        *string            `json:"description"`
	CategoryID         *uuid.UUID         `json:"category_id"`
	Priority           *entities.Priority `json:"priority"`
	ScheduledDate      *string            `json:"scheduled_date"`
	StartTime          *time.Time         `json:"start_time"`
	DueTime            *time.Time         `json:"due_time"`
	TimerPresetMinutes *int               `json:"timer_preset_minutes"`
	TimerCustomSeconds *int               `json:"timer_custom_seconds"`
	TimerSound         *string            `json:"timer_sound"`
}

type UpdateTodoRequest struct {
	Title              *string              `json:"title" validate:"omitempty,max=200"`
	Description        *string              `json:"description"`
	CategoryID         *uuid.UUID           `json:"category_id"`
	Status             *entities.TodoStatus `json:"status"`
	Priority           *entities.Priority   `json:"priority"`
	ScheduledDate      *string              `json:"scheduled_date"`
	StartTime          *time.Time           `json:"start_time"`
	DueTime            *time.Time           `json:"due_time"`
	TimerPresetMinutes *int                 `json:"timer_preset_minutes"`
	TimerCustomSeconds *int                 `json:"timer_custom_seconds"`
	TimerSound         *string              `json:"timer_sound"`
}

// Link related types
type AddLinkRequest struct {
	Label string `json:"label" validate:"required,max=100"`
	URL   string `json:"url" validate:"required,url"`
}
