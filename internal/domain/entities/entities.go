package entities

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrTodoNotFound       = errors.New("todo not found")
	ErrLinkNotFound       = errors.New("link not found")
	ErrNoteNotFound       = errors.New("note not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidTimerPreset = errors.New("timer preset must be positive")
	ErrInvalidDate        = errors.New("date must be formatted as YYYY-MM-DD")
	ErrEmptyImage         = errors.New("image payload is empty")
)

// Enums and types
type TodoStatus string

const (
	TodoStatusPending    TodoStatus = "pending"
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusCompleted  TodoStatus = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type TimingResult string

const (
	TimingEarly        TimingResult = "early"
	TimingOnTime       TimingResult = "on_time"
	TimingLate         TimingResult = "late"
	TimingNotCompleted TimingResult = "not_completed"
)

type LinkType string

const (
	LinkTypeWebsite LinkType = "website"
	LinkTypeYouTube LinkType = "youtube"
	LinkTypeOther   LinkType = "other"
)

// ScheduledDateLayout is the canonical wire format for scheduled dates.
// Dates compare correctly as strings in this layout.
const ScheduledDateLayout = "2006-01-02"

// EarlyCompletionMargin separates "early" from "on_time" when a todo is
// completed before its due time.
const EarlyCompletionMargin = 10 * time.Minute

// User represents an account in the system
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Category groups a user's todos in the sidebar
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Color     *string   `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Todo represents a single to-do item
type Todo struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	UserID             uuid.UUID       `json:"user_id" db:"user_id"`
	CategoryID         *uuid.UUID      `json:"category_id" db:"category_id"`
	Title              string          `json:"title" db:"title"`
	Description        *string         `json:"description" db:"description"`
	Status             TodoStatus      `json:"status" db:"status"`
	Priority           *Priority       `json:"priority" db:"priority"`
	ScheduledDate      *string         `json:"scheduled_date" db:"scheduled_date"`
	StartTime          *time.Time      `json:"start_time" db:"start_time"`
	DueTime            *time.Time      `json:"due_time" db:"due_time"`
	CompletedAt        *time.Time      `json:"completed_at" db:"completed_at"`
	TimingResult       TimingResult    `json:"timing_result" db:"timing_result"`
	TimerPresetMinutes *int            `json:"timer_preset_minutes" db:"timer_preset_minutes"`
	TimerCustomSeconds *int            `json:"timer_custom_seconds" db:"timer_custom_seconds"`
	TimerSound         string          `json:"timer_sound" db:"timer_sound"`
	NotesCanvas        json.RawMessage `json:"notes_canvas,omitempty" db:"notes_canvas"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// TodoLink is a link attached to a todo. EmbedURL is derived from URL for
// youtube links and never stored.
type TodoLink struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	TodoID    uuid.UUID `json:"todo_id" db:"todo_id"`
	Label     string    `json:"label" db:"label"`
	URL       string    `json:"url" db:"url"`
	Type      LinkType  `json:"type" db:"type"`
	EmbedURL  string    `json:"embed_url,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NoteKind distinguishes the two board item variants
type NoteKind string

const (
	NoteKindText  NoteKind = "text"
	NoteKindImage NoteKind = "image"
)

// Default note geometry applied by the per-kind constructors
const (
	TextNoteDefaultWidth   = 200
	TextNoteDefaultHeight  = 100
	ImageNoteDefaultWidth  = 200
	ImageNoteDefaultHeight = 200

	NoteDefaultX = 100
	NoteDefaultY = 100

	TextNotePlaceholder = "New note"
)

// NoteItem is one positioned element on a todo's note board. The board is
// persisted as a single JSON array on the todo row; the field names below
// are the document format and must stay stable.
type NoteItem struct {
	ID      string   `json:"id"`
	Kind    NoteKind `json:"type"`
	Content string   `json:"content"`
	X       int      `json:"x"`
	Y       int      `json:"y"`
	Width   *int     `json:"width,omitempty"`
	Height  *int     `json:"height,omitempty"`
}

// NewTextNote builds a text note with placeholder content at the default
// position and size.
func NewTextNote(id string) NoteItem {
	w, h := TextNoteDefaultWidth, TextNoteDefaultHeight
	return NoteItem{
		ID:      id,
		Kind:    NoteKindText,
		Content: TextNotePlaceholder,
		X:       NoteDefaultX,
		Y:       NoteDefaultY,
		Width:   &w,
		Height:  &h,
	}
}

// NewImageNote builds an image note whose content is a self-contained data
// URI. The board never stores remote image URLs.
func NewImageNote(id string, data []byte, mimeType string) (NoteItem, error) {
	if len(data) == 0 {
		return NoteItem{}, ErrEmptyImage
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	w, h := ImageNoteDefaultWidth, ImageNoteDefaultHeight
	return NoteItem{
		ID:      id,
		Kind:    NoteKindImage,
		Content: fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)),
		X:       NoteDefaultX,
		Y:       NoteDefaultY,
		Width:   &w,
		Height:  &h,
	}, nil
}

// EffectiveSize returns the item's size with per-kind defaults applied for
// documents written before sizes were recorded.
func (n *NoteItem) EffectiveSize() (width, height int) {
	switch n.Kind {
	case NoteKindImage:
		width, height = ImageNoteDefaultWidth, ImageNoteDefaultHeight
	default:
		width, height = TextNoteDefaultWidth, TextNoteDefaultHeight
	}
	if n.Width != nil {
		width = *n.Width
	}
	if n.Height != nil {
		height = *n.Height
	}
	return width, height
}

// Business logic methods for Todo

// Complete marks the todo completed at the given time and records how it
// landed against the due time.
func (t *Todo) Complete(now time.Time) error {
	if t.Status == TodoStatusCompleted {
		return ErrInvalidStatus
	}
	t.Status = TodoStatusCompleted
	t.CompletedAt = &now
	t.TimingResult = t.timingResultAt(now)
	return nil
}

// Reopen clears completion state when a todo moves back out of completed.
func (t *Todo) Reopen(status TodoStatus) error {
	if status == TodoStatusCompleted || !status.IsValid() {
		return ErrInvalidStatus
	}
	t.Status = status
	t.CompletedAt = nil
	t.TimingResult = TimingNotCompleted
	return nil
}

func (t *Todo) timingResultAt(completed time.Time) TimingResult {
	if t.DueTime == nil {
		return TimingOnTime
	}
	switch {
	case completed.After(*t.DueTime):
		return TimingLate
	case t.DueTime.Sub(completed) > EarlyCompletionMargin:
		return TimingEarly
	default:
		return TimingOnTime
	}
}

// IsOverdue reports whether the todo is past its due time and not completed.
func (t *Todo) IsOverdue(now time.Time) bool {
	if t.DueTime == nil {
		return false
	}
	return now.After(*t.DueTime) && t.Status != TodoStatusCompleted
}

// CountdownSeconds returns the configured countdown length. Custom seconds
// take precedence over the preset; zero means no timer is configured.
func (t *Todo) CountdownSeconds() int {
	if t.TimerCustomSeconds != nil && *t.TimerCustomSeconds > 0 {
		return *t.TimerCustomSeconds
	}
	if t.TimerPresetMinutes != nil && *t.TimerPresetMinutes > 0 {
		return *t.TimerPresetMinutes * 60
	}
	return 0
}

// ValidateScheduledDate checks the canonical YYYY-MM-DD wire format.
func ValidateScheduledDate(date string) error {
	if _, err := time.Parse(ScheduledDateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// DetectLinkType classifies a URL the way the link list renders it.
func DetectLinkType(url string) LinkType {
	if strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be") {
		return LinkTypeYouTube
	}
	return LinkTypeWebsite
}

// Utility methods
func (s TodoStatus) IsValid() bool {
	switch s {
	case TodoStatusPending, TodoStatusInProgress, TodoStatusCompleted:
		return true
	default:
		return false
	}
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func (lt LinkType) IsValid() bool {
	switch lt {
	case LinkTypeWebsite, LinkTypeYouTube, LinkTypeOther:
		return true
	default:
		return false
	}
}

func (k NoteKind) IsValid() bool {
	switch k {
	case NoteKindText, NoteKindImage:
		return true
	default:
		return false
	}
}
