package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/daygrid/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *entities.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Category, error)
	Update(ctx context.Context, category *entities.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Category, error)
}

// TodoRepository defines the interface for todo data operations. The board
// document lives on the todo row; GetNotesDocument and SaveNotesDocument
// read and replace it wholesale.
type TodoRepository interface {
	Create(ctx context.Context, todo *entities.Todo) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Todo, error)
	Update(ctx context.Context, todo *entities.Todo) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter TodoFilter) ([]*entities.Todo, error)
	ListScheduledInRange(ctx context.Context, userID uuid.UUID, startDate, endDate string) ([]*entities.Todo, error)
	GetNotesDocument(ctx context.Context, todoID uuid.UUID) (json.RawMessage, error)
	SaveNotesDocument(ctx context.Context, todoID uuid.UUID, doc json.RawMessage) error
}

// LinkRepository defines the interface for todo link data operations
type LinkRepository interface {
	Create(ctx context.Context, link *entities.TodoLink) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TodoLink, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTodo(ctx context.Context, todoID uuid.UUID) ([]*entities.TodoLink, error)
}

// AuthRepository defines the interface for refresh token storage
type AuthRepository interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
	CleanupExpiredTokens(ctx context.Context) error
}

// TodoFilter narrows todo list queries
type TodoFilter struct {
	UserID     uuid.UUID
	CategoryID *uuid.UUID
	Status     *entities.TodoStatus
	Priority   *entities.Priority
	Search     *string
	Limit      int
	Offset     int
}

// RefreshToken represents a refresh token record
type RefreshToken struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	TokenHash string     `json:"token_hash" db:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	RevokedAt *time.Time `json:"revoked_at" db:"revoked_at"`
}

// IsExpired checks if the refresh token is expired
func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// IsRevoked checks if the refresh token is revoked
func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

// IsValid checks if the refresh token is valid
func (rt *RefreshToken) IsValid() bool {
	return !rt.IsExpired() && !rt.IsRevoked()
}
