package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/daygrid/core/internal/domain/entities"
	"github.com/daygrid/core/internal/ports"
)

// CategoryRepositoryImpl implements the CategoryRepository interface
type CategoryRepositoryImpl struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sqlx.DB) ports.CategoryRepository {
	return &CategoryRepositoryImpl{db: db}
}

func (r *CategoryRepositoryImpl) Create(ctx context.Context, category *entities.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, color)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		category.ID, category.UserID, category.Name, category.Color,
	).Scan(&category.CreatedAt)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

func (r *CategoryRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Category, error) {
	query := `SELECT id, user_id, name, color, created_at FROM categories WHERE id = $1`

	var category entities.Category
	err := r.db.GetContext(ctx, &category, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category by id: %w", err)
	}

	return &category, nil
}

func (r *CategoryRepositoryImpl) Update(ctx context.Context, category *entities.Category) error {
	query := `UPDATE categories SET name = $2, color = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, category.ID, category.Name, category.Color)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.ErrCategoryNotFound
	}

	return nil
}

func (r *CategoryRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM categories WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.ErrCategoryNotFound
	}

	return nil
}

func (r *CategoryRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Category, error) {
	query := `
		SELECT id, user_id, name, color, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY created_at ASC`

	var categories []*entities.Category
	err := r.db.SelectContext(ctx, &categories, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

// LinkRepositoryImpl implements the LinkRepository interface
type LinkRepositoryImpl struct {
	db *sqlx.DB
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(db *sqlx.DB) ports.LinkRepository {
	return &LinkRepositoryImpl{db: db}
}

func (r *LinkRepositoryImpl) Create(ctx context.Context, link *entities.TodoLink) error {
	query := `
		INSERT INTO todo_links (id, user_id, todo_id, label, url, type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		link.ID, link.UserID, link.TodoID, link.Label, link.URL, link.Type,
	).Scan(&link.CreatedAt)
	if err != nil {
		return fmt.Errorf("create link: %w", err)
	}

	return nil
}

func (r *LinkRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.TodoLink, error) {
	query := `SELECT id, user_id, todo_id, label, url, type, created_at FROM todo_links WHERE id = $1`

	var link entities.TodoLink
	err := r.db.GetContext(ctx, &link, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrLinkNotFound
		}
		return nil, fmt.Errorf("get link by id: %w", err)
	}

	return &link, nil
}

func (r *LinkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM todo_links WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.ErrLinkNotFound
	}

	return nil
}

func (r *LinkRepositoryImpl) ListByTodo(ctx context.Context, todoID uuid.UUID) ([]*entities.TodoLink, error) {
	query := `
		SELECT id, user_id, todo_id, label, url, type, created_at
		FROM todo_links
		WHERE todo_id = $1
		ORDER BY created_at ASC`

	var links []*entities.TodoLink
	err := r.db.SelectContext(ctx, &links, query, todoID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}

	return links, nil
}

// AuthRepositoryImpl implements the AuthRepository interface
type AuthRepositoryImpl struct {
	db *sqlx.DB
}

// NewAuthRepository creates a new auth repository
func NewAuthRepository(db *sqlx.DB) ports.AuthRepository {
	return &AuthRepositoryImpl{db: db}
}

func (r *AuthRepositoryImpl) CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, userID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}

	return nil
}

func (r *AuthRepositoryImpl) GetRefreshToken(ctx context.Context, tokenHash string) (*ports.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at, revoked_at
		FROM refresh_tokens
		WHERE token_hash = $1`

	var token ports.RefreshToken
	err := r.db.GetContext(ctx, &token, query, tokenHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("refresh token not found")
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}

	return &token, nil
}

func (r *AuthRepositoryImpl) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	query := `UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP WHERE token_hash = $1 AND revoked_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, tokenHash); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	return nil
}

func (r *AuthRepositoryImpl) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP WHERE user_id = $1 AND revoked_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}

	return nil
}

func (r *AuthRepositoryImpl) CleanupExpiredTokens(ctx context.Context) error {
	query := `DELETE FROM refresh_tokens WHERE expires_at < CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("cleanup expired tokens: %w", err)
	}

	return nil
}
