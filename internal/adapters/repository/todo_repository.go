package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/daygrid/core/internal/domain/entities"
	"github.com/daygrid/core/internal/ports"
)

// TodoRepositoryImpl implements the TodoRepository interface
type TodoRepositoryImpl struct {
	db *sqlx.DB
}

// NewTodoRepository creates a new todo repository
func NewTodoRepository(db *sqlx.DB) ports.TodoRepository {
	return &TodoRepositoryImpl{db: db}
}

const todoColumns = `id, user_id, category_id, title, description, status, priority,
	scheduled_date, start_time, due_time, completed_at, timing_result,
	timer_preset_minutes, timer_custom_seconds, timer_sound, notes_canvas,
	created_at, updated_at`

func (r *TodoRepositoryImpl) Create(ctx context.Context, todo *entities.Todo) error {
	query := `
		INSERT INTO todos (id, user_id, category_id, title, description, status, priority,
			scheduled_date, start_time, due_time, timing_result,
			timer_preset_minutes, timer_custom_seconds, timer_sound)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`

	if todo.ID == uuid.Nil {
		todo.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		todo.ID, todo.UserID, todo.CategoryID, todo.Title, todo.Description,
		todo.Status, todo.Priority, todo.ScheduledDate, todo.StartTime, todo.DueTime,
		todo.TimingResult, todo.TimerPresetMinutes, todo.TimerCustomSeconds, todo.TimerSound,
	).Scan(&todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create todo: %w", err)
	}

	return nil
}

func (r *TodoRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`

	var todo entities.Todo
	err := r.db.GetContext(ctx, &todo, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTodoNotFound
		}
		return nil, fmt.Errorf("get todo by id: %w", err)
	}

	return &todo, nil
}

func (r *TodoRepositoryImpl) Update(ctx context.Context, todo *entities.Todo) error {
	query := `
		UPDATE todos
		SET category_id = $2, title = $3, description = $4, status = $5, priority = $6,
			scheduled_date = $7, start_time = $8, due_time = $9, completed_at = $10,
			timing_result = $11, timer_preset_minutes = $12, timer_custom_seconds = $13,
			timer_sound = $14, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		todo.ID, todo.CategoryID, todo.Title, todo.Description, todo.Status, todo.Priority,
		todo.ScheduledDate, todo.StartTime, todo.DueTime, todo.CompletedAt,
		todo.TimingResult, todo.TimerPresetMinutes, todo.TimerCustomSeconds, todo.TimerSound,
	).Scan(&todo.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrTodoNotFound
		}
		return fmt.Errorf("update todo: %w", err)
	}

	return nil
}

func (r *TodoRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM todos WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.ErrTodoNotFound
	}

	return nil
}

func (r *TodoRepositoryImpl) List(ctx context.Context, filter ports.TodoFilter) ([]*entities.Todo, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{filter.UserID}

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.Search != nil && *filter.Search != "" {
		args = append(args, "%"+*filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("title ILIKE $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, filter.Offset)

	query := `SELECT ` + todoColumns + `
		FROM todos
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY due_time ASC NULLS LAST, created_at DESC
		LIMIT $` + fmt.Sprint(len(args)-1) + ` OFFSET $` + fmt.Sprint(len(args))

	var todos []*entities.Todo
	err := r.db.SelectContext(ctx, &todos, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	return todos, nil
}

// ListScheduledInRange fetches the user's todos whose scheduled date falls
// in the inclusive [startDate, endDate] window. Dates are YYYY-MM-DD strings
// so plain string comparison orders them correctly.
func (r *TodoRepositoryImpl) ListScheduledInRange(ctx context.Context, userID uuid.UUID, startDate, endDate string) ([]*entities.Todo, error) {
	query := `SELECT ` + todoColumns + `
		FROM todos
		WHERE user_id = $1
		  AND scheduled_date IS NOT NULL
		  AND scheduled_date >= $2
		  AND scheduled_date <= $3
		ORDER BY created_at ASC`

	var todos []*entities.Todo
	err := r.db.SelectContext(ctx, &todos, query, userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("list scheduled todos: %w", err)
	}

	return todos, nil
}

func (r *TodoRepositoryImpl) GetNotesDocument(ctx context.Context, todoID uuid.UUID) (json.RawMessage, error) {
	query := `SELECT notes_canvas FROM todos WHERE id = $1`

	var doc []byte
	err := r.db.GetContext(ctx, &doc, query, todoID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTodoNotFound
		}
		return nil, fmt.Errorf("get notes document: %w", err)
	}

	return json.RawMessage(doc), nil
}

func (r *TodoRepositoryImpl) SaveNotesDocument(ctx context.Context, todoID uuid.UUID, doc json.RawMessage) error {
	query := `UPDATE todos SET notes_canvas = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, todoID, []byte(doc))
	if err != nil {
		return fmt.Errorf("save notes document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.ErrTodoNotFound
	}

	return nil
}
