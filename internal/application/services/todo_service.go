package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/daygrid/core/internal/domain/entities"
	"github.com/daygrid/core/internal/infrastructure/logger"
	"github.com/daygrid/core/internal/ports"
)

// TodoService handles todo-related operations
type TodoService struct {
	todoRepo     ports.TodoRepository
	categoryRepo ports.CategoryRepository
	logger       *logger.Logger
}

// NewTodoService creates a new todo service
func NewTodoService(todoRepo ports.TodoRepository, categoryRepo ports.CategoryRepository, logger *logger.Logger) *TodoService {
	return &TodoService{
		todoRepo:     todoRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// CreateTodo creates a new todo for the user
func (s *TodoService) CreateTodo(ctx context.Context, userID uuid.UUID, req ports.CreateTodoRequest) (*entities.Todo, error) {
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, userID, *req.CategoryID); err != nil {
			return nil, err
		}
	}
	if req.ScheduledDate != nil {
		if err := entities.ValidateScheduledDate(*req.ScheduledDate); err != nil {
			return nil, err
		}
	}
	if req.TimerPresetMinutes != nil && *req.TimerPresetMinutes <= 0 {
		return nil, entities.ErrInvalidTimerPreset
	}
	if req.Priority != nil && !req.Priority.IsValid() {
		return nil, entities.ErrInvalidStatus
	}

	todo := &entities.Todo{
		ID:                 uuid.New(),
		UserID:             userID,
		CategoryID:         req.CategoryID,
		Title:              req.Title,
		Description:        req.Description,
		Status:             entities.TodoStatusPending,
		Priority:           req.Priority,
		ScheduledDate:      req.ScheduledDate,
		StartTime:          req.StartTime,
		DueTime:            req.DueTime,
		TimingResult:       entities.TimingNotCompleted,
		TimerPresetMinutes: req.TimerPresetMinutes,
		TimerCustomSeconds: req.TimerCustomSeconds,
		TimerSound:         "default",
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	if req.TimerSound != nil {
		todo.TimerSound = *req.TimerSound
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.logger.Info("Todo created successfully", "todo_id", todo.ID, "title", todo.Title)

	return todo, nil
}

// GetTodo retrieves a todo owned by the user
func (s *TodoService) GetTodo(ctx context.Context, userID, id uuid.UUID) (*entities.Todo, error) {
	todo, err := s.todoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("todo not found: %w", err)
	}
	if todo.UserID != userID {
		return nil, entities.ErrUnauthorized
	}
	return todo, nil
}

// UpdateTodo updates a todo's fields. Moving into completed stamps the
// completion time and timing result; moving out clears both.
func (s *TodoService) UpdateTodo(ctx context.Context, userID, id uuid.UUID, req ports.UpdateTodoRequest) (*entities.Todo, error) {
	todo, err := s.GetTodo(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, userID, *req.CategoryID); err != nil {
			return nil, err
		}
		todo.CategoryID = req.CategoryID
	}
	if req.Title != nil {
		todo.Title = *req.Title
	}
	if req.Description != nil {
		todo.Description = req.Description
	}
	if req.Priority != nil {
		if !req.Priority.IsValid() {
			return nil, entities.ErrInvalidStatus
		}
		todo.Priority = req.Priority
	}
	if req.ScheduledDate != nil {
		if err := entities.ValidateScheduledDate(*req.ScheduledDate); err != nil {
			return nil, err
		}
		todo.ScheduledDate = req.ScheduledDate
	}
	if req.StartTime != nil {
		todo.StartTime = req.StartTime
	}
	if req.DueTime != nil {
		todo.DueTime = req.DueTime
	}
	if req.TimerPresetMinutes != nil {
		if *req.TimerPresetMinutes <= 0 {
			return nil, entities.ErrInvalidTimerPreset
		}
		todo.TimerPresetMinutes = req.TimerPresetMinutes
	}
	if req.TimerCustomSeconds != nil {
		todo.TimerCustomSeconds = req.TimerCustomSeconds
	}
	if req.TimerSound != nil {
		todo.TimerSound = *req.TimerSound
	}

	if req.Status != nil && *req.Status != todo.Status {
		switch *req.Status {
		case entities.TodoStatusCompleted:
			if err := todo.Complete(time.Now()); err != nil {
				return nil, err
			}
		default:
			if err := todo.Reopen(*req.Status); err != nil {
				return nil, err
			}
		}
	}

	todo.UpdatedAt = time.Now()

	if err := s.todoRepo.Update(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	s.logger.Info("Todo updated successfully", "todo_id", todo.ID, "status", todo.Status)

	return todo, nil
}

// DeleteTodo deletes a todo owned by the user
func (s *TodoService) DeleteTodo(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetTodo(ctx, userID, id); err != nil {
		return err
	}

	if err := s.todoRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	s.logger.Info("Todo deleted successfully", "todo_id", id)

	return nil
}

// ListTodos retrieves the user's todos with filtering
func (s *TodoService) ListTodos(ctx context.Context, filter ports.TodoFilter) ([]*entities.Todo, error) {
	todos, err := s.todoRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

func (s *TodoService) checkCategory(ctx context.Context, userID, categoryID uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("category not found: %w", err)
	}
	if category.UserID != userID {
		return entities.ErrUnauthorized
	}
	return nil
}
