package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daygrid/core/internal/domain/entities"
	"github.com/daygrid/core/internal/ports"
)

// memTodoRepo keeps todos by id for the service-level tests.
type memTodoRepo struct {
	*fakeTodoRepo
	byID map[uuid.UUID]*entities.Todo
}

func newMemTodoRepo() *memTodoRepo {
	return &memTodoRepo{
		fakeTodoRepo: newFakeTodoRepo(),
		byID:         make(map[uuid.UUID]*entities.Todo),
	}
}

func (m *memTodoRepo) Create(ctx context.Context, todo *entities.Todo) error {
	cp := *todo
	m.byID[todo.ID] = &cp
	return nil
}

func (m *memTodoRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Todo, error) {
	todo, ok := m.byID[id]
	if !ok {
		return nil, entities.ErrTodoNotFound
	}
	cp := *todo
	return &cp, nil
}

func (m *memTodoRepo) Update(ctx context.Context, todo *entities.Todo) error {
	if _, ok := m.byID[todo.ID]; !ok {
		return entities.ErrTodoNotFound
	}
	cp := *todo
	m.byID[todo.ID] = &cp
	return nil
}

func (m *memTodoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.byID[id]; !ok {
		return entities.ErrTodoNotFound
	}
	delete(m.byID, id)
	return nil
}

type memCategoryRepo struct {
	byID map[uuid.UUID]*entities.Category
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{byID: make(map[uuid.UUID]*entities.Category)}
}

func (m *memCategoryRepo) Create(ctx context.Context, category *entities.Category) error {
	m.byID[category.ID] = category
	return nil
}

func (m *memCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Category, error) {
	category, ok := m.byID[id]
	if !ok {
		return nil, entities.ErrCategoryNotFound
	}
	return category, nil
}

func (m *memCategoryRepo) Update(ctx context.Context, category *entities.Category) error { return nil }

func (m *memCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (m *memCategoryRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Category, error) {
	return nil, nil
}

func newTestTodoService(t *testing.T) (*TodoService, *memTodoRepo, *memCategoryRepo) {
	t.Helper()
	todoRepo := newMemTodoRepo()
	categoryRepo := newMemCategoryRepo()
	return NewTodoService(todoRepo, categoryRepo, testLogger(t)), todoRepo, categoryRepo
}

func TestCreateTodoDefaults(t *testing.T) {
	svc, _, _ := newTestTodoService(t)
	userID := uuid.New()

	todo, err := svc.CreateTodo(context.Background(), userID, ports.CreateTodoRequest{Title: "water plants"})
	require.NoError(t, err)

	assert.Equal(t, userID, todo.UserID)
	assert.Equal(t, entities.TodoStatusPending, todo.Status)
	assert.Equal(t, entities.TimingNotCompleted, todo.TimingResult)
	assert.Equal(t, "default", todo.TimerSound)
	// Priority is optional end to end; unset stays NULL in storage.
	assert.Nil(t, todo.Priority)
	assert.Nil(t, todo.CompletedAt)
}

func TestCreateTodoValidation(t *testing.T) {
	svc, _, _ := newTestTodoService(t)
	userID := uuid.New()

	badDate := "31/03/2024"
	_, err := svc.CreateTodo(context.Background(), userID, ports.CreateTodoRequest{Title: "x", ScheduledDate: &badDate})
	assert.ErrorIs(t, err, entities.ErrInvalidDate)

	badPreset := 0
	_, err = svc.CreateTodo(context.Background(), userID, ports.CreateTodoRequest{Title: "x", TimerPresetMinutes: &badPreset})
	assert.ErrorIs(t, err, entities.ErrInvalidTimerPreset)

	_, err = svc.CreateTodo(context.Background(), userID, ports.CreateTodoRequest{Title: "x", CategoryID: ptr(uuid.New())})
	assert.Error(t, err)
}

func TestCreateTodoRejectsForeignCategory(t *testing.T) {
	svc, _, categoryRepo := newTestTodoService(t)
	owner := uuid.New()

	category := &entities.Category{ID: uuid.New(), UserID: owner, Name: "work"}
	require.NoError(t, categoryRepo.Create(context.Background(), category))

	_, err := svc.CreateTodo(context.Background(), uuid.New(), ports.CreateTodoRequest{Title: "x", CategoryID: &category.ID})
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestUpdateTodoCompletion(t *testing.T) {
	svc, _, _ := newTestTodoService(t)
	userID := uuid.New()

	due := time.Now().Add(time.Hour)
	todo, err := svc.CreateTodo(context.Background(), userID, ports.CreateTodoRequest{Title: "ship it", DueTime: &due})
	require.NoError(t, err)

	completed := entities.TodoStatusCompleted
	updated, err := svc.UpdateTodo(context.Background(), userID, todo.ID, ports.UpdateTodoRequest{Status: &completed})
	require.NoError(t, err)

	assert.Equal(t, entities.TodoStatusCompleted, updated.Status)
	assert.Equal(t, entities.TimingEarly, updated.TimingResult)
	require.NotNil(t, updated.CompletedAt)

	// Reopening clears the completion stamp.
	pending := entities.TodoStatusPending
	reopened, err := svc.UpdateTodo(context.Background(), userID, todo.ID, ports.UpdateTodoRequest{Status: &pending})
	require.NoError(t, err)

	assert.Equal(t, entities.TodoStatusPending, reopened.Status)
	assert.Equal(t, entities.TimingNotCompleted, reopened.TimingResult)
	assert.Nil(t, reopened.CompletedAt)
}

func TestGetTodoOwnership(t *testing.T) {
	svc, _, _ := newTestTodoService(t)
	owner := uuid.New()

	todo, err := svc.CreateTodo(context.Background(), owner, ports.CreateTodoRequest{Title: "private"})
	require.NoError(t, err)

	_, err = svc.GetTodo(context.Background(), uuid.New(), todo.ID)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	_, err = svc.GetTodo(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, entities.ErrTodoNotFound)
}

func TestDeleteTodo(t *testing.T) {
	svc, repo, _ := newTestTodoService(t)
	userID := uuid.New()

	todo, err := svc.CreateTodo(context.Background(), userID, ports.CreateTodoRequest{Title: "temp"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTodo(context.Background(), userID, todo.ID))
	_, ok := repo.byID[todo.ID]
	assert.False(t, ok)
}

func ptr[T any](v T) *T { return &v }
