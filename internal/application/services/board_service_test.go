package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daygrid/core/internal/domain/entities"
	"github.com/daygrid/core/internal/infrastructure/config"
	"github.com/daygrid/core/internal/infrastructure/logger"
	"github.com/daygrid/core/internal/ports"
)

// fakeTodoRepo is an in-memory TodoRepository covering the board and
// calendar paths; the other methods are never reached by these tests.
type fakeTodoRepo struct {
	mu       sync.Mutex
	docs     map[uuid.UUID]json.RawMessage
	todos    []*entities.Todo
	saveErr  error
	loadErr  error
	listErr  error
	saves    int
	loadGate chan struct{}
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{docs: make(map[uuid.UUID]json.RawMessage)}
}

func (f *fakeTodoRepo) Create(ctx context.Context, todo *entities.Todo) error { return nil }

func (f *fakeTodoRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Todo, error) {
	return nil, entities.ErrTodoNotFound
}

func (f *fakeTodoRepo) Update(ctx context.Context, todo *entities.Todo) error { return nil }

func (f *fakeTodoRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeTodoRepo) List(ctx context.Context, filter ports.TodoFilter) ([]*entities.Todo, error) {
	return nil, nil
}

func (f *fakeTodoRepo) ListScheduledInRange(ctx context.Context, userID uuid.UUID, startDate, endDate string) ([]*entities.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*entities.Todo
	for _, t := range f.todos {
		if t.UserID != userID || t.ScheduledDate == nil {
			continue
		}
		if *t.ScheduledDate >= startDate && *t.ScheduledDate <= endDate {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTodoRepo) GetNotesDocument(ctx context.Context, todoID uuid.UUID) (json.RawMessage, error) {
	if gate := f.gate(); gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.docs[todoID], nil
}

func (f *fakeTodoRepo) SaveNotesDocument(ctx context.Context, todoID uuid.UUID, doc json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.docs[todoID] = append(json.RawMessage(nil), doc...)
	return nil
}

func (f *fakeTodoRepo) gate() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadGate
}

func (f *fakeTodoRepo) savedNotes(t *testing.T, todoID uuid.UUID) []entities.NoteItem {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var notes []entities.NoteItem
	require.NoError(t, json.Unmarshal(f.docs[todoID], &notes))
	return notes
}

func (f *fakeTodoRepo) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(config.LoggerConfig{Level: "error", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	return l
}

func TestLoadMissingDocumentStartsEmpty(t *testing.T) {
	repo := newFakeTodoRepo()
	svc := NewBoardService(repo, testLogger(t))

	view, err := svc.Load(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, view.Notes)
}

func TestLoadMalformedDocumentStartsEmpty(t *testing.T) {
	repo := newFakeTodoRepo()
	todoID := uuid.New()
	repo.docs[todoID] = json.RawMessage(`{"not": "an array"`)
	svc := NewBoardService(repo, testLogger(t))

	view, err := svc.Load(context.Background(), todoID)
	require.NoError(t, err)
	assert.Empty(t, view.Notes)
}

func TestLoadFetchErrorStartsEmpty(t *testing.T) {
	repo := newFakeTodoRepo()
	repo.loadErr = errors.New("connection refused")
	svc := NewBoardService(repo, testLogger(t))

	view, err := svc.Load(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, view.Notes)
}

func TestLoadExistingDocument(t *testing.T) {
	repo := newFakeTodoRepo()
	todoID := uuid.New()
	repo.docs[todoID] = json.RawMessage(`[
		{"id":"100","type":"text","content":"groceries","x":10,"y":20,"width":200,"height":100},
		{"id":"101","type":"image","content":"data:image/png;base64,aGk=","x":30,"y":40}
	]`)
	svc := NewBoardService(repo, testLogger(t))

	view, err := svc.Load(context.Background(), todoID)
	require.NoError(t, err)
	require.Len(t, view.Notes, 2)

	assert.Equal(t, "100", view.Notes[0].ID)
	assert.Equal(t, entities.NoteKindText, view.Notes[0].Kind)
	assert.Equal(t, "groceries", view.Notes[0].Content)
	assert.Equal(t, 10, view.Notes[0].X)
	assert.Equal(t, ports.NoteSyncClean, view.Notes[0].SyncState)

	assert.Equal(t, entities.NoteKindImage, view.Notes[1].Kind)
	assert.Equal(t, ports.NoteSyncClean, view.Notes[1].SyncState)
}

func TestAddTextPersistsImmediately(t *testing.T) {
	repo := newFakeTodoRepo()
	todoID := uuid.New()
	svc := NewBoardService(repo, testLogger(t))

	note, err := svc.AddText(context.Background(), todoID)
	require.NoError(t, err)

	assert.Equal(t, entities.NoteKindText, note.Kind)
	assert.Equal(t, entities.TextNotePlaceholder, note.Content)
	assert.Equal(t, ports.NoteSyncClean, note.SyncState)

	saved := repo.savedNotes(t, todoID)
	require.Len(t, saved, 1)
	assert.Equal(t, note.ID, saved[0].ID)
}

func TestAddTextAssignsUniqueIDs(t *testing.T) {
	repo := newFakeTodoRepo()
	todoID := uuid.New()
	svc := NewBoardService(repo, testLogger(t))

	a, err := svc.AddText(context.Background(), todoID)
	require.NoError(t, err)
	b, err := svc.AddText(context.Background(), todoID)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestAddImagePersistsDataURI(t *testing.T) {
	repo := newFakeTodoRepo()
	todoID := uuid.New()
	svc := NewBoardService(repo, testLogger(t))

	note, err := svc.AddImage(context.Background(), todoID, []byte("hi"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, entities.NoteKindImage, note.Kind)
	assert.Equal(t, "data:image/jpeg;base64,aGk=", note.Content)

	saved := repo.savedNotes(t, todoID)
	require.Len(t, saved, 1)
	assert.Equal(t, note.Content, saved[0].Content)
}

func TestDragFollowsPointerWithOffset(t *testing.T) {
	repo := newFakeTodoRepo()
	todoID := uuid.New()
	repo.docs[todoID] = json.RawMessage(`[{"id":"7","type":"text","content":"n","x":40,"y":60}]`)
	svc := NewBoardService(repo, testLogger(t))

	_, err := svc.Load(context.Background(), todoID)
	require.NoError(t, err)

	// Grab the note 10 right and 15 below its origin.
	require.NoError(t, svc.BeginDrag(todoID, "7", ports.Point{X: 50, Y: 75}))
	require.NoError(t, svc.UpdateDrag(todoID, ports.Point{X: 200, Y: 300}))

	before := repo.saveCount()
	require.NoError(t, svc.EndDrag(context.Background(), todoID))
	assert.Equal(t, before+1, repo.saveCount())

	saved := repo.savedNotes(t, todoID)
	require.Len(t, saved, 1)
	assert.Equal(t, 190, saved[0].X)
	assert.Equal(t, 285, saved[0].Y)
}

func TestBeginDragUnknownNoteIsIgnored(t *testing.T) {
	repo := newFakeTodoRepo()
	todoID := uuid.New()
	svc := NewBoardService(repo, testLogger(t))

	require.NoError(t, svc.BeginDrag(todoID, "missing", ports.Point{X: 1, Y: 1}))
	require.NoError(t, svc.UpdateDrag(todoID, ports.Point{X: 9, Y: 9}))

	// No drag was active, so ending it writes nothing.
	require.NoError(t, svc.EndDrag(context.Background(), todoID))
	assert.Equal(t, 0, repo.saveCount())
}

func TestRemoveNote(t *testing.T) {
	repo := newFakeTodoRepo()
	todoID := uuid.New()
	repo.docs[todoID] = json.RawMessage(`[
		{"id":"1","type":"text","content":"a","x":0,"y":0},
		{"id":"2","type":"text","content":"b","x":0,"y":0}
	]`)
	svc := NewBoardService(repo, testLogger(t))

	_, err := svc.Load(context.Background(), todoID)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), todoID, "1"))

	saved := repo.savedNotes(t, todoID)
	require.Len(t, saved, 1)
	assert.Equal(t, "2", saved[0].ID)
}

func TestRemoveUnknownNote(t *testing.T) {
	repo := newFakeTodoRepo()
	svc := NewBoardService(repo, testLogger(t))

	err := svc.Remove(context.Background(), uuid.New(), "missing")
	assert.ErrorIs(t, err, entities.ErrNoteNotFound)
}

func TestEditContentUnknownNote(t *testing.T) {
	repo := newFakeTodoRepo()
	svc := NewBoardService(repo, testLogger(t))

	err := svc.EditContent(context.Background(), uuid.New(), "missing", "text")
	assert.ErrorIs(t, err, entities.ErrNoteNotFound)
}

func TestEditContentCoalescesSaves(t *testing.T) {
	repo := newFakeTodoRepo()
	todoID := uuid.New()
	repo.docs[todoID] = json.RawMessage(`[{"id":"5","type":"text","content":"","x":0,"y":0}]`)
	svc := NewBoardService(repo, testLogger(t))
	svc.editDelay = 20 * time.Millisecond

	_, err := svc.Load(context.Background(), todoID)
	require.NoError(t, err)

	before := repo.saveCount()
	require.NoError(t, svc.EditContent(context.Background(), todoID, "5", "b"))
	require.NoError(t, svc.EditContent(context.Background(), todoID, "5", "bu"))
	require.NoError(t, svc.EditContent(context.Background(), todoID, "5", "buy"))

	assert.Eventually(t, func() bool {
		return repo.saveCount() == before+1
	}, time.Second, 5*time.Millisecond)

	saved := repo.savedNotes(t, todoID)
	require.Len(t, saved, 1)
	assert.Equal(t, "buy", saved[0].Content)
}

func TestFailedSaveMarksNotesFailed(t *testing.T) {
	repo := newFakeTodoRepo()
	repo.saveErr = errors.New("disk full")
	todoID := uuid.New()
	svc := NewBoardService(repo, testLogger(t))

	note, err := svc.AddText(context.Background(), todoID)
	require.NoError(t, err)
	assert.Equal(t, ports.NoteSyncFailed, note.SyncState)
	assert.Equal(t, 0, repo.saveCount())

	// The next successful write flushes the whole board.
	repo.mu.Lock()
	repo.saveErr = nil
	repo.mu.Unlock()

	b, err := svc.AddText(context.Background(), todoID)
	require.NoError(t, err)
	assert.Equal(t, ports.NoteSyncClean, b.SyncState)

	saved := repo.savedNotes(t, todoID)
	require.Len(t, saved, 2)
	assert.Equal(t, note.ID, saved[0].ID)
}

func TestCloseFlushesPendingEdit(t *testing.T) {
	repo := newFakeTodoRepo()
	todoID := uuid.New()
	repo.docs[todoID] = json.RawMessage(`[{"id":"5","type":"text","content":"","x":0,"y":0}]`)
	svc := NewBoardService(repo, testLogger(t))
	svc.editDelay = time.Hour // the debouncer must not fire on its own

	_, err := svc.Load(context.Background(), todoID)
	require.NoError(t, err)

	require.NoError(t, svc.EditContent(context.Background(), todoID, "5", "draft"))
	svc.Close(context.Background(), todoID)

	saved := repo.savedNotes(t, todoID)
	require.Len(t, saved, 1)
	assert.Equal(t, "draft", saved[0].Content)
}

func TestBoardRoundTrip(t *testing.T) {
	repo := newFakeTodoRepo()
	todoID := uuid.New()
	svc := NewBoardService(repo, testLogger(t))

	text, err := svc.AddText(context.Background(), todoID)
	require.NoError(t, err)
	image, err := svc.AddImage(context.Background(), todoID, []byte("pix"), "image/png")
	require.NoError(t, err)
	require.NoError(t, svc.Remove(context.Background(), todoID, text.ID))

	// A fresh service over the same store sees exactly what was persisted.
	view, err := NewBoardService(repo, testLogger(t)).Load(context.Background(), todoID)
	require.NoError(t, err)
	require.Len(t, view.Notes, 1)
	assert.Equal(t, image.ID, view.Notes[0].ID)
	assert.Equal(t, entities.NoteKindImage, view.Notes[0].Kind)
	assert.Equal(t, image.Content, view.Notes[0].Content)
}

func TestStaleLoadDoesNotClobberNewSession(t *testing.T) {
	repo := newFakeTodoRepo()
	todoID := uuid.New()
	repo.docs[todoID] = json.RawMessage(`[{"id":"9","type":"text","content":"old","x":0,"y":0}]`)
	svc := NewBoardService(repo, testLogger(t))

	gate := make(chan struct{})
	repo.mu.Lock()
	repo.loadGate = gate
	repo.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Load(context.Background(), todoID)
	}()

	// Close the board while the fetch is still in flight, then let the
	// fetch finish; its result belongs to the dropped session.
	time.Sleep(10 * time.Millisecond)
	svc.Close(context.Background(), todoID)
	repo.mu.Lock()
	repo.loadGate = nil
	repo.mu.Unlock()
	close(gate)
	<-done

	// A fresh session loads the stored document untouched by the stale fetch.
	view, err := svc.Load(context.Background(), todoID)
	require.NoError(t, err)
	require.Len(t, view.Notes, 1)
	assert.Equal(t, "9", view.Notes[0].ID)

	note, err := svc.AddText(context.Background(), todoID)
	require.NoError(t, err)

	saved := repo.savedNotes(t, todoID)
	require.Len(t, saved, 2)
	assert.Equal(t, "9", saved[0].ID)
	assert.Equal(t, note.ID, saved[1].ID)
}
