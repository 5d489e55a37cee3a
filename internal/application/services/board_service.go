package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"

	"github.com/daygrid/core/internal/domain/entities"
	"github.com/daygrid/core/internal/infrastructure/logger"
	"github.com/daygrid/core/internal/ports"
)

// defaultEditSaveDelay is how long an edited note sits before its board is
// written out. Keystroke-level edits coalesce into one whole-document write.
const defaultEditSaveDelay = 750 * time.Millisecond

// saveTimeout bounds background board writes triggered by the debouncer.
const saveTimeout = 10 * time.Second

// boardSession is the in-memory board of one todo. The whole note list is
// the unit of persistence: every save replaces the todo's stored document.
type boardSession struct {
	mu         sync.Mutex
	todoID     uuid.UUID
	notes      []entities.NoteItem
	syncStates map[string]ports.NoteSyncState
	generation uint64

	dragActive bool
	dragNoteID string
	dragOffset ports.Point

	scheduleSave func(f func())
	editPending  bool

	lastNoteID int64
}

// BoardService owns one boardSession per open todo and keeps each board
// synchronized with the remote store. Saves are last-write-wins with no
// merge; concurrent editors on the same todo overwrite each other.
type BoardService struct {
	todoRepo  ports.TodoRepository
	logger    *logger.Logger
	editDelay time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*boardSession
}

// NewBoardService creates a new board service
func NewBoardService(todoRepo ports.TodoRepository, logger *logger.Logger) *BoardService {
	return &BoardService{
		todoRepo:  todoRepo,
		logger:    logger,
		editDelay: defaultEditSaveDelay,
		sessions:  make(map[uuid.UUID]*boardSession),
	}
}

func (s *BoardService) session(todoID uuid.UUID) *boardSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[todoID]
	if !ok {
		sess = &boardSession{
			todoID:       todoID,
			syncStates:   make(map[string]ports.NoteSyncState),
			scheduleSave: debounce.New(s.editDelay),
		}
		s.sessions[todoID] = sess
	}
	return sess
}

// Load fetches the todo's stored note document and replaces the in-memory
// board with it. A missing or malformed document degrades to an empty board;
// fetch errors are logged and never block the caller. A load that completes
// after the board was closed and reopened is discarded.
func (s *BoardService) Load(ctx context.Context, todoID uuid.UUID) (*ports.BoardView, error) {
	sess := s.session(todoID)

	sess.mu.Lock()
	gen := sess.generation
	sess.mu.Unlock()

	notes := []entities.NoteItem{}
	doc, err := s.todoRepo.GetNotesDocument(ctx, todoID)
	switch {
	case err != nil:
		s.logger.Warn("Failed to load note board, starting empty", "error", err, "todo_id", todoID)
	case len(doc) == 0:
		// No document yet: the board exists implicitly as an empty list.
	default:
		if err := json.Unmarshal(doc, &notes); err != nil {
			s.logger.Warn("Malformed note document, starting empty", "error", err, "todo_id", todoID)
			notes = []entities.NoteItem{}
		}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.generation != gen {
		// The board was closed while the fetch was in flight; the response
		// is stale and must not clobber the newer session.
		return sess.viewLocked(), nil
	}

	sess.notes = notes
	sess.syncStates = make(map[string]ports.NoteSyncState, len(notes))
	for _, n := range notes {
		sess.syncStates[n.ID] = ports.NoteSyncClean
	}
	sess.dragActive = false
	sess.dragNoteID = ""
	sess.editPending = false

	return sess.viewLocked(), nil
}

// AddText appends a new text note with placeholder content at the default
// position and persists the board immediately.
func (s *BoardService) AddText(ctx context.Context, todoID uuid.UUID) (*ports.NoteView, error) {
	sess := s.session(todoID)

	sess.mu.Lock()
	note := entities.NewTextNote(sess.nextNoteIDLocked())
	sess.notes = append(sess.notes, note)
	sess.syncStates[note.ID] = ports.NoteSyncPending
	sess.mu.Unlock()

	s.persist(ctx, sess)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return &ports.NoteView{NoteItem: note, SyncState: sess.syncStates[note.ID]}, nil
}

// AddImage encodes the supplied bytes into a data URI, appends the image
// note and persists immediately. The caller supplies already-read file
// bytes; the board owns only the encode step.
func (s *BoardService) AddImage(ctx context.Context, todoID uuid.UUID, data []byte, mimeType string) (*ports.NoteView, error) {
	sess := s.session(todoID)

	sess.mu.Lock()
	note, err := entities.NewImageNote(sess.nextNoteIDLocked(), data, mimeType)
	if err != nil {
		sess.mu.Unlock()
		return nil, fmt.Errorf("create image note: %w", err)
	}
	sess.notes = append(sess.notes, note)
	sess.syncStates[note.ID] = ports.NoteSyncPending
	sess.mu.Unlock()

	s.persist(ctx, sess)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return &ports.NoteView{NoteItem: note, SyncState: sess.syncStates[note.ID]}, nil
}

// EditContent updates a text note's content in local state and schedules a
// coalesced write. Rapid edits produce a single save after the idle delay.
func (s *BoardService) EditContent(ctx context.Context, todoID uuid.UUID, noteID, content string) error {
	sess := s.session(todoID)

	sess.mu.Lock()
	idx := sess.indexOfLocked(noteID)
	if idx < 0 {
		sess.mu.Unlock()
		return entities.ErrNoteNotFound
	}
	sess.notes[idx].Content = content
	sess.syncStates[noteID] = ports.NoteSyncPending
	sess.editPending = true
	sess.mu.Unlock()

	sess.scheduleSave(func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		s.persist(ctx, sess)
	})
	return nil
}

// BeginDrag records the offset between the pointer and the note origin and
// marks the drag active. Unknown note ids are ignored.
func (s *BoardService) BeginDrag(todoID uuid.UUID, noteID string, pointer ports.Point) error {
	sess := s.session(todoID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	idx := sess.indexOfLocked(noteID)
	if idx < 0 {
		return nil
	}
	sess.dragActive = true
	sess.dragNoteID = noteID
	sess.dragOffset = ports.Point{
		X: pointer.X - sess.notes[idx].X,
		Y: pointer.Y - sess.notes[idx].Y,
	}
	return nil
}

// UpdateDrag recomputes the dragged note's position from the pointer. Local
// state only; persistence waits for EndDrag to bound write volume.
func (s *BoardService) UpdateDrag(todoID uuid.UUID, pointer ports.Point) error {
	sess := s.session(todoID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.dragActive {
		return nil
	}
	idx := sess.indexOfLocked(sess.dragNoteID)
	if idx < 0 {
		return nil
	}
	sess.notes[idx].X = pointer.X - sess.dragOffset.X
	sess.notes[idx].Y = pointer.Y - sess.dragOffset.Y
	return nil
}

// EndDrag persists the board if a drag was active and clears drag state.
func (s *BoardService) EndDrag(ctx context.Context, todoID uuid.UUID) error {
	sess := s.session(todoID)

	sess.mu.Lock()
	wasActive := sess.dragActive
	if wasActive {
		sess.syncStates[sess.dragNoteID] = ports.NoteSyncPending
	}
	sess.dragActive = false
	sess.dragNoteID = ""
	sess.mu.Unlock()

	if wasActive {
		s.persist(ctx, sess)
	}
	return nil
}

// Remove deletes the note from the board and persists immediately.
func (s *BoardService) Remove(ctx context.Context, todoID uuid.UUID, noteID string) error {
	sess := s.session(todoID)

	sess.mu.Lock()
	idx := sess.indexOfLocked(noteID)
	if idx < 0 {
		sess.mu.Unlock()
		return entities.ErrNoteNotFound
	}
	sess.notes = append(sess.notes[:idx], sess.notes[idx+1:]...)
	delete(sess.syncStates, noteID)
	if sess.dragNoteID == noteID {
		sess.dragActive = false
		sess.dragNoteID = ""
	}
	sess.mu.Unlock()

	s.persist(ctx, sess)
	return nil
}

// Close flushes any coalesced edit still waiting and drops the session.
// Bumping the generation makes any in-flight Load discard its result.
func (s *BoardService) Close(ctx context.Context, todoID uuid.UUID) {
	s.mu.Lock()
	sess, ok := s.sessions[todoID]
	if ok {
		delete(s.sessions, todoID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	sess.mu.Lock()
	sess.generation++
	pending := sess.editPending
	sess.mu.Unlock()

	if pending {
		s.persist(ctx, sess)
	}
}

// persist writes the whole note list as one document. Failures are logged
// and the involved notes flip to failed; in-memory state stays authoritative
// until the next successful save.
func (s *BoardService) persist(ctx context.Context, sess *boardSession) {
	sess.mu.Lock()
	snapshot := make([]entities.NoteItem, len(sess.notes))
	copy(snapshot, sess.notes)
	sess.editPending = false
	sess.mu.Unlock()

	doc, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("Failed to encode note board", "error", err, "todo_id", sess.todoID)
		s.markAll(sess, ports.NoteSyncFailed)
		return
	}

	if err := s.todoRepo.SaveNotesDocument(ctx, sess.todoID, doc); err != nil {
		s.logger.Warn("Failed to save note board", "error", err, "todo_id", sess.todoID, "notes", len(snapshot))
		s.markAll(sess, ports.NoteSyncFailed)
		return
	}

	s.markAll(sess, ports.NoteSyncClean)
}

func (s *BoardService) markAll(sess *boardSession, state ports.NoteSyncState) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	for _, n := range sess.notes {
		sess.syncStates[n.ID] = state
	}
}

func (sess *boardSession) indexOfLocked(noteID string) int {
	for i := range sess.notes {
		if sess.notes[i].ID == noteID {
			return i
		}
	}
	return -1
}

// nextNoteIDLocked assigns a time-based id, nudged forward when two notes
// land on the same millisecond so ids stay unique within the board.
func (sess *boardSession) nextNoteIDLocked() string {
	id := time.Now().UnixMilli()
	if id <= sess.lastNoteID {
		id = sess.lastNoteID + 1
	}
	sess.lastNoteID = id
	return strconv.FormatInt(id, 10)
}

func (sess *boardSession) viewLocked() *ports.BoardView {
	view := &ports.BoardView{
		TodoID: sess.todoID,
		Notes:  make([]ports.NoteView, 0, len(sess.notes)),
	}
	for _, n := range sess.notes {
		state, ok := sess.syncStates[n.ID]
		if !ok {
			state = ports.NoteSyncClean
		}
		view.Notes = append(view.Notes, ports.NoteView{NoteItem: n, SyncState: state})
	}
	return view
}
