package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daygrid/core/internal/domain/entities"
	"github.com/daygrid/core/internal/infrastructure/logger"
	"github.com/daygrid/core/internal/ports"
)

// calendarState is the per-user view state: the last successfully bucketed
// window, kept so a failed refresh degrades to stale-but-consistent instead
// of a cleared calendar.
type calendarState struct {
	mu         sync.Mutex
	generation uint64
	lastGood   *ports.CalendarView
}

// CalendarService computes visible date windows and buckets scheduled todos
// by day. Every anchor or mode change performs a full re-fetch; there is no
// incremental cache.
type CalendarService struct {
	todoRepo ports.TodoRepository
	logger   *logger.Logger

	mu     sync.Mutex
	states map[uuid.UUID]*calendarState
}

// NewCalendarService creates a new calendar service
func NewCalendarService(todoRepo ports.TodoRepository, logger *logger.Logger) *CalendarService {
	return &CalendarService{
		todoRepo: todoRepo,
		logger:   logger,
		states:   make(map[uuid.UUID]*calendarState),
	}
}

// ComputeRange returns the inclusive [start, end] day bounds visible for an
// anchor date. Month mode spans the Sunday-start calendar grid: from the
// first day of the week containing the 1st through the last day of the week
// containing the month's final day. Week mode is the Sunday-to-Saturday
// week containing the anchor.
func ComputeRange(anchor time.Time, mode ports.CalendarMode) ports.DateRange {
	day := truncateToDay(anchor)

	if mode == ports.CalendarModeWeek {
		start := startOfWeek(day)
		return ports.DateRange{Start: start, End: start.AddDate(0, 0, 6)}
	}

	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return ports.DateRange{
		Start: startOfWeek(first),
		End:   startOfWeek(last).AddDate(0, 0, 6),
	}
}

// Navigate shifts the anchor by direction units of mode (+1 or -1). Month
// steps clamp the day-of-month so March 31 steps back to February 29, not
// March 3. Navigation never fetches; the caller refreshes on the new anchor.
func (s *CalendarService) Navigate(direction int, mode ports.CalendarMode, anchor time.Time) time.Time {
	day := truncateToDay(anchor)

	if mode == ports.CalendarModeWeek {
		return day.AddDate(0, 0, 7*direction)
	}

	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	target := first.AddDate(0, direction, 0)
	dom := day.Day()
	if max := daysInMonth(target); dom > max {
		dom = max
	}
	return time.Date(target.Year(), target.Month(), dom, 0, 0, 0, 0, time.UTC)
}

// Refresh recomputes the window, fetches the user's scheduled todos in it
// with one range query and buckets them by exact scheduled date. A fetch
// failure returns the previous view marked stale rather than clearing it,
// and a response for a window the user has already navigated away from is
// dropped.
func (s *CalendarService) Refresh(ctx context.Context, userID uuid.UUID, anchor time.Time, mode ports.CalendarMode) (*ports.CalendarView, error) {
	state := s.state(userID)

	state.mu.Lock()
	state.generation++
	gen := state.generation
	state.mu.Unlock()

	r := ComputeRange(anchor, mode)
	days := daySequence(r)

	view := &ports.CalendarView{
		Anchor: truncateToDay(anchor).Format(entities.ScheduledDateLayout),
		Mode:   mode,
		Range:  r,
	}

	todos, err := s.todoRepo.ListScheduledInRange(ctx, userID,
		r.Start.Format(entities.ScheduledDateLayout),
		r.End.Format(entities.ScheduledDateLayout),
	)

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.generation != gen {
		// A newer refresh superseded this one while the query was in
		// flight; keep whatever that refresh produced.
		if state.lastGood != nil {
			return state.lastGood, nil
		}
		view.Days = emptyBuckets(days)
		view.Stale = true
		return view, nil
	}

	if err != nil {
		s.logger.Warn("Calendar fetch failed, keeping previous view", "error", err, "user_id", userID)
		if state.lastGood != nil {
			stale := *state.lastGood
			stale.Stale = true
			return &stale, nil
		}
		view.Days = emptyBuckets(days)
		view.Stale = true
		return view, nil
	}

	view.Days = BucketByDay(projectEntries(todos), days)
	state.lastGood = view
	return view, nil
}

// BucketByDay groups entries under each day by exact date-string equality,
// preserving the entries' original relative order within a bucket. Every
// entry whose date appears in days lands in exactly one bucket.
func BucketByDay(entries []ports.CalendarEntry, days []string) []ports.DayBucket {
	buckets := make([]ports.DayBucket, 0, len(days))
	for _, day := range days {
		bucket := ports.DayBucket{Date: day, Entries: []ports.CalendarEntry{}}
		for _, e := range entries {
			if e.Date == day {
				bucket.Entries = append(bucket.Entries, e)
			}
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}

func (s *CalendarService) state(userID uuid.UUID) *calendarState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[userID]
	if !ok {
		st = &calendarState{}
		s.states[userID] = st
	}
	return st
}

func projectEntries(todos []*entities.Todo) []ports.CalendarEntry {
	entries := make([]ports.CalendarEntry, 0, len(todos))
	for _, t := range todos {
		if t.ScheduledDate == nil {
			continue
		}
		entries = append(entries, ports.CalendarEntry{
			ID:     t.ID,
			Date:   *t.ScheduledDate,
			Title:  t.Title,
			Status: t.Status,
		})
	}
	return entries
}

func daySequence(r ports.DateRange) []string {
	var days []string
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(entities.ScheduledDateLayout))
	}
	return days
}

func emptyBuckets(days []string) []ports.DayBucket {
	buckets := make([]ports.DayBucket, 0, len(days))
	for _, day := range days {
		buckets = append(buckets, ports.DayBucket{Date: day, Entries: []ports.CalendarEntry{}})
	}
	return buckets
}

// startOfWeek returns the Sunday on or before d.
func startOfWeek(d time.Time) time.Time {
	return d.AddDate(0, 0, -int(d.Weekday()))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysInMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}
