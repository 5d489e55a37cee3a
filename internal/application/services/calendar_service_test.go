package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daygrid/core/internal/domain/entities"
	"github.com/daygrid/core/internal/ports"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scheduledTodo(userID uuid.UUID, title, date string) *entities.Todo {
	return &entities.Todo{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         title,
		Status:        entities.TodoStatusPending,
		ScheduledDate: &date,
	}
}

func TestComputeRangeWeek(t *testing.T) {
	// 2024-03-15 is a Friday; its Sunday-start week is Mar 10 through Mar 16.
	r := ComputeRange(day(2024, time.March, 15), ports.CalendarModeWeek)
	assert.Equal(t, day(2024, time.March, 10), r.Start)
	assert.Equal(t, day(2024, time.March, 16), r.End)
}

func TestComputeRangeWeekAnchoredOnSunday(t *testing.T) {
	r := ComputeRange(day(2024, time.March, 10), ports.CalendarModeWeek)
	assert.Equal(t, day(2024, time.March, 10), r.Start)
	assert.Equal(t, day(2024, time.March, 16), r.End)
}

func TestComputeRangeMonth(t *testing.T) {
	// February 2024: the 1st is a Thursday, the 29th a Thursday. The grid
	// runs from the Sunday before the 1st through the Saturday after the 29th.
	r := ComputeRange(day(2024, time.February, 15), ports.CalendarModeMonth)
	assert.Equal(t, day(2024, time.January, 28), r.Start)
	assert.Equal(t, day(2024, time.March, 2), r.End)
}

func TestComputeRangeMonthEndingOnSunday(t *testing.T) {
	// March 2024 ends on a Sunday, so the grid needs a full trailing week
	// and runs through Saturday April 6.
	r := ComputeRange(day(2024, time.March, 15), ports.CalendarModeMonth)
	assert.Equal(t, day(2024, time.February, 25), r.Start)
	assert.Equal(t, day(2024, time.April, 6), r.End)
}

func TestComputeRangeMonthStartingOnSunday(t *testing.T) {
	// September 2024 begins on a Sunday, so the grid starts on the 1st.
	r := ComputeRange(day(2024, time.September, 10), ports.CalendarModeMonth)
	assert.Equal(t, day(2024, time.September, 1), r.Start)
	assert.Equal(t, day(2024, time.October, 5), r.End)
}

func TestComputeRangeMonthSpansWholeWeeks(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		r := ComputeRange(day(2024, month, 15), ports.CalendarModeMonth)
		assert.Equal(t, time.Sunday, r.Start.Weekday(), "month %s", month)
		assert.Equal(t, time.Saturday, r.End.Weekday(), "month %s", month)
		assert.True(t, !r.Start.After(day(2024, month, 1)), "month %s", month)
	}
}

func TestNavigateWeek(t *testing.T) {
	svc := NewCalendarService(newFakeTodoRepo(), testLogger(t))

	next := svc.Navigate(1, ports.CalendarModeWeek, day(2024, time.March, 15))
	assert.Equal(t, day(2024, time.March, 22), next)

	prev := svc.Navigate(-1, ports.CalendarModeWeek, day(2024, time.March, 15))
	assert.Equal(t, day(2024, time.March, 8), prev)
}

func TestNavigateMonthClampsDayOfMonth(t *testing.T) {
	svc := NewCalendarService(newFakeTodoRepo(), testLogger(t))

	// March 31 backwards lands on the last day of February, not March 3.
	prev := svc.Navigate(-1, ports.CalendarModeMonth, day(2024, time.March, 31))
	assert.Equal(t, day(2024, time.February, 29), prev)

	next := svc.Navigate(1, ports.CalendarModeMonth, day(2024, time.January, 31))
	assert.Equal(t, day(2024, time.February, 29), next)

	plain := svc.Navigate(1, ports.CalendarModeMonth, day(2024, time.March, 15))
	assert.Equal(t, day(2024, time.April, 15), plain)
}

func TestBucketByDay(t *testing.T) {
	id1, id2, id3 := uuid.New(), uuid.New(), uuid.New()
	entries := []ports.CalendarEntry{
		{ID: id1, Date: "2024-03-11", Title: "first"},
		{ID: id2, Date: "2024-03-12", Title: "second"},
		{ID: id3, Date: "2024-03-11", Title: "third"},
	}
	days := []string{"2024-03-10", "2024-03-11", "2024-03-12"}

	buckets := BucketByDay(entries, days)
	require.Len(t, buckets, 3)

	assert.Empty(t, buckets[0].Entries)

	require.Len(t, buckets[1].Entries, 2)
	assert.Equal(t, id1, buckets[1].Entries[0].ID)
	assert.Equal(t, id3, buckets[1].Entries[1].ID)

	require.Len(t, buckets[2].Entries, 1)
	assert.Equal(t, id2, buckets[2].Entries[0].ID)

	// Every entry with a visible date lands in exactly one bucket.
	total := 0
	for _, b := range buckets {
		total += len(b.Entries)
	}
	assert.Equal(t, len(entries), total)
}

func TestRefreshBucketsScheduledTodos(t *testing.T) {
	repo := newFakeTodoRepo()
	userID := uuid.New()
	repo.todos = []*entities.Todo{
		scheduledTodo(userID, "inside", "2024-03-12"),
		scheduledTodo(userID, "outside", "2024-06-01"),
	}
	svc := NewCalendarService(repo, testLogger(t))

	view, err := svc.Refresh(context.Background(), userID, day(2024, time.March, 15), ports.CalendarModeWeek)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-15", view.Anchor)
	assert.Equal(t, ports.CalendarModeWeek, view.Mode)
	assert.False(t, view.Stale)
	require.Len(t, view.Days, 7)
	assert.Equal(t, "2024-03-10", view.Days[0].Date)
	assert.Equal(t, "2024-03-16", view.Days[6].Date)

	require.Len(t, view.Days[2].Entries, 1)
	assert.Equal(t, "inside", view.Days[2].Entries[0].Title)

	for i, bucket := range view.Days {
		if i != 2 {
			assert.Empty(t, bucket.Entries)
		}
	}
}

func TestRefreshFailureKeepsPreviousView(t *testing.T) {
	repo := newFakeTodoRepo()
	userID := uuid.New()
	repo.todos = []*entities.Todo{scheduledTodo(userID, "keep me", "2024-03-12")}
	svc := NewCalendarService(repo, testLogger(t))

	good, err := svc.Refresh(context.Background(), userID, day(2024, time.March, 15), ports.CalendarModeWeek)
	require.NoError(t, err)
	require.False(t, good.Stale)

	repo.mu.Lock()
	repo.listErr = errors.New("connection reset")
	repo.mu.Unlock()

	stale, err := svc.Refresh(context.Background(), userID, day(2024, time.March, 22), ports.CalendarModeWeek)
	require.NoError(t, err)

	assert.True(t, stale.Stale)
	assert.Equal(t, good.Days, stale.Days)
	assert.Equal(t, good.Anchor, stale.Anchor)
}

func TestRefreshFailureWithoutHistoryReturnsEmptyStaleView(t *testing.T) {
	repo := newFakeTodoRepo()
	repo.listErr = errors.New("connection reset")
	svc := NewCalendarService(repo, testLogger(t))

	view, err := svc.Refresh(context.Background(), uuid.New(), day(2024, time.March, 15), ports.CalendarModeWeek)
	require.NoError(t, err)

	assert.True(t, view.Stale)
	require.Len(t, view.Days, 7)
	for _, bucket := range view.Days {
		assert.Empty(t, bucket.Entries)
	}
}

func TestRefreshIsolatesUsers(t *testing.T) {
	repo := newFakeTodoRepo()
	alice, bob := uuid.New(), uuid.New()
	repo.todos = []*entities.Todo{scheduledTodo(alice, "alice's", "2024-03-12")}
	svc := NewCalendarService(repo, testLogger(t))

	view, err := svc.Refresh(context.Background(), bob, day(2024, time.March, 15), ports.CalendarModeWeek)
	require.NoError(t, err)

	for _, bucket := range view.Days {
		assert.Empty(t, bucket.Entries)
	}
}
