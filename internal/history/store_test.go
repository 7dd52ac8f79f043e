package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eisendo/internal/model"
	"eisendo/internal/recurrence"
	"eisendo/internal/task"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "history.db"), BusyTimeoutMS: 1000}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func completed(id, title string, q model.Quadrant, rec recurrence.Spec) task.CompletionResult {
	at := time.Now()
	return task.CompletionResult{
		Completed: model.Task{
			ID:          model.TaskID(id),
			Title:       title,
			Quadrant:    q,
			Done:        true,
			Recurrence:  rec,
			CompletedAt: &at,
		},
	}
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordCompletion(ctx, "alice", completed("task_1", "Ship report", model.QuadrantDo, recurrence.Spec{})))
	require.NoError(t, s.RecordCompletion(ctx, "alice", completed("task_2", "Water plants", model.QuadrantSchedule, recurrence.Legacy(recurrence.PatternWeekly))))
	require.NoError(t, s.RecordCompletion(ctx, "bob", completed("task_3", "Other user", model.QuadrantDrop, recurrence.Spec{})))

	entries, err := s.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "task_2", entries[0].TaskID)
	assert.True(t, entries[0].Recurring)
	assert.False(t, entries[1].Recurring)
}

func TestRecordKeepsSuccessorID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res := completed("task_1", "Weekly review", model.QuadrantSchedule, recurrence.Legacy(recurrence.PatternWeekly))
	res.Successor = &model.Task{ID: "task_next"}
	require.NoError(t, s.RecordCompletion(ctx, "alice", res))

	entries, err := s.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "task_next", entries[0].Successor)
}

func TestStatsSince(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordCompletion(ctx, "alice", completed("task_1", "a", model.QuadrantDo, recurrence.Spec{})))
	require.NoError(t, s.RecordCompletion(ctx, "alice", completed("task_2", "b", model.QuadrantDo, recurrence.Legacy(recurrence.PatternDaily))))
	require.NoError(t, s.RecordCompletion(ctx, "alice", completed("task_3", "c", model.QuadrantDelegate, recurrence.Spec{})))

	stats, err := s.StatsSince(ctx, "alice", time.Now().AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByQuadrant[string(model.QuadrantDo)])
	assert.Equal(t, 1, stats.ByQuadrant[string(model.QuadrantDelegate)])
	assert.Equal(t, 1, stats.Recurring)

	empty, err := s.StatsSince(ctx, "alice", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
}

func TestNilStoreIsDisabled(t *testing.T) {
	var s *Store
	err := s.RecordCompletion(context.Background(), "alice", task.CompletionResult{})
	assert.ErrorIs(t, err, ErrDisabled)
}
