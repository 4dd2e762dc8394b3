package store

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/workbench/pkg/model"
)

func task(id, bucket string) model.Task {
	return model.Task{
		ID:       id,
		Title:    "task " + id,
		Priority: model.PriorityMed,
		Assignee: model.DefaultAssignee,
		Col:      model.ColumnTodo,
		Bucket:   bucket,
		Tags:     []string{},
	}
}

func TestBulkUpsertSingleTransition(t *testing.T) {
	s := New()
	var calls int
	var seen State
	unsubscribe := s.Subscribe(func(st State) {
		calls++
		seen = st
	})
	defer unsubscribe()

	s.BulkUpsertTasks([]model.Task{task("a", "X"), task("b", "X"), task("c", "Y")})

	assert.Equal(t, 1, calls)
	require.Len(t, seen.Tasks, 3)
	assert.Equal(t, "a", seen.Tasks[0].ID)
	assert.Equal(t, "c", seen.Tasks[2].ID)
}

func TestBulkUpsertReplacesInPlace(t *testing.T) {
	s := New()
	s.BulkUpsertTasks([]model.Task{task("a", "X"), task("b", "X")})

	updated := task("a", "Z")
	updated.Title = "renamed"
	s.BulkUpsertTasks([]model.Task{updated, task("c", "X")})

	snap := s.Snapshot()
	require.Len(t, snap.Tasks, 3)
	assert.Equal(t, "renamed", snap.Tasks[0].Title)
	assert.Equal(t, "Z", snap.Tasks[0].Bucket)
	assert.Equal(t, []string{"a", "b", "c"}, []string{snap.Tasks[0].ID, snap.Tasks[1].ID, snap.Tasks[2].ID})
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := New()
	in := task("a", "X")
	in.Tags = []string{"t"}
	s.BulkUpsertTasks([]model.Task{in})
	in.Tags[0] = "changed"

	snap := s.Snapshot()
	snap.Tasks[0].Tags[0] = "also changed"
	snap.LoadedResourceIDs["r"] = struct{}{}

	fresh := s.Snapshot()
	assert.Equal(t, []string{"t"}, fresh.Tasks[0].Tags)
	assert.Empty(t, fresh.LoadedResourceIDs)
}

func TestUnsubscribe(t *testing.T) {
	s := New()
	calls := 0
	unsubscribe := s.Subscribe(func(State) { calls++ })
	s.Set(func(st *State) { st.ActiveModuleID = "a" })
	unsubscribe()
	s.Set(func(st *State) { st.ActiveModuleID = "b" })
	assert.Equal(t, 1, calls)
}

func TestMoveAndRemoveTask(t *testing.T) {
	s := New()
	s.BulkUpsertTasks([]model.Task{task("a", "X"), task("b", "X")})

	require.NoError(t, s.MoveTask("a", model.ColumnDoing))
	got, ok := s.Snapshot().Task("a")
	require.True(t, ok)
	assert.Equal(t, model.ColumnDoing, got.Col)

	assert.ErrorIs(t, s.MoveTask("a", "archived"), model.ErrInvalidColumn)
	assert.ErrorIs(t, s.MoveTask("missing", model.ColumnDone), ErrTaskNotFound)

	require.NoError(t, s.RemoveTask("a"))
	assert.ErrorIs(t, s.RemoveTask("a"), ErrTaskNotFound)
	snap := s.Snapshot()
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "b", snap.Tasks[0].ID)
}

func TestMissingTaskDoesNotNotify(t *testing.T) {
	s := New()
	s.BulkUpsertTasks([]model.Task{task("a", "X")})
	calls := 0
	s.Subscribe(func(State) { calls++ })

	assert.ErrorIs(t, s.MoveTask("missing", model.ColumnDone), ErrTaskNotFound)
	assert.ErrorIs(t, s.RemoveTask("missing"), ErrTaskNotFound)
	assert.Zero(t, calls)

	require.NoError(t, s.MoveTask("a", model.ColumnDone))
	assert.Equal(t, 1, calls)
}

func TestTasksByBucket(t *testing.T) {
	s := New()
	s.BulkUpsertTasks([]model.Task{task("a", "Y"), task("b", "X"), task("c", "Y")})

	buckets := s.TasksByBucket()
	require.Len(t, buckets, 2)
	assert.Equal(t, "Y", buckets[0].Name)
	assert.Len(t, buckets[0].Tasks, 2)
	assert.Equal(t, "X", buckets[1].Name)
}

func TestConcurrentTransitions(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.BulkUpsertTasks([]model.Task{task(string(rune('A'+i)), "X")})
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.Snapshot().Tasks, 50)
}

func TestSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s := New()
	require.NoError(t, s.Save(path), "clean store saves nothing")
	assert.NoFileExists(t, path)

	s.BulkUpsertTasks([]model.Task{task("a", "X")})
	s.Set(func(st *State) {
		st.ActiveModuleID = "planner"
		st.LoadedResourceIDs["r1"] = struct{}{}
	})
	require.NoError(t, s.Save(path))

	loaded := New()
	require.NoError(t, loaded.Load(path))
	snap := loaded.Snapshot()
	assert.Equal(t, "planner", snap.ActiveModuleID)
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "a", snap.Tasks[0].ID)
	assert.Empty(t, snap.LoadedResourceIDs, "loaded resources are runtime-only")
}

func TestLoadMissingSession(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(filepath.Join(t.TempDir(), "none.json")))
	assert.Empty(t, s.Snapshot().Tasks)
}
