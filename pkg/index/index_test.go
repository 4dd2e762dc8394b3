package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorIndexPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.json")

	idx, err := New(path)
	require.NoError(t, err)
	require.NoError(t, idx.Save())
	assert.NoFileExists(t, path)

	idx.SetList("Bugs", "list-1")
	idx.Set("task-1", Ref{ListID: "list-1", TaskID: "g-1"})
	idx.Set("task-2", Ref{ListID: "list-1", TaskID: "g-2"})
	idx.Remove("task-2")
	require.NoError(t, idx.Save())

	reloaded, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, "list-1", reloaded.List("Bugs"))
	ref, ok := reloaded.Get("task-1")
	require.True(t, ok)
	assert.Equal(t, "g-1", ref.TaskID)
	_, ok = reloaded.Get("task-2")
	assert.False(t, ok)
}

func TestMirrorIndexInMemory(t *testing.T) {
	idx, err := New("")
	require.NoError(t, err)
	idx.SetList("A", "l")
	assert.NoError(t, idx.Save())
	assert.Equal(t, "l", idx.List("A"))
}
