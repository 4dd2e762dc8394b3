package resources

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopLoader() Loader {
	return LoaderFunc(func(context.Context, string, string) error { return nil })
}

func TestNewManagerRequiresLoader(t *testing.T) {
	_, err := NewManager(4, nil)
	assert.ErrorIs(t, err, ErrLoaderNil)
}

func TestTouchKeepsMostRecent(t *testing.T) {
	m, err := NewManager(3, noopLoader())
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c", "a", "d"} {
		require.NoError(t, m.Touch("lab", id))
	}

	// "b" was least recently used once "d" arrived
	assert.Equal(t, []string{"d", "a", "c"}, m.Recent("lab"))
	assert.Nil(t, m.Recent("unknown"))
}

func TestPreloadAndEvict(t *testing.T) {
	m, err := NewManager(0, noopLoader())
	require.NoError(t, err)
	require.NoError(t, m.Touch("booth", "img-1"))
	require.NoError(t, m.Touch("booth", "img-2"))

	ids, err := m.PreloadRecentResources(context.Background(), "booth")
	require.NoError(t, err)
	assert.Equal(t, []string{"img-2", "img-1"}, ids)
	assert.Equal(t, []string{"img-1", "img-2"}, m.Loaded("booth"))

	m.EvictModuleResources("booth")
	assert.Empty(t, m.Loaded("booth"))
	assert.Len(t, m.Recent("booth"), 2, "eviction keeps the recency list")
}

func TestPreloadStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	m, err := NewManager(4, LoaderFunc(func(_ context.Context, _, id string) error {
		if id == "bad" {
			return boom
		}
		return nil
	}))
	require.NoError(t, err)
	require.NoError(t, m.Touch("lab", "ok-old"))
	require.NoError(t, m.Touch("lab", "bad"))
	require.NoError(t, m.Touch("lab", "ok-new"))

	ids, err := m.PreloadRecentResources(context.Background(), "lab")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "module lab: resource bad")
	assert.Equal(t, []string{"ok-new"}, ids)
	assert.Equal(t, []string{"ok-new"}, m.Loaded("lab"))
}

func TestPreloadHonoursContext(t *testing.T) {
	m, err := NewManager(4, noopLoader())
	require.NoError(t, err)
	require.NoError(t, m.Touch("lab", "x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.PreloadRecentResources(ctx, "lab")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources.json")
	m, err := NewManager(4, noopLoader())
	require.NoError(t, err)

	require.NoError(t, m.SaveManifest(path))
	assert.NoFileExists(t, path, "nothing touched yet")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, m.touchAt("lab", "a", base))
	require.NoError(t, m.touchAt("lab", "b", base.Add(time.Minute)))
	require.NoError(t, m.SaveManifest(path))

	manifest, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, manifest["lab"], 2)
	assert.Equal(t, "a", manifest["lab"][0].ID)
	assert.True(t, manifest["lab"][1].LastUsed.Equal(base.Add(time.Minute)))

	restored, err := NewManager(4, noopLoader())
	require.NoError(t, err)
	require.NoError(t, restored.Restore(manifest))
	assert.Equal(t, []string{"b", "a"}, restored.Recent("lab"))

	empty, err := LoadManifest(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDirLoader(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lab"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(root, "lab", "notes.md"), []byte("# hi"), 0o600))

	loader := DirLoader{Root: root}
	ctx := context.Background()
	assert.NoError(t, loader.Load(ctx, "lab", "notes.md"))
	assert.ErrorIs(t, loader.Load(ctx, "lab", "missing.md"), ErrResourceUnavailable)
	assert.ErrorIs(t, loader.Load(ctx, "..", "notes.md"), ErrResourceUnavailable)
	assert.ErrorIs(t, loader.Load(ctx, "lab", "../lab/notes.md"), ErrResourceUnavailable)
}
