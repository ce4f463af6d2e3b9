package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestWatcher_Reload(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "dynamic:\n  pagination:\n    default_per_page: 5\n    max_per_page: 10\n")
	runtime := NewRuntime(Defaults().Dynamic)
	w, err := NewWatcher(path, runtime, zap.NewNop())
	require.NoError(t, err)
	defer w.watcher.Close()

	var seen []Dynamic
	w.OnChange(func(d Dynamic) { seen = append(seen, d) })

	// Act
	err = w.Reload()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, Pagination{DefaultPerPage: 5, MaxPerPage: 10}, runtime.Load().Pagination)
	assert.Equal(t, Defaults().Dynamic.Roles, runtime.Load().Roles)
	require.Len(t, seen, 1)
}

func TestWatcher_ReloadKeepsCurrentOnInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "dynamic:\n  pagination:\n    default_per_page: 50\n    max_per_page: 10\n")
	runtime := NewRuntime(Defaults().Dynamic)
	w, err := NewWatcher(path, runtime, zap.NewNop())
	require.NoError(t, err)
	defer w.watcher.Close()

	assert.Error(t, w.Reload())
	assert.Equal(t, Defaults().Dynamic.Pagination, runtime.Load().Pagination)

	writeFile(t, path, "dynamic: [")
	assert.Error(t, w.Reload())
}

func TestWatcher_PicksUpFileChanges(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "dynamic: {}\n")
	runtime := NewRuntime(Defaults().Dynamic)
	w, err := NewWatcher(path, runtime, zap.NewNop())
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond
	w.Start()
	defer w.Stop()

	// Act
	writeFile(t, path, "dynamic:\n  pagination:\n    default_per_page: 3\n    max_per_page: 30\n")

	// Assert
	assert.Eventually(t, func() bool {
		return runtime.Load().Pagination.MaxPerPage == 30
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_ReloadMergesPartialPagination(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "dynamic:\n  pagination:\n    max_per_page: 50\n")
	runtime := NewRuntime(Defaults().Dynamic)
	w, err := NewWatcher(path, runtime, zap.NewNop())
	require.NoError(t, err)
	defer w.watcher.Close()

	// Act
	err = w.Reload()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, Pagination{DefaultPerPage: 20, MaxPerPage: 50}, runtime.Load().Pagination)
}

func TestWatcher_ReloadKeepsEnvironmentPrecedence(t *testing.T) {
	// Arrange
	t.Setenv("MAX_PER_PAGE", "40")
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "dynamic:\n  pagination:\n    default_per_page: 5\n    max_per_page: 10\n")
	runtime := NewRuntime(Dynamic{Pagination: Pagination{DefaultPerPage: 20, MaxPerPage: 40}})
	w, err := NewWatcher(path, runtime, zap.NewNop())
	require.NoError(t, err)
	defer w.watcher.Close()

	// Act
	err = w.Reload()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, Pagination{DefaultPerPage: 5, MaxPerPage: 40}, runtime.Load().Pagination)
}
