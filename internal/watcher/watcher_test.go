package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T) (string, <-chan struct{}) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "schemas"), 0o750))

	w, err := New(Config{CatalogDir: dir, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	ch, err := w.Start()
	require.NoError(t, err)
	return dir, ch
}

func expectSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func expectQuiet(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal("unexpected change notification")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNotifiesOnDefinitionFileWrite(t *testing.T) {
	dir, ch := newTestWatcher(t)

	path := filepath.Join(dir, "schemas", "core.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schemas: []\n"), 0o600))

	expectSignal(t, ch)
}

func TestIgnoresNonYAMLFiles(t *testing.T) {
	dir, ch := newTestWatcher(t)

	path := filepath.Join(dir, "schemas", "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("scratch"), 0o600))

	expectQuiet(t, ch)
}

func TestDebouncesBursts(t *testing.T) {
	dir, ch := newTestWatcher(t)

	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, "schemas", "core.yaml")
		require.NoError(t, os.WriteFile(path, []byte("schemas: []\n"), 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	expectSignal(t, ch)
	// The burst collapses into one notification.
	expectQuiet(t, ch)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/tmp/catalog")
	assert.Equal(t, "/tmp/catalog", cfg.CatalogDir)
	assert.Equal(t, time.Second, cfg.DebounceDur)
}

func TestIsRelevantEvent(t *testing.T) {
	w := &Watcher{}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "yaml write", event: fsnotify.Event{Name: "catalog/schemas/core.yaml", Op: fsnotify.Write}, want: true},
		{name: "yml create", event: fsnotify.Event{Name: "catalog/docdefs/epic.yml", Op: fsnotify.Create}, want: true},
		{name: "yaml remove", event: fsnotify.Event{Name: "catalog/fragments/web.yaml", Op: fsnotify.Remove}, want: true},
		{name: "chmod only", event: fsnotify.Event{Name: "catalog/schemas/core.yaml", Op: fsnotify.Chmod}, want: false},
		{name: "editor swap file", event: fsnotify.Event{Name: "catalog/schemas/.core.yaml.swp", Op: fsnotify.Write}, want: false},
		{name: "text file", event: fsnotify.Event{Name: "catalog/README.md", Op: fsnotify.Write}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.isRelevantEvent(tt.event))
		})
	}
}
