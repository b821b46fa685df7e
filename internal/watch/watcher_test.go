package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdwardDiehl/file-indexer/internal/config"
	"github.com/EdwardDiehl/file-indexer/internal/core"
	"github.com/EdwardDiehl/file-indexer/internal/indexing"
	"github.com/EdwardDiehl/file-indexer/internal/logging"
	"github.com/EdwardDiehl/file-indexer/internal/tokenizer"
)

func newTestWatcher(t *testing.T, store *core.Store, bus *Bus) *Watcher {
	t.Helper()
	fi := indexing.NewFileIndexer(tokenizer.Default(), config.DefaultFileFilter(), store, logging.Nop())
	w, err := NewWatcher(fi, store, bus, config.DefaultFileFilter(), 20*time.Millisecond, logging.Nop(), nil)
	require.NoError(t, err)
	t.Cleanup(w.Stop)
	return w
}

func waitForEvent(t *testing.T, events <-chan core.FileEvent, path string, timeout time.Duration) core.FileEvent {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-events:
			if ev.Path == path {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for an event on %s", path)
		}
	}
}

func TestWatcherPublishesCreateAndIndexes(t *testing.T) {
	dir := t.TempDir()
	store := core.NewStore()
	bus := NewBus(nil)
	w := newTestWatcher(t, store, bus)
	w.Start([]string{dir})

	sub := bus.Subscribe(16)
	defer sub.Cancel()

	path := filepath.Join(dir, "new.txt")
	require.NoError(t, os.WriteFile(path, []byte("new content"), 0o644))

	ev := waitForEvent(t, sub.Events, path, 3*time.Second)
	assert.Contains(t, []core.EventKind{core.Created, core.Modified}, ev.Kind)

	require.Eventually(t, func() bool {
		return store.Lookup(path) != nil
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatcherRemovePublishesDeleteAndCleansIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	store := core.NewStore()
	fi := indexing.NewFileIndexer(tokenizer.Default(), config.DefaultFileFilter(), store, logging.Nop())
	fi.IndexFile(context.Background(), path)
	require.NotNil(t, store.Lookup(path))

	bus := NewBus(nil)
	w := newTestWatcher(t, store, bus)
	w.Start([]string{dir})

	sub := bus.Subscribe(16)
	defer sub.Cancel()

	require.NoError(t, os.Remove(path))

	ev := waitForEvent(t, sub.Events, path, 3*time.Second)
	assert.Equal(t, core.Deleted, ev.Kind)

	require.Eventually(t, func() bool {
		return store.Lookup(path) == nil
	}, 2*time.Second, 20*time.Millisecond)
	assert.Empty(t, store.Postings("hello"))
}

func TestWatcherIgnoresNonMatchingPaths(t *testing.T) {
	dir := t.TempDir()
	store := core.NewStore()
	bus := NewBus(nil)
	w := newTestWatcher(t, store, bus)
	w.Start([]string{dir})

	sub := bus.Subscribe(16)
	defer sub.Cancel()

	path := filepath.Join(dir, "ignored.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	select {
	case ev := <-sub.Events:
		t.Fatalf("did not expect an event for a filtered path, got %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
	assert.Nil(t, store.Lookup(path))
}
