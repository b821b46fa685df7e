package fileindexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdwardDiehl/file-indexer/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestEngine(t *testing.T, roots ...string) *Engine {
	t.Helper()
	cfg, err := config.Build(config.NewBuilder().WithRoots(roots...).WithWatchDebounce(10 * time.Millisecond))
	require.NoError(t, err)
	e, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

// Scenario: scan a directory tree, then search a single term.
func TestEngineScanThenSearch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "hello world kotlin programming")
	writeFile(t, filepath.Join(dir, "b.txt"), "world java programming language")
	writeFile(t, filepath.Join(dir, "e.json"), "json data structure")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, filepath.Join(dir, "sub", "c.txt"), "kotlin coroutines async programming")

	e := newTestEngine(t, dir)
	require.NoError(t, e.Start(context.Background()))

	results := e.Search("kotlin")
	var paths []string
	for _, r := range results {
		paths = append(paths, r.File)
	}
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "sub", "c.txt")}, paths)
}

// Scenario: ranked multi-term search orders by descending match count.
func TestEngineSearchAllRanksByMatchCount(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "hello world kotlin programming")
	writeFile(t, filepath.Join(dir, "b.txt"), "world java programming language")

	e := newTestEngine(t, dir)
	require.NoError(t, e.Start(context.Background()))

	results := e.SearchAll([]string{"world", "programming", "kotlin"})
	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join(dir, "a.txt"), results[0].File)
	assert.Len(t, results[0].Matches, 3)
	assert.Len(t, results[1].Matches, 2)
}

// Scenario: the configured file filter excludes non-matching files from
// every query.
func TestEngineFilterExcludesNonMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	writeFile(t, filepath.Join(dir, "e.json"), "alpha")

	e := newTestEngine(t, dir)
	require.NoError(t, e.Start(context.Background()))

	results := e.Search("alpha")
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(dir, "a.txt"), results[0].File)
}

// Scenario: a file created after Start is indexed and searchable.
func TestEngineLiveCreateIsIndexedAndSearchable(t *testing.T) {
	dir := t.TempDir()
	e := newTestEngine(t, dir)
	require.NoError(t, e.Start(context.Background()))

	path := filepath.Join(dir, "new.txt")
	writeFile(t, path, "freshly created content")

	require.Eventually(t, func() bool {
		return len(e.Search("freshly")) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

// Scenario: WatchForWord replays the current match set, then emits live as
// matching files are created.
func TestEngineWatchForWordReplayThenLive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "kotlin programming")

	e := newTestEngine(t, dir)
	require.NoError(t, e.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, sub := e.WatchForWord(ctx, "kotlin")
	defer sub.Cancel()

	select {
	case r := <-out:
		assert.Equal(t, filepath.Join(dir, "a.txt"), r.File)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for replay")
	}

	writeFile(t, filepath.Join(dir, "b.txt"), "more kotlin code")

	select {
	case r := <-out:
		assert.Equal(t, filepath.Join(dir, "b.txt"), r.File)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for live emission")
	}
}

// Scenario: deleting a file removes it from the index and future searches.
func TestEngineDeleteCleansIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "ephemeral content")

	e := newTestEngine(t, dir)
	require.NoError(t, e.Start(context.Background()))

	require.Len(t, e.Search("ephemeral"), 1)

	require.NoError(t, os.Remove(path))

	require.Eventually(t, func() bool {
		return len(e.Search("ephemeral")) == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestEngineStartTwiceErrors(t *testing.T) {
	dir := t.TempDir()
	e := newTestEngine(t, dir)
	require.NoError(t, e.Start(context.Background()))
	assert.Error(t, e.Start(context.Background()))
}

// Scenario: Close cancels in-flight subscribers instead of leaving them
// blocked forever (spec §4.8).
func TestEngineCloseClosesLiveSubscriptions(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Build(config.NewBuilder().WithRoots(dir).WithWatchDebounce(10 * time.Millisecond))
	require.NoError(t, err)
	e, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, e.Start(context.Background()))

	sub := e.WatchForChanges()
	e.Close()

	select {
	case _, ok := <-sub.Events:
		assert.False(t, ok, "expected the subscription channel to be closed")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscription channel to close")
	}
}

func TestEngineStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	e := newTestEngine(t, dir)
	require.NoError(t, e.Start(context.Background()))
	assert.NotPanics(t, func() {
		e.Stop()
		e.Stop()
	})
}
