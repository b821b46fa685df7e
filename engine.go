// Package fileindexer is a concurrent, watch-reactive inverted-index engine
// over a set of filesystem roots. Build a Config with config.Builder, then
// construct an Engine, Start it, and query or subscribe to it while it
// runs.
package fileindexer

import (
	"context"
	"fmt"
	"sync"

	"github.com/EdwardDiehl/file-indexer/internal/config"
	"github.com/EdwardDiehl/file-indexer/internal/core"
	"github.com/EdwardDiehl/file-indexer/internal/indexing"
	"github.com/EdwardDiehl/file-indexer/internal/metrics"
	"github.com/EdwardDiehl/file-indexer/internal/search"
	"github.com/EdwardDiehl/file-indexer/internal/watch"

	"github.com/prometheus/client_golang/prometheus"
)

// state is the Engine's lifecycle.
type state int

const (
	stateNew state = iota
	stateRunning
	stateStopped
)

func (s state) String() string {
	switch s {
	case stateNew:
		return "new"
	case stateRunning:
		return "running"
	case stateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Engine owns the index store, the initial scanner, the filesystem watcher,
// the event bus, and the search layer, wiring them together per the
// configured Config.
type Engine struct {
	cfg *config.Config

	store   *core.Store
	indexer *indexing.FileIndexer
	scanner *indexing.Scanner
	bus     *watch.Bus
	watcher *watch.Watcher
	search  *search.Engine
	metrics *metrics.Metrics

	mu    sync.Mutex
	state state
}

// New builds an Engine from cfg. The engine does not scan or watch anything
// until Start is called. reg may be nil, in which case metrics are never
// registered and every metrics call is a no-op.
func New(cfg *config.Config, reg prometheus.Registerer) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("fileindexer: nil config")
	}

	m := metrics.Register(reg)
	store := core.NewStore()
	log := cfg.Logger()

	indexer := indexing.NewFileIndexer(cfg.Tokenizer(), cfg.FileFilter(), store, log.With("indexing"))
	scanner := indexing.NewScanner(indexer, 0, log.With("scanner"), m)
	bus := watch.NewBus(m)

	watcher, err := watch.NewWatcher(indexer, store, bus, cfg.FileFilter(), cfg.WatchDebounce(), log.With("watch"), m)
	if err != nil {
		return nil, fmt.Errorf("fileindexer: creating watcher: %w", err)
	}

	engine := search.NewEngine(store, bus, cfg.Tokenizer(), cfg.BusBufferSize())

	return &Engine{
		cfg:     cfg,
		store:   store,
		indexer: indexer,
		scanner: scanner,
		bus:     bus,
		watcher: watcher,
		search:  engine,
		metrics: m,
	}, nil
}

// Start performs the initial scan of every configured root, then begins
// watching them for changes. It blocks until the scan completes; the watch
// runs in background goroutines after Start returns. Calling Start more
// than once is an error.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state != stateNew {
		e.mu.Unlock()
		return fmt.Errorf("fileindexer: Start called in state %v, want new", e.state)
	}
	e.state = stateRunning
	e.mu.Unlock()

	if err := e.scanner.Scan(ctx, e.cfg.Roots()); err != nil {
		return fmt.Errorf("fileindexer: initial scan: %w", err)
	}
	e.watcher.Start(e.cfg.Roots())
	return nil
}

// Stop tears down the watcher, releasing its goroutines and closing
// fsnotify. It does not clear the index: callers wanting a clean slate
// should call Close. Stop is idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.state != stateRunning {
		e.mu.Unlock()
		return
	}
	e.state = stateStopped
	e.mu.Unlock()

	e.watcher.Stop()
}

// Close stops the engine (if running), closes every live subscription so
// in-flight consumers of WatchForChanges/WatchForWord/WatchForWords observe
// cancellation rather than blocking forever, and clears the index store.
// After Close, the Engine must not be reused.
func (e *Engine) Close() {
	e.Stop()
	e.bus.Close()
	e.store.Clear()
}

// Search answers a single-term query against the current index state.
func (e *Engine) Search(term string) []core.SearchResult {
	return e.search.Search(term)
}

// SearchAll answers a ranked multi-term query against the current index
// state.
func (e *Engine) SearchAll(terms []string) []core.SearchResult {
	return e.search.SearchAll(terms)
}

// WatchForChanges subscribes to every semantic file event from this point
// forward. Cancel the returned Subscription when done.
func (e *Engine) WatchForChanges() *watch.Subscription {
	return e.search.WatchForChanges()
}

// WatchForWord immediately emits the current Search(term) results, then a
// result for every subsequent file whose content comes to contain term.
// The channel closes when ctx is cancelled.
func (e *Engine) WatchForWord(ctx context.Context, term string) (<-chan core.SearchResult, *watch.Subscription) {
	return e.search.WatchForWord(ctx, term)
}

// WatchForWords immediately emits SearchAll(terms) once, then the updated
// full result list every time a relevant change occurs. The channel closes
// when ctx is cancelled.
func (e *Engine) WatchForWords(ctx context.Context, terms []string) (<-chan []core.SearchResult, *watch.Subscription) {
	return e.search.WatchForWords(ctx, terms)
}
