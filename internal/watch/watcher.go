package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/EdwardDiehl/file-indexer/internal/config"
	"github.com/EdwardDiehl/file-indexer/internal/core"
	"github.com/EdwardDiehl/file-indexer/internal/ferrors"
	"github.com/EdwardDiehl/file-indexer/internal/indexing"
	"github.com/EdwardDiehl/file-indexer/internal/logging"
	"github.com/EdwardDiehl/file-indexer/internal/metrics"
)

// Reporter observes registration faults; purely informational.
type Reporter func(err *ferrors.RegistrationFault)

// Watcher registers configured directory roots with fsnotify, translates
// raw create/write/remove/rename notifications into semantic core.FileEvent
// values, applies the corresponding index side-effect, and publishes the
// event on the Bus — in that order, per root, on a single draining
// goroutine.
type Watcher struct {
	fsw     *fsnotify.Watcher
	indexer *indexing.FileIndexer
	store   *core.Store
	bus     *Bus
	filter  config.FileFilter
	log     logging.Logger
	metrics *metrics.Metrics
	report  Reporter

	debounce  time.Duration
	debouncer *debouncer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	roots map[string]string // canonical root dir -> canonical root dir (set)
}

// NewWatcher builds a Watcher. It does not start watching until Start is
// called.
func NewWatcher(indexer *indexing.FileIndexer, store *core.Store, bus *Bus, filter config.FileFilter, debounce time.Duration, log logging.Logger, m *metrics.Metrics) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fsw:      fsw,
		indexer:  indexer,
		store:    store,
		bus:      bus,
		filter:   filter,
		log:      log,
		metrics:  m,
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
		roots:    make(map[string]string),
	}
	w.debouncer = newDebouncer(debounce, w.apply)
	return w, nil
}

// SetReporter installs an optional hook invoked for every registration
// fault.
func (w *Watcher) SetReporter(r Reporter) { w.report = r }

// Start registers every directory root (file roots have nothing to watch)
// and launches the draining goroutine. A root that fails to register is
// reported and skipped; other roots remain valid.
func (w *Watcher) Start(roots []string) {
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		canonical := abs
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			canonical = resolved
		}

		info, err := os.Stat(canonical)
		if err != nil || !info.IsDir() {
			continue // not a directory (or gone): scanner already handled file roots
		}

		if err := w.fsw.Add(canonical); err != nil {
			w.fault(canonical, err)
			continue
		}
		w.roots[canonical] = canonical
	}

	w.wg.Add(2)
	go w.drain()
	go w.debouncer.run(w.ctx, &w.wg)
}

// Stop cancels the draining goroutine and closes the fsnotify handle. It is
// idempotent.
func (w *Watcher) Stop() {
	w.cancel()
	_ = w.fsw.Close()
	w.wg.Wait()
}

func (w *Watcher) fault(root string, err error) {
	f := ferrors.NewRegistrationFault(root, err)
	if w.log != nil {
		w.log.Errorf("watch registration failed: %v", f)
	}
	if w.report != nil {
		w.report(f)
	}
}

// drain blocks on fsnotify events/errors until the handle closes or the
// context is cancelled.
func (w *Watcher) drain() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.Errorf("fsnotify error: %v", err)
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	path := ev.Name
	if w.filter != nil && !w.filter(path) {
		return
	}

	var kind core.EventKind
	switch {
	case ev.Op&fsnotify.Create != 0:
		kind = core.Created
	case ev.Op&fsnotify.Write != 0:
		kind = core.Modified
	case ev.Op&fsnotify.Remove != 0:
		kind = core.Deleted
	case ev.Op&fsnotify.Rename != 0:
		kind = core.Deleted
	default:
		return
	}

	w.debouncer.add(path, kind)
}

// apply performs the index side-effect for a coalesced (path, kind) pair
// and then publishes the semantic event — in that order, as required.
func (w *Watcher) apply(path string, kind core.EventKind) {
	switch kind {
	case core.Created, core.Modified:
		w.indexer.IndexFile(w.ctx, path)
	case core.Deleted:
		w.store.Remove(path)
	}

	if w.metrics != nil {
		w.metrics.IncEventProcessed(kind.String())
	}
	w.bus.Publish(core.FileEvent{Kind: kind, Path: path})
}
