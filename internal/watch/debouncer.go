package watch

import (
	"context"
	"sync"
	"time"

	"github.com/EdwardDiehl/file-indexer/internal/core"
)

// debouncer coalesces rapid-fire fsnotify events for the same path within a
// short window. It guarantees at least one apply call per path per flush;
// duplicate Modified events for a single logical write are collapsed into
// one.
type debouncer struct {
	mu       sync.Mutex
	pending  map[string]core.EventKind
	order    []string
	window   time.Duration
	timer    *time.Timer
	apply    func(path string, kind core.EventKind)
	flushNow chan struct{}
}

func newDebouncer(window time.Duration, apply func(path string, kind core.EventKind)) *debouncer {
	return &debouncer{
		pending:  make(map[string]core.EventKind),
		window:   window,
		apply:    apply,
		flushNow: make(chan struct{}, 1),
	}
}

// add records the latest event kind seen for path and (re)arms the flush
// timer. If window is zero, it flushes immediately and synchronously.
func (d *debouncer) add(path string, kind core.EventKind) {
	if d.window <= 0 {
		d.apply(path, kind)
		return
	}

	d.mu.Lock()
	if _, exists := d.pending[path]; !exists {
		d.order = append(d.order, path)
	}
	d.pending[path] = kind
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.signalFlush)
	d.mu.Unlock()
}

func (d *debouncer) signalFlush() {
	select {
	case d.flushNow <- struct{}{}:
	default:
	}
}

// run drains flush signals until ctx is cancelled. Pending events at
// shutdown are intentionally dropped rather than flushed, mirroring the
// teacher's choice to avoid flushing into a store that may already be
// closing.
func (d *debouncer) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.flushNow:
			d.flush()
		}
	}
}

func (d *debouncer) flush() {
	d.mu.Lock()
	order := d.order
	pending := d.pending
	d.order = nil
	d.pending = make(map[string]core.EventKind)
	d.mu.Unlock()

	for _, path := range order {
		kind, ok := pending[path]
		if !ok {
			continue
		}
		d.apply(path, kind)
	}
}
