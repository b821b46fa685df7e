// Package search implements the query and subscription layer: exact-token
// point and multi-term search over a core.Store, plus live subscriptions
// that re-query as the watcher mutates the store.
package search

import (
	"context"
	"sort"

	"github.com/EdwardDiehl/file-indexer/internal/core"
	"github.com/EdwardDiehl/file-indexer/internal/tokenizer"
	"github.com/EdwardDiehl/file-indexer/internal/watch"
)

// Engine answers point and multi-term queries against a store and builds
// reactive subscriptions on top of a bus.
type Engine struct {
	store     *core.Store
	bus       *watch.Bus
	tokenizer tokenizer.Tokenizer
	busBuffer int
}

// NewEngine builds a search Engine bound to store and bus.
func NewEngine(store *core.Store, bus *watch.Bus, tok tokenizer.Tokenizer, busBuffer int) *Engine {
	return &Engine{store: store, bus: bus, tokenizer: tok, busBuffer: busBuffer}
}

// Search answers a single-term query: the normalized term's postings,
// restricted to paths still present in the forward map.
func (e *Engine) Search(term string) []core.SearchResult {
	norm := e.tokenizer.Normalize(term)
	if norm == "" {
		return nil
	}
	var out []core.SearchResult
	for _, path := range e.store.Postings(norm) {
		if e.store.Lookup(path) == nil {
			continue
		}
		out = append(out, core.SearchResult{File: path, Matches: []string{norm}})
	}
	return out
}

// SearchAll answers a ranked multi-term query: one SearchResult per
// matching path, Matches holding every distinct normalized query term that
// path's token set contains, sorted by len(Matches) descending.
func (e *Engine) SearchAll(terms []string) []core.SearchResult {
	if len(terms) == 0 {
		return nil
	}

	normSet := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if n := e.tokenizer.Normalize(t); n != "" {
			normSet[n] = struct{}{}
		}
	}
	if len(normSet) == 0 {
		return nil
	}

	matched := make(map[string]map[string]struct{})
	for norm := range normSet {
		for _, path := range e.store.Postings(norm) {
			if e.store.Lookup(path) == nil {
				continue
			}
			set, ok := matched[path]
			if !ok {
				set = make(map[string]struct{})
				matched[path] = set
			}
			set[norm] = struct{}{}
		}
	}

	out := make([]core.SearchResult, 0, len(matched))
	for path, set := range matched {
		terms := make([]string, 0, len(set))
		for t := range set {
			terms = append(terms, t)
		}
		out = append(out, core.SearchResult{File: path, Matches: terms})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Matches) > len(out[j].Matches)
	})
	return out
}

// WatchForChanges returns a live subscription to every semantic file event,
// with no initial replay. Cancel the returned Subscription to stop
// receiving events and release its resources.
func (e *Engine) WatchForChanges() *watch.Subscription {
	return e.bus.Subscribe(e.busBuffer)
}

// WordResult is one emission from WatchForWord: a single-term search result
// produced either as part of the initial replay or in reaction to a
// subsequent event.
type WordResult = core.SearchResult

// WatchForWord immediately emits the current Search(term) results, then
// emits a WordResult for every later Created/Modified event whose resulting
// token set contains the normalized term. Deleted events never emit (the
// result would reference a file that no longer exists). The returned
// channel closes when ctx is cancelled or when the returned Subscription's
// event channel is closed (by its Cancel or by Bus.Close); call Cancel on
// the returned Subscription handle to stop early.
func (e *Engine) WatchForWord(ctx context.Context, term string) (<-chan WordResult, *watch.Subscription) {
	norm := e.tokenizer.Normalize(term)
	sub := e.bus.Subscribe(e.busBuffer)
	out := make(chan WordResult, e.busBuffer)

	go func() {
		defer close(out)

		for _, res := range e.Search(term) {
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.Events:
				if !ok {
					return
				}
				if ev.Kind == core.Deleted {
					continue
				}
				rec := e.store.Lookup(ev.Path)
				if rec == nil || norm == "" || !rec.HasToken(norm) {
					continue
				}
				select {
				case out <- WordResult{File: ev.Path, Matches: []string{norm}}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, sub
}

// WatchForWords immediately emits SearchAll(terms) once, then re-runs
// SearchAll and emits the full updated list every time an event's path is
// present in the forward map and its current token set intersects the
// normalized query terms (Created/Modified), or the event is a Deleted. The
// re-query observes the index state after the watcher has already applied
// the event's side-effect.
func (e *Engine) WatchForWords(ctx context.Context, terms []string) (<-chan []core.SearchResult, *watch.Subscription) {
	normSet := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if n := e.tokenizer.Normalize(t); n != "" {
			normSet[n] = struct{}{}
		}
	}

	sub := e.bus.Subscribe(e.busBuffer)
	out := make(chan []core.SearchResult, 4)

	emit := func(results []core.SearchResult) bool {
		select {
		case out <- results:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(out)

		if !emit(e.SearchAll(terms)) {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.Events:
				if !ok {
					return
				}
				if !e.relevant(ev, normSet) {
					continue
				}
				if !emit(e.SearchAll(terms)) {
					return
				}
			}
		}
	}()

	return out, sub
}

func (e *Engine) relevant(ev core.FileEvent, normSet map[string]struct{}) bool {
	if ev.Kind == core.Deleted {
		return true
	}
	rec := e.store.Lookup(ev.Path)
	if rec == nil {
		return false
	}
	for t := range normSet {
		if rec.HasToken(t) {
			return true
		}
	}
	return false
}
