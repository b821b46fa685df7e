package indexing

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/EdwardDiehl/file-indexer/internal/logging"
	"github.com/EdwardDiehl/file-indexer/internal/metrics"
)

// defaultScanWorkers bounds the scan's I/O-pool concurrency when the caller
// does not override it.
const defaultScanWorkers = 8

// Scanner performs the one-shot initial traversal of the configured root
// paths, applying FileIndexer to every eligible regular file it finds.
type Scanner struct {
	indexer *FileIndexer
	workers int
	log     logging.Logger
	metrics *metrics.Metrics
}

// NewScanner builds a Scanner that drives indexer over up to workers files
// concurrently. workers <= 0 falls back to defaultScanWorkers.
func NewScanner(indexer *FileIndexer, workers int, log logging.Logger, m *metrics.Metrics) *Scanner {
	if workers <= 0 {
		workers = defaultScanWorkers
	}
	return &Scanner{indexer: indexer, workers: workers, log: log, metrics: m}
}

// Scan walks every root: a root that is a regular file is indexed directly,
// a root that is a directory is walked recursively. Non-existent or
// inaccessible roots are silently skipped. Discovered files are fanned out
// to a bounded worker pool; Scan blocks until every discovered file has
// been processed (or skipped).
func (s *Scanner) Scan(ctx context.Context, roots []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, root := range roots {
		root := canonicalize(root)
		info, err := os.Stat(root)
		if err != nil {
			if s.log != nil {
				s.log.Debugf("skipping missing root %s: %v", root, err)
			}
			continue
		}

		if !info.IsDir() {
			g.Go(func() error {
				s.indexOne(gctx, root)
				return nil
			})
			continue
		}

		walkErr := filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return nil // inaccessible entry, skip and keep walking
			}
			if fi.IsDir() {
				return nil
			}
			g.Go(func() error {
				s.indexOne(gctx, path)
				return nil
			})
			return nil
		})
		if walkErr != nil && s.log != nil {
			s.log.Debugf("walk error under %s: %v", root, walkErr)
		}
	}

	return g.Wait()
}

// canonicalize resolves root to an absolute, symlink-free path so scanned
// entries share identity with the paths the Watcher later publishes for the
// same root (spec §9 open question on path representation). Roots that
// cannot be resolved are returned unchanged; Scan's subsequent os.Stat will
// report them missing.
func canonicalize(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return root
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

func (s *Scanner) indexOne(ctx context.Context, path string) {
	if rec := s.indexer.IndexFile(ctx, path); rec != nil {
		if s.metrics != nil {
			s.metrics.IncFilesIndexed()
		}
	}
}
