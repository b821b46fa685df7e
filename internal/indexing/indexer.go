// Package indexing implements the per-file indexing pipeline and the
// initial directory scan that seeds the store before the watcher takes
// over.
package indexing

import (
	"context"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/EdwardDiehl/file-indexer/internal/config"
	"github.com/EdwardDiehl/file-indexer/internal/core"
	"github.com/EdwardDiehl/file-indexer/internal/ferrors"
	"github.com/EdwardDiehl/file-indexer/internal/logging"
	"github.com/EdwardDiehl/file-indexer/internal/tokenizer"
)

// Reporter observes per-file faults without being able to abort anything;
// it is purely informational.
type Reporter func(err *ferrors.PerFileFault)

// FileIndexer implements the read -> tokenize -> hash -> apply pipeline for
// a single file.
type FileIndexer struct {
	tokenizer tokenizer.Tokenizer
	filter    config.FileFilter
	store     *core.Store
	log       logging.Logger
	report    Reporter
}

// NewFileIndexer builds a FileIndexer bound to store.
func NewFileIndexer(tok tokenizer.Tokenizer, filter config.FileFilter, store *core.Store, log logging.Logger) *FileIndexer {
	return &FileIndexer{tokenizer: tok, filter: filter, store: store, log: log}
}

// SetReporter installs an optional hook invoked for every swallowed
// per-file fault.
func (fi *FileIndexer) SetReporter(r Reporter) { fi.report = r }

// IndexFile runs the pipeline for path: filter, stat, read, tokenize, hash,
// upsert. It returns the record it built, or nil if the file was skipped
// (filtered out, gone, not a regular file) or a recoverable fault
// occurred. Every fault is swallowed here; callers never see an error
// abort anything.
func (fi *FileIndexer) IndexFile(ctx context.Context, path string) *core.IndexedFile {
	if fi.filter != nil && !fi.filter(path) {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		fi.fault(path, "stat", err)
		return nil
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		fi.fault(path, "read", err)
		return nil
	}

	tokens := fi.tokenizer.Tokenize(string(content))
	hash := xxhash.Sum64(content)

	if prior := fi.store.Lookup(path); prior != nil && prior.ContentHash == hash {
		// P5: identical content, skip the token-diff walk entirely.
		return prior
	}

	rec := core.IndexedFile{
		Path:         path,
		LastModified: info.ModTime().UnixMilli(),
		Tokens:       tokens,
		ContentHash:  hash,
	}
	fi.store.Upsert(rec)
	if fi.log != nil {
		fi.log.Debugf("indexed %s (%d tokens)", path, len(tokens))
	}
	return &rec
}

func (fi *FileIndexer) fault(path, op string, err error) {
	f := ferrors.NewPerFileFault(path, op, err)
	if fi.log != nil {
		fi.log.Debugf("skipping %s: %v", path, f)
	}
	if fi.report != nil {
		fi.report(f)
	}
}
