// Package config builds and validates the engine's immutable configuration:
// the set of root paths to index, the tokenizer to use, and the predicate
// that decides which files are eligible for indexing.
package config

import (
	"strings"
	"time"

	"github.com/EdwardDiehl/file-indexer/internal/logging"
	"github.com/EdwardDiehl/file-indexer/internal/tokenizer"
)

// FileFilter decides whether a path is eligible for indexing.
type FileFilter func(path string) bool

// DefaultFileFilter accepts any path ending in ".txt", matching the
// engine's documented default.
func DefaultFileFilter() FileFilter {
	return func(path string) bool {
		return strings.HasSuffix(path, ".txt")
	}
}

// Config is the engine's immutable, validated configuration. Build one with
// a Builder; there is no exported way to mutate a Config after Build.
type Config struct {
	roots         []string
	tokenizer     tokenizer.Tokenizer
	fileFilter    FileFilter
	busBufferSize int
	watchDebounce time.Duration
	logger        logging.Logger
}

func (c *Config) Roots() []string              { return append([]string(nil), c.roots...) }
func (c *Config) Tokenizer() tokenizer.Tokenizer { return c.tokenizer }
func (c *Config) FileFilter() FileFilter        { return c.fileFilter }
func (c *Config) BusBufferSize() int            { return c.busBufferSize }
func (c *Config) WatchDebounce() time.Duration  { return c.watchDebounce }
func (c *Config) Logger() logging.Logger        { return c.logger }

// Builder accumulates configuration before Build validates it and produces
// an immutable Config.
type Builder struct {
	roots         []string
	tokenizer     tokenizer.Tokenizer
	fileFilter    FileFilter
	busBufferSize int
	watchDebounce time.Duration
	logger        logging.Logger
}

// NewBuilder starts a Builder with the documented defaults: the simple
// tokenizer, the "*.txt" file filter, a 256-event subscriber buffer, and a
// 75ms watch debounce.
func NewBuilder() *Builder {
	return &Builder{
		tokenizer:     tokenizer.Default(),
		fileFilter:    DefaultFileFilter(),
		busBufferSize: 256,
		watchDebounce: 75 * time.Millisecond,
		logger:        logging.Nop(),
	}
}

// WithRoots appends one or more root paths (files or directories) to index.
func (b *Builder) WithRoots(roots ...string) *Builder {
	b.roots = append(b.roots, roots...)
	return b
}

// WithTokenizer overrides the default tokenizer.
func (b *Builder) WithTokenizer(t tokenizer.Tokenizer) *Builder {
	if t != nil {
		b.tokenizer = t
	}
	return b
}

// WithFileFilter overrides the default "*.txt" file filter.
func (b *Builder) WithFileFilter(f FileFilter) *Builder {
	if f != nil {
		b.fileFilter = f
	}
	return b
}

// WithBusBufferSize overrides the per-subscriber event bus buffer capacity.
// Values below 1 are ignored.
func (b *Builder) WithBusBufferSize(n int) *Builder {
	if n > 0 {
		b.busBufferSize = n
	}
	return b
}

// WithWatchDebounce overrides how long the watcher coalesces rapid-fire
// events for the same path before applying them. A negative value is kept
// as given rather than silently ignored, so Build surfaces it as a
// ConfigurationFault instead of falling back to the default.
func (b *Builder) WithWatchDebounce(d time.Duration) *Builder {
	b.watchDebounce = d
	return b
}

// WithLogger overrides the engine's logger. The default is a no-op logger.
func (b *Builder) WithLogger(l logging.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// Build validates the accumulated settings and returns an immutable Config.
// An empty roots list is permitted: the resulting engine indexes nothing
// and emits nothing, per the engine's documented configuration-fault
// policy.
func Build(b *Builder) (*Config, error) {
	v := NewValidator()
	cfg := &Config{
		roots:         append([]string(nil), b.roots...),
		tokenizer:     b.tokenizer,
		fileFilter:    b.fileFilter,
		busBufferSize: b.busBufferSize,
		watchDebounce: b.watchDebounce,
		logger:        b.logger,
	}
	if err := v.ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
