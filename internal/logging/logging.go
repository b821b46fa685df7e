// Package logging wraps zerolog behind a small interface so the engine can
// stay silent by default and only speak when an embedder opts in.
package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is the component-scoped logging surface the engine's internal
// packages depend on.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	// With returns a child logger tagged with an additional component name.
	With(component string) Logger
}

// Nop returns a Logger that discards everything. It is the Engine's
// default so embedding the library never produces output unless a caller
// supplies a real Logger.
func Nop() Logger {
	return zlog{logger: zerolog.New(io.Discard)}
}

// New returns a Logger writing structured JSON lines to w, tagged with the
// given top-level component name.
func New(w io.Writer, component string) Logger {
	return zlog{logger: zerolog.New(w).With().Timestamp().Str("component", component).Logger()}
}

type zlog struct {
	logger zerolog.Logger
}

func (z zlog) Debugf(format string, args ...interface{}) { z.logger.Debug().Msgf(format, args...) }
func (z zlog) Infof(format string, args ...interface{})  { z.logger.Info().Msgf(format, args...) }
func (z zlog) Errorf(format string, args ...interface{}) { z.logger.Error().Msgf(format, args...) }

func (z zlog) With(component string) Logger {
	return zlog{logger: z.logger.With().Str("sub", component).Logger()}
}
