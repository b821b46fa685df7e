package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/EdwardDiehl/file-indexer/internal/tokenizer"
)

// LoadFile builds a Config from a KDL document on disk, an alternative to
// the Builder for callers who want file-based configuration. The expected
// shape:
//
//	roots {
//	    root "/srv/data"
//	    root "/srv/more"
//	}
//	include "*.txt"
//	watch_debounce_ms 75
//	bus_buffer_size 256
//	stemming #true
//
// Fields absent from the file keep the Builder's defaults.
func LoadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading kdl config %s: %w", path, err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("parsing kdl config %s: %w", path, err)
	}

	b := NewBuilder()
	var includeGlobs []string

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "roots":
			for _, cn := range n.Children {
				if nodeName(cn) == "root" {
					if s, ok := firstStringArg(cn); ok {
						b.WithRoots(s)
					}
				}
			}
		case "include":
			if s, ok := firstStringArg(n); ok {
				includeGlobs = append(includeGlobs, s)
			}
		case "watch_debounce_ms":
			if v, ok := firstIntArg(n); ok {
				b.WithWatchDebounce(time.Duration(v) * time.Millisecond)
			}
		case "bus_buffer_size":
			if v, ok := firstIntArg(n); ok {
				b.WithBusBufferSize(v)
			}
		case "stemming":
			if v, ok := firstBoolArg(n); ok && v {
				b.WithTokenizer(stemmingTokenizer())
			}
		}
	}

	if len(includeGlobs) > 0 {
		b.WithFileFilter(GlobFileFilter(includeGlobs))
	}

	return Build(b)
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func stemmingTokenizer() tokenizer.Tokenizer {
	return tokenizer.NewStemming()
}

// GlobFileFilter builds a FileFilter that accepts a path matching any of
// the given doublestar glob patterns, tried against both the full path and
// its base name.
func GlobFileFilter(patterns []string) FileFilter {
	pats := append([]string(nil), patterns...)
	return func(path string) bool {
		for _, p := range pats {
			if matched, err := doublestar.Match(p, path); err == nil && matched {
				return true
			}
			if matched, err := doublestar.Match(p, baseName(path)); err == nil && matched {
				return true
			}
		}
		return false
	}
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
