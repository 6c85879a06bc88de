// Package walker is the filesystem collaborator the engine hands glob
// patterns to. Implementations only need to expand a glob into the
// existing paths that match it; everything stricter than a glob is the
// wildcard plan validator's job.
package walker

import (
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Walker expands a glob pattern into the existing paths matching it, in
// lexical order. Pattern syntax follows filepath.Match: '*' matches any
// run of non-separator characters, '[^.]' excludes a leading dot.
type Walker interface {
	Glob(pattern string) ([]string, error)
}

// osWalker globs against the real filesystem
type osWalker struct{}

// NewOS creates a Walker over the process's filesystem
func NewOS() Walker {
	return osWalker{}
}

func (osWalker) Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	return normalize(matches), nil
}

// aferoWalker globs against an afero filesystem, letting tests and
// embedded callers run discovery over an in-memory tree
type aferoWalker struct {
	fs afero.Fs
}

// NewAfero creates a Walker over the given afero filesystem
func NewAfero(fs afero.Fs) Walker {
	return &aferoWalker{fs: fs}
}

func (w *aferoWalker) Glob(pattern string) ([]string, error) {
	matches, err := afero.Glob(w.fs, pattern)
	if err != nil {
		return nil, err
	}
	return normalize(matches), nil
}

func normalize(matches []string) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.ToSlash(m))
	}
	sort.Strings(out)
	return out
}
