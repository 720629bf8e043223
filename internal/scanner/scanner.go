// Package scanner enumerates a migrations directory (spec.md §4.1).
package scanner

import (
	"log/slog"
	"os"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/schemagate/migrator/pkg/errutil"
)

// Entry is a single non-recursive directory entry handed to the SQL Task
// Parser and Native Migration Loader.
type Entry struct {
	Name string
	Path string
}

// Scanner lists a migrations directory, optionally filtering out entries
// that match one of its ignore globs before anything downstream sees them.
type Scanner struct {
	ignore []glob.Glob
	logger *slog.Logger
}

// New builds a Scanner. ignorePatterns are shell-style globs (e.g. "*.bak",
// "_*") matched against the base file name, not the full path.
func New(logger *slog.Logger, ignorePatterns ...string) (*Scanner, error) {
	compiled := make([]glob.Glob, 0, len(ignorePatterns))
	for _, p := range ignorePatterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, oops.Code(errutil.CodeConfigInvalid).With("pattern", p).Wrap(err)
		}
		compiled = append(compiled, g)
	}
	return &Scanner{ignore: compiled, logger: logger}, nil
}

// Scan lists dir non-recursively. A missing directory fails with
// CodeDirectoryMissing, propagated unchanged per spec.md §4.1.
func (s *Scanner) Scan(dir string) ([]Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oops.Code(errutil.CodeDirectoryMissing).With("path", dir).Wrap(err)
		}
		return nil, oops.Code(errutil.CodeDirectoryMissing).With("path", dir).Wrap(err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		name := item.Name()
		if s.isIgnored(name) {
			s.logf("ignoring migration directory entry matched by ignore pattern", "name", name)
			continue
		}
		entries = append(entries, Entry{Name: name, Path: dir + string(os.PathSeparator) + name})
	}
	return entries, nil
}

func (s *Scanner) isIgnored(name string) bool {
	for _, g := range s.ignore {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (s *Scanner) logf(msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Debug(msg, args...)
}
