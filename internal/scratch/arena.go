package scratch

import (
	"fmt"
	"os"
	"path/filepath"
)

// Arena is a per-invocation scratch directory. Every path handed out lives
// under it and is removed by Release.
type Arena struct {
	dir string
}

// New creates a fresh directory under base (os.TempDir when empty). The name
// carries tag so leaked arenas can be traced back to a run.
func New(base, tag string) (*Arena, error) {
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create scratch base %s: %w", base, err)
	}
	dir, err := os.MkdirTemp(base, "obfuscate-"+tag+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	return &Arena{dir: dir}, nil
}

func (a *Arena) Dir() string { return a.dir }

// Path returns a location for name inside the arena. Only the base name is
// used, so keys with directories cannot escape it.
func (a *Arena) Path(name string) string {
	return filepath.Join(a.dir, filepath.Base(name))
}

// Release removes the arena and everything in it. It is safe to call more
// than once.
func (a *Arena) Release() error {
	if a.dir == "" {
		return nil
	}
	err := os.RemoveAll(a.dir)
	if err == nil {
		a.dir = ""
	}
	return err
}
