package skill

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Store holds skill source units as .go files under a single directory.
// It is the rewritable source location the repair path writes through.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore roots a store at dir on the given filesystem.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Path returns the source file location for a skill name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".go")
}

// Read returns the current source text for a skill.
func (s *Store) Read(name string) (string, error) {
	data, err := afero.ReadFile(s.fs, s.Path(name))
	if err != nil {
		return "", fmt.Errorf("skill: read %s: %w", name, err)
	}
	return string(data), nil
}

// Write replaces the source text for a skill, creating the directory and
// file as needed.
func (s *Store) Write(name, source string) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("skill: ensure dir: %w", err)
	}
	if !strings.HasSuffix(source, "\n") {
		source += "\n"
	}
	if err := afero.WriteFile(s.fs, s.Path(name), []byte(source), 0o644); err != nil {
		return fmt.Errorf("skill: write %s: %w", name, err)
	}
	return nil
}

// Exists reports whether a source unit is present for the skill name.
func (s *Store) Exists(name string) bool {
	ok, err := afero.Exists(s.fs, s.Path(name))
	return err == nil && ok
}
