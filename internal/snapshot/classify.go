package snapshot

import (
	"os"
	"path/filepath"
)

// DefaultDirMarkers are child names whose presence marks a development
// workspace, whatever their type.
var DefaultDirMarkers = []string{
	".git", ".hg", ".svn", ".idea", ".vscode", ".venv", "node_modules",
}

// DefaultFileMarkers are child names that mark a development workspace when
// they exist as non-directories.
var DefaultFileMarkers = []string{
	"package.json", "package-lock.json", "pnpm-lock.yaml", "yarn.lock",
	"pyproject.toml", "poetry.lock", "Pipfile", "Pipfile.lock",
	"requirements.txt", "setup.py", "setup.cfg", "Cargo.toml", "go.mod", "Gemfile",
}

// Classifier decides whether a directory is a development workspace by
// probing its immediate children for marker names.
type Classifier struct {
	DirMarkers  []string
	FileMarkers []string
}

// DefaultClassifier uses the built-in marker sets.
func DefaultClassifier() Classifier {
	return Classifier{DirMarkers: DefaultDirMarkers, FileMarkers: DefaultFileMarkers}
}

// IsDevelopmentWorkspace probes dir. Probe errors count as "marker absent".
func (c Classifier) IsDevelopmentWorkspace(dir string) bool {
	for _, m := range c.DirMarkers {
		if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
			return true
		}
	}
	for _, m := range c.FileMarkers {
		info, err := os.Stat(filepath.Join(dir, m))
		if err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// HasMarker reports whether dir has the named child.
func HasMarker(dir, name string) bool {
	_, err := os.Lstat(filepath.Join(dir, name))
	return err == nil
}
