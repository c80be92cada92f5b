package insight

import (
	"context"
	"path/filepath"
	"strings"
)

// Backend extracts an insight for one kind of file.
type Backend interface {
	Extract(ctx context.Context, path string) (*Insight, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, path string) (*Insight, error)

func (f BackendFunc) Extract(ctx context.Context, path string) (*Insight, error) {
	return f(ctx, path)
}

// Registry dispatches enrichment by kind. Kinds without a backend produce no
// insight.
type Registry struct {
	backends map[Kind]Backend
	// extensions overrides the built-in extension mapping.
	extensions map[string]Kind
}

func NewRegistry() *Registry {
	return &Registry{
		backends:   map[Kind]Backend{},
		extensions: map[string]Kind{},
	}
}

// Register binds a backend to a kind, replacing any previous binding.
func (r *Registry) Register(kind Kind, b Backend) {
	r.backends[kind] = b
}

// MapExtension routes files with ext (".foo") to kind.
func (r *Registry) MapExtension(ext string, kind Kind) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.extensions[ext] = kind
}

// KindOf returns the kind for path, honouring extension overrides.
func (r *Registry) KindOf(path string) Kind {
	if k, ok := r.extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return k
	}
	return KindOf(path)
}

// Enrich runs the backend registered for kind.
func (r *Registry) Enrich(ctx context.Context, path string, kind Kind) (*Insight, error) {
	b, ok := r.backends[kind]
	if !ok || kind == KindUnknown {
		return nil, nil
	}
	return b.Extract(ctx, path)
}
