// Package inspect lists a single directory level and reports volume usage.
package inspect

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flarebyte/nebula/internal/insight"
	"github.com/flarebyte/nebula/internal/snapshot"
)

const itemKeywordLimit = 5

// Item is one immediate child of the inspected directory.
type Item struct {
	Name          string    `json:"name"`
	Path          string    `json:"path"`
	IsDirectory   bool      `json:"is_directory"`
	SizeBytes     int64     `json:"size_bytes"`
	ModifiedAt    time.Time `json:"modified_at"`
	IsDevelopment bool      `json:"is_development,omitempty"`
	Keywords      []string  `json:"keywords,omitempty"`
}

// Listing is the inspected directory and its visible children.
type Listing struct {
	Directory string `json:"directory"`
	Entries   []Item `json:"entries"`
}

// Inspector lists directories. With an Enricher, files also get keywords.
type Inspector struct {
	Resolver   snapshot.Resolver
	Classifier snapshot.Classifier
	Enricher   snapshot.Enricher
	Logger     logrus.FieldLogger
}

// Directory resolves raw and returns its non-hidden children sorted by
// case-insensitive name.
func (in Inspector) Directory(ctx context.Context, raw string) (*Listing, error) {
	dir, err := in.Resolver.Resolve(raw)
	if err != nil {
		return nil, err
	}
	children, err := os.ReadDir(dir)
	if err != nil {
		return nil, &snapshot.Error{Kind: snapshot.ErrAccessDenied, Path: dir, Err: err}
	}
	sort.SliceStable(children, func(i, j int) bool {
		return strings.ToLower(children[i].Name()) < strings.ToLower(children[j].Name())
	})

	out := &Listing{Directory: dir, Entries: make([]Item, 0, len(children))}
	for _, c := range children {
		if strings.HasPrefix(c.Name(), ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := filepath.Join(dir, c.Name())
		info, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			info, err = os.Lstat(p)
		}
		if err != nil {
			return nil, &snapshot.Error{Kind: snapshot.ErrAccessDenied, Path: p, Err: err}
		}
		item := Item{
			Name:        c.Name(),
			Path:        p,
			IsDirectory: info.IsDir(),
			ModifiedAt:  info.ModTime().UTC(),
		}
		if item.IsDirectory {
			item.IsDevelopment = in.Classifier.IsDevelopmentWorkspace(p)
		} else {
			item.SizeBytes = info.Size()
			item.IsDevelopment = in.isMarkerFile(c.Name())
			item.Keywords = in.keywords(ctx, p)
		}
		out.Entries = append(out.Entries, item)
	}
	return out, nil
}

func (in Inspector) isMarkerFile(name string) bool {
	return slices.Contains(in.Classifier.FileMarkers, name)
}

func (in Inspector) keywords(ctx context.Context, p string) []string {
	if in.Enricher == nil {
		return nil
	}
	kind := in.Enricher.KindOf(p)
	if kind == insight.KindUnknown {
		return nil
	}
	res, err := insight.SafeEnrich(ctx, in.Enricher, p, kind)
	if err != nil {
		if in.Logger != nil {
			in.Logger.WithError(err).WithField("path", p).Warn("insight extraction failed")
		}
		return nil
	}
	if res.Empty() {
		return nil
	}
	if len(res.Highlights) == 0 {
		return []string{res.Caption}
	}
	return res.Highlights[:min(len(res.Highlights), itemKeywordLimit)]
}
