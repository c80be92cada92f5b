package snapshot

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/flarebyte/nebula/internal/insight"
	"github.com/flarebyte/nebula/internal/vcs"
)

// Enricher supplies optional per-file insights.
type Enricher interface {
	KindOf(path string) insight.Kind
	Enrich(ctx context.Context, absPath string, kind insight.Kind) (*insight.Insight, error)
}

// Deliverer sends one page payload to a remote catalog.
type Deliverer interface {
	Deliver(ctx context.Context, payload any) error
}

// PageStore persists an encoded page and returns its location.
type PageStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// Preparer is implemented by page stores that can check or create their
// destination up front. The engine calls Prepare before any page is emitted.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// Describer reports version-control details for a workspace directory.
type Describer interface {
	Describe(dir string) (*vcs.Info, error)
}

// Engine runs snapshot requests. Store is required; Enricher, Deliverer and
// VCS are optional.
type Engine struct {
	Resolver  Resolver
	Walker    *Walker
	Enricher  Enricher
	Deliverer Deliverer
	Store     PageStore
	VCS       Describer
	Logger    logrus.FieldLogger

	UserID        string
	AutoThreshold int
	Workers       int
	UniqueNames   bool

	Now          func() time.Time
	NewRequestID func() string
}

// Snapshot walks req.Path, paginates the entries and emits every page.
// Traversal and storage failures abort the request; delivery failures are
// returned as warnings on the result.
func (e *Engine) Snapshot(ctx context.Context, req Request) (*Result, error) {
	if e.Store == nil {
		return nil, newError(ErrStorageUnavailable, "", errors.New("no page store configured"))
	}
	log := e.logger()

	dir, err := e.Resolver.Resolve(req.Path)
	if err != nil {
		return nil, err
	}
	if p, ok := e.Store.(Preparer); ok {
		if err := p.Prepare(ctx); err != nil {
			return nil, newError(ErrStorageUnavailable, "", err)
		}
	}
	log.WithFields(logrus.Fields{"path": dir, "page_size": req.PageSize}).Info("snapshot started")

	entries, err := e.Walker.Collect(ctx, dir)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"path": dir, "entries": len(entries)}).Info("entries collected")

	generatedAt := e.now().UTC()
	requestID := ""
	if e.UniqueNames {
		requestID = e.newRequestID()
	}

	size, chunks := Paginate(entries, req.PageSize, e.AutoThreshold)
	pages := Pages(Page{TotalEntries: len(entries), Directory: dir, GeneratedAt: generatedAt}, size, chunks)

	res := &Result{
		Directory:              dir,
		GeneratedAt:            generatedAt,
		RequestID:              requestID,
		TotalEntries:           len(entries),
		PageSize:               size,
		Pages:                  make([]PageInfo, 0, len(pages)),
		DevelopmentDirectories: e.developmentDirectories(entries),
	}
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, warning, err := e.emitPage(ctx, p, requestID)
		if err != nil {
			return nil, err
		}
		if warning != "" {
			res.Warnings = append(res.Warnings, warning)
		}
		res.Pages = append(res.Pages, info)
	}
	log.WithFields(logrus.Fields{
		"path":     dir,
		"pages":    res.PageCount(),
		"warnings": len(res.Warnings),
	}).Info("snapshot finished")
	return res, nil
}

func (e *Engine) emitPage(ctx context.Context, p Page, requestID string) (PageInfo, string, error) {
	log := e.logger().WithFields(logrus.Fields{"page": p.Index, "page_count": p.Count, "entries": len(p.Entries)})
	name := FileName(p.Directory, p.GeneratedAt, requestID, p.Index, p.Count)

	insights := e.enrich(ctx, p.Entries)

	var warning string
	if e.Deliverer != nil {
		if err := e.Deliverer.Deliver(ctx, ToDelivery(p, e.UserID, insights)); err != nil {
			warning = warningFor(p.Index, err)
			log.WithError(err).Warn("page delivery failed")
		}
	}

	data, err := EncodeJSON(ToDurable(p))
	if err != nil {
		return PageInfo{}, "", newError(ErrStorageUnavailable, name, err)
	}
	loc, err := e.Store.Put(ctx, name, data)
	if err != nil {
		return PageInfo{}, "", newError(ErrStorageUnavailable, name, err)
	}
	log.WithField("location", loc).Info("page written")
	return PageInfo{Page: p.Index, Path: loc, EntryCount: len(p.Entries)}, warning, nil
}

type enrichTarget struct {
	path string
	kind insight.Kind
}

// enrich resolves insights for the non-directory entries of one page.
// Results are keyed by absolute path; failed or empty insights are absent.
func (e *Engine) enrich(ctx context.Context, entries []Entry) map[string]*insight.Insight {
	if e.Enricher == nil {
		return nil
	}
	targets := make([]enrichTarget, 0, len(entries))
	for _, en := range entries {
		if en.IsDirectory {
			continue
		}
		kind := e.Enricher.KindOf(en.AbsolutePath)
		if kind == insight.KindUnknown {
			continue
		}
		targets = append(targets, enrichTarget{path: en.AbsolutePath, kind: kind})
	}
	results := runIndexedParallel(len(targets), e.Workers, func(i int) *insight.Insight {
		return e.enrichOne(ctx, targets[i])
	})
	out := make(map[string]*insight.Insight, len(results))
	for i, in := range results {
		if in.Empty() {
			continue
		}
		out[targets[i].path] = in
	}
	return out
}

func (e *Engine) enrichOne(ctx context.Context, t enrichTarget) *insight.Insight {
	if ctx.Err() != nil {
		return nil
	}
	in, err := insight.SafeEnrich(ctx, e.Enricher, t.path, t.kind)
	if err != nil {
		e.logger().WithError(err).WithFields(logrus.Fields{"path": t.path, "kind": string(t.kind)}).Warn("insight extraction failed")
		return nil
	}
	return in
}

func (e *Engine) developmentDirectories(entries []Entry) []DevelopmentDirectory {
	out := make([]DevelopmentDirectory, 0)
	for _, en := range entries {
		if !en.IsDevelopment {
			continue
		}
		d := DevelopmentDirectory{RelativePath: en.RelativePath, AbsolutePath: en.AbsolutePath}
		if e.VCS != nil && HasMarker(en.AbsolutePath, ".git") {
			info, err := e.VCS.Describe(en.AbsolutePath)
			if err != nil {
				e.logger().WithError(err).WithField("path", en.AbsolutePath).Debug("workspace vcs details unavailable")
			} else {
				d.VCS = info
			}
		}
		out = append(out, d)
	}
	return out
}

func (e *Engine) logger() logrus.FieldLogger {
	if e.Logger != nil {
		return e.Logger
	}
	return discardLogger
}

var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) newRequestID() string {
	if e.NewRequestID != nil {
		return e.NewRequestID()
	}
	return uuid.NewString()[:8]
}
