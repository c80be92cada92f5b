// Package app assembles configured components for the CLI.
package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flarebyte/nebula/internal/config"
	"github.com/flarebyte/nebula/internal/delivery"
	"github.com/flarebyte/nebula/internal/insight"
	"github.com/flarebyte/nebula/internal/insightstore"
	"github.com/flarebyte/nebula/internal/inspect"
	"github.com/flarebyte/nebula/internal/logging"
	"github.com/flarebyte/nebula/internal/pagestore"
	"github.com/flarebyte/nebula/internal/snapshot"
	"github.com/flarebyte/nebula/internal/vcs"
)

// Options are the process-level inputs that come from flags.
type Options struct {
	ConfigPath string
	EnvFile    string
	LogLevel   string
	LogJSON    bool
	// Getenv replaces os.Getenv, for tests.
	Getenv func(string) string
	// LogOutput replaces stderr, for tests.
	LogOutput io.Writer
}

// App holds the loaded configuration and the resources built from it.
type App struct {
	Config config.Config
	Logger *logrus.Logger

	closers []io.Closer
}

// Load reads .env, the config file and the environment, then applies flag
// overrides.
func Load(opts Options) (*App, error) {
	if opts.Getenv == nil {
		if opts.EnvFile != "" {
			config.LoadDotEnv(opts.EnvFile)
		} else {
			config.LoadDotEnv()
		}
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(&cfg, opts.Getenv)
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogJSON {
		cfg.Log.JSON = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var logger *logrus.Logger
	if opts.LogOutput != nil {
		logger = logging.NewWithOutput(opts.LogOutput, cfg.Log.Level, cfg.Log.JSON)
	} else {
		logger = logging.New(cfg.Log.Level, cfg.Log.JSON)
	}
	return &App{Config: cfg, Logger: logger}, nil
}

// Close releases resources opened by the builders.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) resolver() snapshot.Resolver {
	return snapshot.Resolver{Root: a.Config.LocalRoot}
}

func (a *App) classifier() snapshot.Classifier {
	c := snapshot.DefaultClassifier()
	if len(a.Config.Workspace.DirMarkers) > 0 {
		c.DirMarkers = a.Config.Workspace.DirMarkers
	}
	if len(a.Config.Workspace.FileMarkers) > 0 {
		c.FileMarkers = a.Config.Workspace.FileMarkers
	}
	return c
}

// Enricher builds the insight pipeline, or nil when enrichment is off.
func (a *App) Enricher() (snapshot.Enricher, error) {
	e := a.Config.Enrichment
	if !e.Enabled {
		return nil, nil
	}
	reg := insight.NewRegistry()
	reg.Register(insight.KindPDF, insight.PDFBackend{})
	reg.Register(insight.KindImage, insight.ImageBackend{})
	reg.Register(insight.KindSpreadsheet, insight.SheetBackend{})
	reg.Register(insight.KindText, insight.TextBackend{})
	reg.Register(insight.KindMarkdown, insight.MarkdownBackend{})
	reg.Register(insight.KindHTML, insight.HTMLBackend{})
	if len(e.Scripts) > 0 {
		scripts, err := insight.LoadScripts(e.Scripts)
		if err != nil {
			return nil, err
		}
		backend := insight.ScriptBackend{
			Scripts: scripts,
			Timeout: time.Duration(e.ScriptTimeoutMs) * time.Millisecond,
		}
		reg.Register(insight.KindScript, backend)
		for _, ext := range backend.Extensions() {
			reg.MapExtension(ext, insight.KindScript)
		}
	}

	var store insight.Store
	if e.Store != "" {
		s, err := insightstore.Open(e.Store)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		store = s
	}
	return insight.NewCached(reg, e.CacheSize, e.CacheTTL, store), nil
}

// PageStore builds the durable page store. With dryRun pages are kept in
// memory and returned so the caller can print them.
func (a *App) PageStore(dryRun bool) (snapshot.PageStore, *pagestore.Memory, error) {
	if dryRun {
		mem := pagestore.NewMemory()
		return mem, mem, nil
	}
	primary := pagestore.Dir{Root: a.Config.Snapshot.Dir}
	ar := a.Config.Archive
	if !ar.Enabled() {
		return primary, nil, nil
	}
	bucket, err := pagestore.NewBucket(pagestore.BucketConfig{
		Endpoint:  ar.Endpoint,
		Region:    ar.Region,
		AccessKey: ar.AccessKey,
		SecretKey: ar.SecretKey,
		Bucket:    ar.Bucket,
		Prefix:    ar.Prefix,
		UseSSL:    ar.UseSSL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("archive: %w", err)
	}
	return pagestore.Mirror{Primary: primary, Secondaries: []pagestore.Store{bucket}, Logger: a.Logger}, nil, nil
}

// Deliverer builds the delivery client for the configured mode.
func (a *App) Deliverer() (snapshot.Deliverer, error) {
	d := a.Config.Delivery
	return delivery.New(delivery.Options{
		Mode:    delivery.Mode(d.Mode),
		BaseURL: d.BaseURL,
		Path:    d.Path,
		Timeout: d.TimeoutMs,
		Logger:  a.Logger,
	})
}

// Engine wires a snapshot engine. The returned memory store is non-nil only
// for dry runs.
func (a *App) Engine(dryRun bool) (*snapshot.Engine, *pagestore.Memory, error) {
	enricher, err := a.Enricher()
	if err != nil {
		return nil, nil, err
	}
	deliverer, err := a.Deliverer()
	if err != nil {
		return nil, nil, err
	}
	store, mem, err := a.PageStore(dryRun)
	if err != nil {
		return nil, nil, err
	}
	classifier := a.classifier()
	eng := &snapshot.Engine{
		Resolver:      a.resolver(),
		Walker:        &snapshot.Walker{Classifier: &classifier},
		Deliverer:     deliverer,
		Store:         store,
		VCS:           vcs.Git{},
		Logger:        a.Logger,
		UserID:        a.Config.Delivery.UserID,
		AutoThreshold: a.Config.Snapshot.AutoThreshold,
		Workers:       a.Config.Enrichment.Workers,
		UniqueNames:   a.Config.Snapshot.UniqueNames,
	}
	if enricher != nil {
		eng.Enricher = enricher
	}
	return eng, mem, nil
}

// Inspector wires folder inspection. Keywords need enrichment enabled.
func (a *App) Inspector(keywords bool) (*inspect.Inspector, error) {
	in := &inspect.Inspector{
		Resolver:   a.resolver(),
		Classifier: a.classifier(),
		Logger:     a.Logger,
	}
	if keywords {
		enricher, err := a.Enricher()
		if err != nil {
			return nil, err
		}
		if enricher != nil {
			in.Enricher = enricher
		}
	}
	return in, nil
}
