package config

import (
	"fmt"
	"strings"
	"time"

	"cuelang.org/go/cue"
)

// Config is the resolved nebula configuration.
type Config struct {
	ConfigVersion string
	// LocalRoot confines relative snapshot paths when set.
	LocalRoot  string
	Snapshot   Snapshot
	Workspace  Workspace
	Enrichment Enrichment
	Delivery   Delivery
	Archive    Archive
	Log        Log
}

// Snapshot controls page output.
type Snapshot struct {
	Dir           string
	AutoThreshold int
	UniqueNames   bool
}

// Workspace overrides the development marker sets. Empty lists keep the
// built-in markers.
type Workspace struct {
	DirMarkers  []string
	FileMarkers []string
}

// Enrichment controls per-file insight extraction.
type Enrichment struct {
	Enabled   bool
	Workers   int
	CacheSize int
	CacheTTL  time.Duration
	// Store is an optional SQLite file for persistent insights.
	Store string
	// Scripts maps a file extension to a Lua script path.
	Scripts         map[string]string
	ScriptTimeoutMs int
}

// Delivery controls how pages reach the catalog service.
type Delivery struct {
	Mode      string
	BaseURL   string
	Path      string
	TimeoutMs int
	UserID    string
}

// Archive is an optional S3-compatible mirror for written pages.
type Archive struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// Enabled reports whether enough is configured to mirror pages.
func (a Archive) Enabled() bool {
	return a.Endpoint != "" && a.Bucket != ""
}

// Log controls the process logger.
type Log struct {
	Level string
	JSON  bool
}

const (
	DefaultSnapshotDir     = "snapshots"
	DefaultAutoThreshold   = 50
	DefaultDeliveryMode    = "log"
	DefaultDeliveryPath    = "/generate-filename"
	DefaultDeliveryTimeout = 10000
	DefaultScriptTimeout   = 2000
	DefaultUserID          = "621c7d3957c2ea5b9063d04c"
)

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Snapshot: Snapshot{
			Dir:           DefaultSnapshotDir,
			AutoThreshold: DefaultAutoThreshold,
			UniqueNames:   true,
		},
		Enrichment: Enrichment{
			Enabled:         true,
			ScriptTimeoutMs: DefaultScriptTimeout,
		},
		Delivery: Delivery{
			Mode:      DefaultDeliveryMode,
			Path:      DefaultDeliveryPath,
			TimeoutMs: DefaultDeliveryTimeout,
			UserID:    DefaultUserID,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads a CUE file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	v, err := compileCUE(path)
	if err != nil {
		return Config{}, err
	}
	if err := parse(v, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parse(v cue.Value, cfg *Config) error {
	if s, ok, err := lookupString(v, "configVersion"); err != nil {
		return err
	} else if ok {
		if err := checkConfigVersion(s); err != nil {
			return err
		}
		cfg.ConfigVersion = strings.TrimSpace(s)
	}
	if s, ok, err := lookupString(v, "localRoot"); err != nil {
		return err
	} else if ok {
		cfg.LocalRoot = s
	}
	for _, section := range []func(cue.Value, *Config) error{
		parseSnapshotSection,
		parseWorkspaceSection,
		parseEnrichmentSection,
		parseDeliverySection,
		parseArchiveSection,
		parseLogSection,
	} {
		if err := section(v, cfg); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks cross-field rules after files and environment are applied.
func (c Config) Validate() error {
	switch c.Delivery.Mode {
	case "off", "log":
	case "http":
		if c.Delivery.BaseURL == "" {
			return fmt.Errorf("delivery.mode %q requires delivery.baseURL", c.Delivery.Mode)
		}
	default:
		return fmt.Errorf("invalid delivery.mode: %q (expected off, log or http)", c.Delivery.Mode)
	}
	if c.Snapshot.AutoThreshold <= 0 {
		return fmt.Errorf("invalid snapshot.autoThreshold: %d (must be > 0)", c.Snapshot.AutoThreshold)
	}
	if c.Enrichment.Workers < 0 {
		return fmt.Errorf("invalid enrichment.workers: %d (must be >= 0)", c.Enrichment.Workers)
	}
	if c.Snapshot.Dir == "" {
		return fmt.Errorf("snapshot.dir must not be empty")
	}
	return nil
}
