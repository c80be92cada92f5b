package config

import (
	"fmt"
	"time"

	"cuelang.org/go/cue"
)

func parseSnapshotSection(v cue.Value, cfg *Config) error {
	if s, ok, err := lookupString(v, "snapshot.dir"); err != nil {
		return err
	} else if ok {
		cfg.Snapshot.Dir = s
	}
	if n, ok, err := lookupInt(v, "snapshot.autoThreshold"); err != nil {
		return err
	} else if ok {
		cfg.Snapshot.AutoThreshold = n
	}
	if b, ok, err := lookupBool(v, "snapshot.uniqueNames"); err != nil {
		return err
	} else if ok {
		cfg.Snapshot.UniqueNames = b
	}
	return nil
}

func parseWorkspaceSection(v cue.Value, cfg *Config) error {
	if l, ok, err := lookupStrings(v, "workspace.dirMarkers"); err != nil {
		return err
	} else if ok {
		cfg.Workspace.DirMarkers = l
	}
	if l, ok, err := lookupStrings(v, "workspace.fileMarkers"); err != nil {
		return err
	} else if ok {
		cfg.Workspace.FileMarkers = l
	}
	return nil
}

func parseEnrichmentSection(v cue.Value, cfg *Config) error {
	e := &cfg.Enrichment
	if b, ok, err := lookupBool(v, "enrichment.enabled"); err != nil {
		return err
	} else if ok {
		e.Enabled = b
	}
	if n, ok, err := lookupInt(v, "enrichment.workers"); err != nil {
		return err
	} else if ok {
		e.Workers = n
	}
	if n, ok, err := lookupInt(v, "enrichment.cacheSize"); err != nil {
		return err
	} else if ok {
		e.CacheSize = n
	}
	if s, ok, err := lookupString(v, "enrichment.cacheTTL"); err != nil {
		return err
	} else if ok {
		d, err := time.ParseDuration(s)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid value for enrichment.cacheTTL: %q", s)
		}
		e.CacheTTL = d
	}
	if s, ok, err := lookupString(v, "enrichment.store"); err != nil {
		return err
	} else if ok {
		e.Store = s
	}
	if m, ok, err := lookupStringMap(v, "enrichment.scripts"); err != nil {
		return err
	} else if ok {
		e.Scripts = m
	}
	if n, ok, err := lookupInt(v, "enrichment.scriptTimeoutMs"); err != nil {
		return err
	} else if ok {
		e.ScriptTimeoutMs = n
	}
	return nil
}

func parseDeliverySection(v cue.Value, cfg *Config) error {
	d := &cfg.Delivery
	for _, f := range []struct {
		path string
		dst  *string
	}{
		{"delivery.mode", &d.Mode},
		{"delivery.baseURL", &d.BaseURL},
		{"delivery.path", &d.Path},
		{"delivery.userId", &d.UserID},
	} {
		if s, ok, err := lookupString(v, f.path); err != nil {
			return err
		} else if ok {
			*f.dst = s
		}
	}
	if n, ok, err := lookupInt(v, "delivery.timeoutMs"); err != nil {
		return err
	} else if ok {
		d.TimeoutMs = n
	}
	return nil
}

func parseArchiveSection(v cue.Value, cfg *Config) error {
	a := &cfg.Archive
	for _, f := range []struct {
		path string
		dst  *string
	}{
		{"archive.endpoint", &a.Endpoint},
		{"archive.bucket", &a.Bucket},
		{"archive.prefix", &a.Prefix},
		{"archive.accessKey", &a.AccessKey},
		{"archive.secretKey", &a.SecretKey},
		{"archive.region", &a.Region},
	} {
		if s, ok, err := lookupString(v, f.path); err != nil {
			return err
		} else if ok {
			*f.dst = s
		}
	}
	if b, ok, err := lookupBool(v, "archive.useSSL"); err != nil {
		return err
	} else if ok {
		a.UseSSL = b
	}
	return nil
}

func parseLogSection(v cue.Value, cfg *Config) error {
	if s, ok, err := lookupString(v, "log.level"); err != nil {
		return err
	} else if ok {
		cfg.Log.Level = s
	}
	if b, ok, err := lookupBool(v, "log.json"); err != nil {
		return err
	} else if ok {
		cfg.Log.JSON = b
	}
	return nil
}
