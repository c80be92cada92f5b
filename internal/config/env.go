package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored and existing variables win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		_ = godotenv.Load()
		return
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ApplyEnv overlays environment variables on cfg. getenv defaults to
// os.Getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg.Snapshot.Dir = firstNonEmpty(get("SNAPSHOT_DIR"), cfg.Snapshot.Dir)
	cfg.LocalRoot = firstNonEmpty(get("LOCAL_ROOT"), cfg.LocalRoot)
	cfg.Delivery.BaseURL = firstNonEmpty(get("SERVER_URL"), cfg.Delivery.BaseURL)
	cfg.Delivery.Mode = firstNonEmpty(get("NEBULA_DELIVERY_MODE"), cfg.Delivery.Mode)
	cfg.Delivery.UserID = firstNonEmpty(get("NEBULA_USER_ID"), cfg.Delivery.UserID)
	cfg.Log.Level = firstNonEmpty(get("NEBULA_LOG_LEVEL"), cfg.Log.Level)
	cfg.Archive.AccessKey = firstNonEmpty(get("NEBULA_ARCHIVE_ACCESS_KEY"), cfg.Archive.AccessKey)
	cfg.Archive.SecretKey = firstNonEmpty(get("NEBULA_ARCHIVE_SECRET_KEY"), cfg.Archive.SecretKey)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
