package config

import (
	"fmt"
	"slices"
	"strings"
)

// CurrentConfigVersion is written into new config files. Files without a
// configVersion are read as the current version.
const CurrentConfigVersion = "1"

var supportedConfigVersions = []string{CurrentConfigVersion}

func checkConfigVersion(v string) error {
	if slices.Contains(supportedConfigVersions, strings.TrimSpace(v)) {
		return nil
	}
	return fmt.Errorf("unsupported configVersion: %q (supported: %s)", v, strings.Join(supportedConfigVersions, ", "))
}
