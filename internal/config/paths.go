package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config path constants used by the CLI and loaders.
const (
	ConfigDirName  = ".screener"
	ConfigFileName = "control_panel.yml"
	ConfigEnvVar   = "SCREENER_CONFIG"
)

// ConfigPath returns the control panel path under root.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigDirName, ConfigFileName)
}

// ResolvePath picks the explicit flag value, then SCREENER_CONFIG, then the
// default location under the working directory.
func ResolvePath(flagValue string) string {
	if path := strings.TrimSpace(flagValue); path != "" {
		return path
	}
	if path := strings.TrimSpace(os.Getenv(ConfigEnvVar)); path != "" {
		return path
	}
	return ConfigPath(".")
}
