package config

import (
	"os"
	"path/filepath"
)

// ConfigDirEnv overrides the directory searched for configuration files
const ConfigDirEnv = "DASHBOARD_CONFIG_DIR"

// SystemConfigDir is the last directory searched for configuration files
const SystemConfigDir = "/etc/ifood-dashboard"

// ResolvePath locates a configuration file.
//
// Absolute paths are returned untouched. Relative names are looked up in
// $DASHBOARD_CONFIG_DIR, the working directory and ./configs, in that order,
// and fall back to /etc/ifood-dashboard.
func ResolvePath(filename string) string {
	if filename == "" {
		panic("filename cannot be empty")
	}
	if filepath.IsAbs(filename) {
		return filename
	}

	var dirs []string
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		dirs = append(dirs, dir)
	}
	if wd, err := os.Getwd(); err == nil && wd != "" {
		dirs = append(dirs, wd, filepath.Join(wd, "configs"))
	}

	for _, dir := range dirs {
		candidate := filepath.Join(dir, filename)
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if abs, err := filepath.Abs(candidate); err == nil {
			return abs
		}
	}
	return filepath.Join(SystemConfigDir, filename)
}
