package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type (
	// LoggerConfig represents the logger configuration
	LoggerConfig struct {
		Level      string `yaml:"level"`       // debug, info, warn, error
		Format     string `yaml:"format"`      // json, console
		Output     string `yaml:"output"`      // stdout, file
		FilePath   string `yaml:"file_path"`   // path to log file when output is file
		MaxSize    int    `yaml:"max_size"`    // max size of log file in MB
		MaxBackups int    `yaml:"max_backups"` // max number of backup files
		MaxAge     int    `yaml:"max_age"`     // max age of backup files in days
		Compress   bool   `yaml:"compress"`    // whether to compress backup files
		Color      bool   `yaml:"color"`       // whether to use color in console output
		Stacktrace bool   `yaml:"stacktrace"`  // whether to include stacktrace in error logs
		TimeZone   string `yaml:"time_zone"`   // time zone for log timestamps, e.g., "UTC", default is local
		TimeFormat string `yaml:"time_format"` // time format for log timestamps, default is "2006-01-02 15:04:05"
	}

	// CORSConfig lists the origins allowed to call the API from a browser
	CORSConfig struct {
		AllowOrigins     []string `yaml:"allow_origins"`
		AllowMethods     []string `yaml:"allow_methods"`
		AllowHeaders     []string `yaml:"allow_headers"`
		ExposeHeaders    []string `yaml:"expose_headers"`
		AllowCredentials bool     `yaml:"allow_credentials"`
	}
)

type Type interface {
	APIServerConfig
}

// LoadConfig reads a YAML file after resolving ${VAR:default} placeholders.
// For the API server the deployment variables then override the file and
// defaults fill what is left.
func LoadConfig[T Type](filename string) (*T, string, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	cfgPath := ResolvePath(filename)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}

	var cfg T
	if err := yaml.Unmarshal(resolveEnv(data), &cfg); err != nil {
		return nil, cfgPath, fmt.Errorf("parse %s: %w", cfgPath, err)
	}

	if apiCfg, ok := any(&cfg).(*APIServerConfig); ok {
		apiCfg.ApplyEnv(os.LookupEnv)
		apiCfg.SetDefaults()
	}
	return &cfg, cfgPath, nil
}

var envPlaceholder = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// resolveEnv replaces ${VAR} and ${VAR:default} with the environment value,
// the default, or nothing
func resolveEnv(content []byte) []byte {
	return envPlaceholder.ReplaceAllFunc(content, func(match []byte) []byte {
		m := envPlaceholder.FindSubmatch(match)
		if value, ok := os.LookupEnv(string(m[1])); ok {
			return []byte(value)
		}
		return m[2]
	})
}
