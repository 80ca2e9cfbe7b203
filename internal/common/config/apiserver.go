package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DatabaseTypeSQLite   = "sqlite"
	DatabaseTypePostgres = "postgres"
	DatabaseTypeMySQL    = "mysql"

	// DefaultDatabaseURL is a local file-backed database
	DefaultDatabaseURL = "sqlite:///./data/ifood.db"
)

type (
	APIServerConfig struct {
		Server    ServerConfig    `yaml:"server"`
		Database  DatabaseConfig  `yaml:"database"`
		JWT       JWTConfig       `yaml:"jwt"`
		CORS      CORSConfig      `yaml:"cors"`
		RateLimit RateLimitConfig `yaml:"rate_limit"`
		Collector CollectorConfig `yaml:"collector"`
		Logger    LoggerConfig    `yaml:"logger"`
		Metrics   MetricsConfig   `yaml:"metrics"`
		Tracing   TracingConfig   `yaml:"tracing"`
		I18n      I18nConfig      `yaml:"i18n"`
	}

	ServerConfig struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		Mode            string        `yaml:"mode"` // gin mode: debug, release, test
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		PIDFile         string        `yaml:"pid_file"`
	}

	// I18nConfig represents the internationalization configuration
	I18nConfig struct {
		Path            string `yaml:"path"` // optional directory overriding the embedded translations
		DefaultLanguage string `yaml:"default_language"`
	}

	DatabaseConfig struct {
		URL             string        `yaml:"url"`      // DATABASE_URL, takes precedence over the fields below
		Type            string        `yaml:"type"`     // mysql, postgres, sqlite
		Host            string        `yaml:"host"`     // localhost
		Port            int           `yaml:"port"`     // 3306 (for mysql), 5432 (for postgres)
		User            string        `yaml:"user"`     // root (for mysql), postgres (for postgres)
		Password        string        `yaml:"password"` // password
		DBName          string        `yaml:"dbname"`   // database name, file path for sqlite
		SSLMode         string        `yaml:"sslmode"`  // disable (for postgres)
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	}

	JWTConfig struct {
		SecretKey string        `yaml:"secret_key"`
		Duration  time.Duration `yaml:"duration"`
	}

	RateLimitConfig struct {
		Enabled bool                 `yaml:"enabled"`
		Store   string               `yaml:"store"` // memory or redis
		Redis   RateLimitRedisConfig `yaml:"redis"`
		Login   RateLimitRule        `yaml:"login"`
		Read    RateLimitRule        `yaml:"read"`
	}

	RateLimitRedisConfig struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	}

	// RateLimitRule allows Limit requests per client within Window
	RateLimitRule struct {
		Limit  int           `yaml:"limit"`
		Window time.Duration `yaml:"window"`
	}

	CollectorConfig struct {
		Enabled  bool          `yaml:"enabled"`
		URL      string        `yaml:"url"`
		Interval time.Duration `yaml:"interval"`
		Timeout  time.Duration `yaml:"timeout"`
	}

	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Path      string    `yaml:"path"`
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}

	// TracingConfig represents OpenTelemetry tracing configuration
	TracingConfig struct {
		Enabled     bool              `yaml:"enabled"`
		ServiceName string            `yaml:"service_name"`
		Endpoint    string            `yaml:"endpoint"`     // e.g. localhost:4317 or http://localhost:4318
		Protocol    string            `yaml:"protocol"`     // grpc or http
		Insecure    bool              `yaml:"insecure"`     // allow insecure connection
		SamplerRate float64           `yaml:"sampler_rate"` // 0.0~1.0
		Environment string            `yaml:"environment"`  // env tag: dev/staging/prod
		Headers     map[string]string `yaml:"headers"`
	}
)

// Deployment variables that take precedence over the configuration file
const (
	EnvDatabaseURL    = "DATABASE_URL"
	EnvSecretKey      = "SECRET_KEY"
	EnvFrontendOrigin = "FRONTEND_ORIGIN"
)

// ApplyEnv copies the non-empty deployment variables over the file values
func (c *APIServerConfig) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDatabaseURL); ok && strings.TrimSpace(v) != "" {
		c.Database.URL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvSecretKey); ok && v != "" {
		c.JWT.SecretKey = v
	}
	if v, ok := lookup(EnvFrontendOrigin); ok && strings.TrimSpace(v) != "" {
		c.CORS.AllowOrigins = []string{v}
	}
}

// SetDefaults fills the zero values left by the configuration file
func (c *APIServerConfig) SetDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Database.URL == "" && c.Database.Type == "" {
		c.Database.URL = DefaultDatabaseURL
	}
	if c.JWT.Duration <= 0 {
		c.JWT.Duration = 30 * time.Minute
	}
	c.CORS.AllowOrigins = splitList(c.CORS.AllowOrigins)
	if len(c.CORS.AllowOrigins) == 0 {
		c.CORS.AllowOrigins = []string{"*"}
	}
	if len(c.CORS.AllowMethods) == 0 {
		c.CORS.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowHeaders) == 0 {
		c.CORS.AllowHeaders = []string{"Authorization", "Content-Type", "Accept-Language", "X-Lang"}
	}
	if c.RateLimit.Store == "" {
		c.RateLimit.Store = "memory"
	}
	if c.RateLimit.Redis.Prefix == "" {
		c.RateLimit.Redis.Prefix = "ratelimit:"
	}
	c.RateLimit.Login.setDefaults(5, time.Minute)
	c.RateLimit.Read.setDefaults(10, time.Minute)
	if c.Collector.URL == "" {
		c.Collector.URL = "https://example.com/ifood"
	}
	if c.Collector.Interval == 0 {
		c.Collector.Interval = 30 * time.Minute
	}
	if c.Collector.Timeout <= 0 {
		c.Collector.Timeout = 10 * time.Second
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/prometheus"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "dashboard"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "ifood-dashboard"
	}
	if c.I18n.DefaultLanguage == "" {
		c.I18n.DefaultLanguage = "en"
	}
}

func (r *RateLimitRule) setDefaults(limit int, window time.Duration) {
	if r.Limit == 0 {
		r.Limit = limit
	}
	if r.Window == 0 {
		r.Window = window
	}
}

// Validate checks the settings the server cannot start without
func (c *APIServerConfig) Validate() error {
	if strings.TrimSpace(c.JWT.SecretKey) == "" {
		return fmt.Errorf("jwt secret key is empty: set SECRET_KEY")
	}
	if _, _, err := c.Database.Resolve(); err != nil {
		return err
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Store != "memory" && c.RateLimit.Store != "redis" {
			return fmt.Errorf("unsupported rate limit store: %s", c.RateLimit.Store)
		}
		for name, rule := range map[string]RateLimitRule{"login": c.RateLimit.Login, "read": c.RateLimit.Read} {
			if rule.Limit <= 0 || rule.Window <= 0 {
				return fmt.Errorf("rate limit rule %q must have a positive limit and window", name)
			}
		}
	}
	if c.Collector.Enabled && c.Collector.Interval <= 0 {
		return fmt.Errorf("collector interval must be positive")
	}
	return nil
}

// Addr returns the listen address of the HTTP server
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Resolve returns the driver type and DSN, preferring URL over the discrete fields
func (c *DatabaseConfig) Resolve() (string, string, error) {
	if c.URL == "" {
		dsn := c.GetDSN()
		if dsn == "" {
			return "", "", fmt.Errorf("unsupported database type: %s", c.Type)
		}
		return c.Type, dsn, nil
	}

	scheme, rest, ok := strings.Cut(c.URL, "://")
	if !ok {
		return "", "", fmt.Errorf("invalid database url: %q", c.URL)
	}
	// sqlalchemy style urls carry the python driver after a plus sign
	scheme, _, _ = strings.Cut(strings.ToLower(scheme), "+")

	switch scheme {
	case "sqlite":
		return DatabaseTypeSQLite, sqlitePath(rest), nil
	case "postgres", "postgresql":
		return DatabaseTypePostgres, "postgres://" + rest, nil
	case "mysql":
		dsn, err := mysqlDSNFromURL("mysql://" + rest)
		if err != nil {
			return "", "", err
		}
		return DatabaseTypeMySQL, dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme: %s", scheme)
	}
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case DatabaseTypePostgres:
		return c.getPostgresDSN()
	case DatabaseTypeMySQL:
		return c.getMySQLDSN()
	case DatabaseTypeSQLite:
		return c.DBName // For SQLite, DBName is the file path
	default:
		return ""
	}
}

// getPostgresDSN returns PostgreSQL connection string
func (c *DatabaseConfig) getPostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// getMySQLDSN returns MySQL connection string
func (c *DatabaseConfig) getMySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// sqlitePath maps the part after "sqlite://" to a file path.
// "/./app.db" is relative, "//abs/app.db" is absolute, empty means memory.
func sqlitePath(rest string) string {
	if rest == "" || rest == "/" || rest == "/:memory:" || rest == ":memory:" {
		return ":memory:"
	}
	return strings.TrimPrefix(rest, "/")
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid mysql url: %w", err)
	}
	host := u.Host
	if u.Port() == "" {
		host += ":3306"
	}
	password, _ := u.User.Password()
	query := u.Query()
	if query.Get("charset") == "" {
		query.Set("charset", "utf8mb4")
	}
	if query.Get("parseTime") == "" {
		query.Set("parseTime", "True")
	}
	if query.Get("loc") == "" {
		query.Set("loc", "Local")
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?%s",
		u.User.Username(), password, host, strings.TrimPrefix(u.Path, "/"), query.Encode()), nil
}

// splitList flattens comma separated entries, as FRONTEND_ORIGIN may hold several origins
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// EnsureSQLiteDir creates the parent directory of a sqlite database file
func EnsureSQLiteDir(path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file::memory:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for sqlite database: %w", err)
	}
	return nil
}
