package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is stripped from environment variables before they are mapped to keys.
// CABINET_SESSION_TTL becomes session.ttl.
const EnvPrefix = "CABINET_"

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreSQL    = "sql"
)

// Config holds the application configuration.
type Config struct {
	ServerPort        int           `koanf:"server.port"`
	DatabasePath      string        `koanf:"database.path"`
	AppEnv            string        `koanf:"app.env"`
	SessionStore      string        `koanf:"session.store"`
	SessionTTL        time.Duration `koanf:"session.ttl"`
	SessionSweep      string        `koanf:"session.sweep"` // cron spec
	CORSOrigins       []string      `koanf:"cors.origins"`
	StaticDir         string        `koanf:"static.dir"`
	LogLevel          string        `koanf:"log.level"`
	LogFormat         string        `koanf:"log.format"` // "console" or "json"
	RateLimitRequests int           `koanf:"ratelimit.requests"`
	RateLimitWindow   time.Duration `koanf:"ratelimit.window"`
	BodyLimit         int64         `koanf:"http.bodylimit"`
	TrustProxy        bool          `koanf:"http.trustproxy"`
}

func defaults() map[string]any {
	return map[string]any{
		"server.port":        8080,
		"database.path":      "./cabinet.db",
		"app.env":            "development",
		"session.store":      SessionStoreMemory,
		"session.ttl":        "24h",
		"session.sweep":      "@every 10m",
		"cors.origins":       []string{"http://localhost:5173"},
		"static.dir":         "./public",
		"log.level":          "info",
		"log.format":         "console",
		"ratelimit.requests": 100,
		"ratelimit.window":   "15m",
		"http.bodylimit":     1024,
		"http.trustproxy":    false,
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"port":          "server.port",
	"db":            "database.path",
	"env":           "app.env",
	"session-store": "session.store",
	"static":        "static.dir",
	"log-level":     "log.level",
	"trust-proxy":   "http.trustproxy",
}

// RegisterFlags adds the config override flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int("port", 8080, "HTTP listen port")
	fs.String("db", "./cabinet.db", "SQLite database path")
	fs.String("env", "development", "application environment (production enables secure cookies)")
	fs.String("session-store", SessionStoreMemory, "session backend: memory or sql")
	fs.String("static", "./public", "directory holding the built front end")
	fs.String("log-level", "info", "log level")
	fs.Bool("trust-proxy", false, "use X-Forwarded-For and X-Real-IP as the client address")
}

// Load builds the configuration from defaults, an optional YAML file,
// CABINET_* environment variables and changed command-line flags, in that order.
// path and fs may be empty/nil.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if fs != nil {
		if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, flagKey(fs)), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns CABINET_SESSION_TTL into session.ttl and splits list values.
func envKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.Replace(key, "_", ".", 1)
	if key == "cors.origins" {
		return key, splitList(value)
	}
	return key, value
}

func flagKey(fs *pflag.FlagSet) func(f *pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks values that have a closed set of options.
func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server.port %d", c.ServerPort)
	}
	if c.SessionStore != SessionStoreMemory && c.SessionStore != SessionStoreSQL {
		return fmt.Errorf("invalid session.store %q: want %q or %q", c.SessionStore, SessionStoreMemory, SessionStoreSQL)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("ratelimit.requests and ratelimit.window must be positive")
	}
	if c.BodyLimit <= 0 {
		return fmt.Errorf("http.bodylimit must be positive")
	}
	return nil
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
