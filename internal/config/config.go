// Package config loads process configuration with layered sources:
// struct defaults, then an optional YAML file, then environment
// variables (highest priority).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/authz"
)

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths lists where config files are searched, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/hosteld/config.yaml",
	"/etc/hosteld/config.yml",
}

// Config is the complete process configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Authz    AuthzConfig    `koanf:"authz"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds document store settings.
type DatabaseConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// SecurityConfig holds authentication settings.
type SecurityConfig struct {
	JWTSecret       string        `koanf:"jwt_secret"`
	SessionTTL      time.Duration `koanf:"session_ttl"`
	SessionStore    string        `koanf:"session_store"` // "badger" or "memory"
	CookieName      string        `koanf:"cookie_name"`
	CookieSecure    bool          `koanf:"cookie_secure"`
	BcryptCost      int           `koanf:"bcrypt_cost"`
	LoginRateLimit  int           `koanf:"login_rate_limit"`
	LoginRateWindow time.Duration `koanf:"login_rate_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	SessionCleanup  time.Duration `koanf:"session_cleanup_interval"`
}

// AuthzConfig holds the enforcement-mode controller settings. All of it is
// read once at process start; changing enforcement requires a restart.
type AuthzConfig struct {
	// Mode is off, observe, or enforce.
	Mode string `koanf:"mode"`

	// EnforcedRouteKeys and EnforcedCapabilityKeys are the observe-mode
	// allow-lists. Either may contain "*" meaning all keys.
	EnforcedRouteKeys      []string `koanf:"enforced_route_keys"`
	EnforcedCapabilityKeys []string `koanf:"enforced_capability_keys"`

	// DiagnosticLogging enables the would-have-denied warning log on the
	// fail-open path.
	DiagnosticLogging bool `koanf:"diagnostic_logging"`

	// AuditEnabled enables the async decision audit log.
	AuditEnabled bool `koanf:"audit_enabled"`

	// AuditLogAllowed also records allowed decisions (high volume).
	AuditLogAllowed bool `koanf:"audit_log_allowed"`

	// AuditBufferSize is the async audit buffer size.
	AuditBufferSize int `koanf:"audit_buffer_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, applied before file and
// environment layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:     "/data/hosteld",
			InMemory: false,
		},
		Security: SecurityConfig{
			JWTSecret:       "",
			SessionTTL:      24 * time.Hour,
			SessionStore:    "badger",
			CookieName:      "hms_session",
			CookieSecure:    true,
			BcryptCost:      0, // bcrypt default
			LoginRateLimit:  5,
			LoginRateWindow: 5 * time.Minute,
			CORSOrigins:     []string{"*"},
			SessionCleanup:  time.Hour,
		},
		Authz: AuthzConfig{
			Mode:                   string(authz.ModeObserve),
			EnforcedRouteKeys:      nil,
			EnforcedCapabilityKeys: nil,
			DiagnosticLogging:      true,
			AuditEnabled:           true,
			AuditLogAllowed:        false,
			AuditBufferSize:        1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}

	if _, err := authz.ParseMode(c.Authz.Mode); err != nil {
		return err
	}

	switch c.Security.SessionStore {
	case "badger", "memory":
	default:
		return fmt.Errorf("invalid session store %q", c.Security.SessionStore)
	}

	if c.Security.JWTSecret != "" && len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return nil
}

// EnforcementMode returns the parsed enforcement mode. Validate must have
// passed.
func (c *Config) EnforcementMode() authz.Mode {
	mode, err := authz.ParseMode(c.Authz.Mode)
	if err != nil {
		return authz.ModeObserve
	}
	return mode
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when supplied through environment variables.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"authz.enforced_route_keys",
	"authz.enforced_capability_keys",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to config paths.
// HMS_-prefixed variables map mechanically (HMS_SERVER_PORT ->
// server.port); a handful of legacy names are mapped explicitly.
func envTransformFunc(key string) string {
	lower := strings.ToLower(key)

	legacy := map[string]string{
		"http_port":         "server.port",
		"http_host":         "server.host",
		"jwt_secret":        "security.jwt_secret",
		"session_timeout":   "security.session_ttl",
		"authz_mode":        "authz.mode",
		"authz_route_keys":  "authz.enforced_route_keys",
		"authz_cap_keys":    "authz.enforced_capability_keys",
		"authz_diagnostics": "authz.diagnostic_logging",
		"log_level":         "logging.level",
		"log_format":        "logging.format",
		"database_path":     "database.path",
	}
	if path, ok := legacy[lower]; ok {
		return path
	}

	const prefix = "hms_"
	if !strings.HasPrefix(lower, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(lower, prefix)

	for _, section := range []string{"server", "database", "security", "authz", "logging"} {
		if strings.HasPrefix(rest, section+"_") {
			return section + "." + strings.TrimPrefix(rest, section+"_")
		}
	}
	return ""
}
