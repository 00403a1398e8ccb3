package config

import (
	"testing"
	"time"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/authz"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Authz.Mode != string(authz.ModeObserve) {
		t.Errorf("mode = %q, want observe", cfg.Authz.Mode)
	}
	if cfg.Security.SessionTTL != 24*time.Hour {
		t.Errorf("session ttl = %v, want 24h", cfg.Security.SessionTTL)
	}
	if cfg.Security.SessionStore != "badger" {
		t.Errorf("session store = %q, want badger", cfg.Security.SessionStore)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HMS_SERVER_PORT", "9090")
	t.Setenv("AUTHZ_MODE", "enforce")
	t.Setenv("HMS_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.EnforcementMode() != authz.ModeEnforce {
		t.Errorf("mode = %v, want enforce", cfg.EnforcementMode())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadSliceFieldsFromEnv(t *testing.T) {
	t.Setenv("HMS_AUTHZ_ENFORCED_ROUTE_KEYS", "route.admin.settings, route.admin.users")
	t.Setenv("AUTHZ_CAP_KEYS", "cap.users.authz")
	t.Setenv("HMS_SECURITY_CORS_ORIGINS", "https://hostel.example.edu,https://admin.example.edu")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Authz.EnforcedRouteKeys) != 2 || cfg.Authz.EnforcedRouteKeys[1] != "route.admin.users" {
		t.Errorf("route keys = %v", cfg.Authz.EnforcedRouteKeys)
	}
	if len(cfg.Authz.EnforcedCapabilityKeys) != 1 || cfg.Authz.EnforcedCapabilityKeys[0] != "cap.users.authz" {
		t.Errorf("capability keys = %v", cfg.Authz.EnforcedCapabilityKeys)
	}
	if len(cfg.Security.CORSOrigins) != 2 {
		t.Errorf("cors origins = %v", cfg.Security.CORSOrigins)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad mode", func(c *Config) { c.Authz.Mode = "sometimes" }},
		{"bad session store", func(c *Config) { c.Security.SessionStore = "redis" }},
		{"short jwt secret", func(c *Config) { c.Security.JWTSecret = "short" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"HMS_SERVER_PORT", "server.port"},
		{"HMS_SECURITY_JWT_SECRET", "security.jwt_secret"},
		{"HMS_AUTHZ_MODE", "authz.mode"},
		{"AUTHZ_MODE", "authz.mode"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.key); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
