package internal

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Auth.Secret = "s3cret"
	return cfg
}

func TestDefaultConfig_NeedsSecret(t *testing.T) {
	cfg := NewDefaultConfig()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("jwt mode without secret should fail")
	}
	if !strings.Contains(err.Error(), "secret is empty") {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("default config with secret should pass: %v", err)
	}
}

func TestAuthConfig_EmptyModeDefaultsJWT(t *testing.T) {
	cfg := AuthConfig{Secret: "x"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to jwt: %v", err)
	}
	if cfg.Mode != AuthModeJWT {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeJWT)
	}
}

func TestAuthConfig_HeaderMode(t *testing.T) {
	cfg := AuthConfig{Mode: "header"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("header mode needs no secret: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Secret: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestStoreConfig(t *testing.T) {
	cfg := StoreConfig{}
	cfg.SQLite.Path = "forum.db"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty driver should default to sqlite: %v", err)
	}
	if cfg.Driver != StoreDriverSQLite {
		t.Errorf("driver = %q", cfg.Driver)
	}

	cfg = StoreConfig{Driver: StoreDriverMongo}
	if err := cfg.Validate(); err == nil {
		t.Fatal("mongo without uri should fail")
	}
	cfg.Mongo = MongoConfig{URI: "mongodb://localhost:27017", Database: "forum"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("mongo with uri should pass: %v", err)
	}

	cfg = StoreConfig{Driver: "postgres"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown driver should fail")
	}
}

func TestRedisConfig(t *testing.T) {
	cfg := RedisConfig{}
	if cfg.Enabled() {
		t.Error("empty addr should disable cache")
	}
	cfg = RedisConfig{Addr: "localhost:6379", DB: 16}
	if err := cfg.Validate(); err == nil {
		t.Error("db 16 should fail")
	}
	cfg = RedisConfig{Addr: "localhost:6379", TTL: -time.Second}
	if err := cfg.Validate(); err == nil {
		t.Error("negative ttl should fail")
	}
}

func TestFullConfig_PortValidation(t *testing.T) {
	cfg := validConfig()
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch port error")
	}
}

func TestFullConfig_CORSRequiresOrigins(t *testing.T) {
	cfg := validConfig()
	cfg.App.CORS.AllowedOrigins = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty allowed origins should fail")
	}
}
