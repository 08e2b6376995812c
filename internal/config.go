package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Store drivers.
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverMongo  = "mongo"
)

// Auth modes.
const (
	AuthModeJWT    = "jwt"
	AuthModeHeader = "header"
)

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Store StoreConfig       `yaml:"store"`
	Auth  AuthConfig        `yaml:"auth"`
	Cache CacheConfig       `yaml:"cache"`
	Users UsersConfig       `yaml:"users"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Cache.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" env:"FORUM_LOG_LEVEL"`
	HTTP     HTTPConfig `yaml:"http"`
	CORS     CORSConfig `yaml:"cors"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return c.CORS.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" env:"FORUM_HTTP_PORT"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CORSConfig controls cross-origin access. "*" allows any origin.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"FORUM_CORS_ALLOWED_ORIGINS" envSeparator:","`
	MaxAge         int      `yaml:"max_age" env:"FORUM_CORS_MAX_AGE"`
}

// Validate validates the CORS configuration.
func (c *CORSConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AllowedOrigins, validation.Required),
		validation.Field(&c.MaxAge, validation.Min(0)),
	)
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Driver string       `yaml:"driver" env:"FORUM_STORE_DRIVER"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	Mongo  MongoConfig  `yaml:"mongo"`
}

// Validate validates the store configuration for the selected driver.
func (c *StoreConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = StoreDriverSQLite
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.In(StoreDriverSQLite, StoreDriverMongo)),
	); err != nil {
		return err
	}
	if c.Driver == StoreDriverMongo {
		return c.Mongo.Validate()
	}
	return c.SQLite.Validate()
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"FORUM_SQLITE_PATH"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// MongoConfig holds MongoDB connection configuration.
type MongoConfig struct {
	URI      string `yaml:"uri" env:"FORUM_MONGO_URI"`
	Database string `yaml:"database" env:"FORUM_MONGO_DATABASE"`
}

// Validate validates the MongoDB configuration.
func (c *MongoConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URI, validation.Required),
		validation.Field(&c.Database, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how the caller's identity is resolved:
//   - "jwt" (default): HS256 bearer tokens signed with Secret.
//   - "header": trust Header as set by an authenticating gateway.
type AuthConfig struct {
	Mode   string `yaml:"mode" env:"FORUM_AUTH_MODE"`
	Secret string `yaml:"secret" env:"FORUM_AUTH_SECRET"`
	Header string `yaml:"header" env:"FORUM_AUTH_HEADER"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeJWT
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeJWT, AuthModeHeader)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeJWT && c.Secret == "" {
		return fmt.Errorf("auth: mode is %q but secret is empty", AuthModeJWT)
	}
	return nil
}

// CacheConfig holds the optional user cache configuration.
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return c.Redis.Validate()
}

// RedisConfig configures the Redis connection. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"FORUM_REDIS_ADDR"`
	Password string        `yaml:"password" env:"FORUM_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"FORUM_REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" env:"FORUM_REDIS_TTL"`
}

// Enabled reports whether a Redis address is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// Validate validates the Redis configuration.
func (c *RedisConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DB, validation.Min(0), validation.Max(15)),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
	)
}

// UsersConfig points at an optional directory of YAML user files.
type UsersConfig struct {
	Dir   string `yaml:"dir" env:"FORUM_USERS_DIR"`
	Watch bool   `yaml:"watch" env:"FORUM_USERS_WATCH"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{"*"},
				MaxAge:         3600,
			},
		},
		Store: StoreConfig{
			Driver: StoreDriverSQLite,
			SQLite: SQLiteConfig{
				Path: "./forum.db",
			},
			Mongo: MongoConfig{
				Database: "mentorlink",
			},
		},
		Auth: AuthConfig{
			Mode:   AuthModeJWT,
			Header: "X-User-ID",
		},
		Cache: CacheConfig{
			Redis: RedisConfig{
				TTL: 10 * time.Minute,
			},
		},
	}
}
