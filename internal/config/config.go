// Package config reads the application settings from the environment,
// an optional config file and defaults.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting.
type Config struct {
	System struct {
		Addr string // listen address
		Env  string // "development" or "production"
	}
	Database struct {
		Driver string // "sqlite" or "postgres"
		DSN    string
	}
	Session struct {
		SecretKey       string        // signs session cookies
		SecretGenerated bool          // SecretKey was generated for this process
		TTL             time.Duration // lifetime of a session after its last change
		Store           string        // "memory" or "redis"
		CookieName      string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Security struct {
		PasswordHasher string // "bcrypt" or "argon2id"
	}
	Admin struct {
		FirstName string
		LastName  string
		Email     string
		Password  string
	}
	RabbitMQ struct {
		URL string // empty disables event publishing
	}
}

// IsProd reports whether the app runs in production mode.
func (c *Config) IsProd() bool {
	return strings.HasPrefix(strings.ToLower(c.System.Env), "p")
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_ADDR", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "labchem.db")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("SESSION_COOKIE", "labchem_session")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PASSWORD_HASHER", "bcrypt")
	v.SetDefault("ADMIN_FIRSTNAME", "Lab")
	v.SetDefault("ADMIN_LASTNAME", "Admin")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("RABBITMQ_URL", "")
}

// Load reads config.yaml (if present) and the environment.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	v.AutomaticEnv() // Load environment variables
	return FromViper(v)
}

// FromViper builds a Config from an already prepared viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	cfg.System.Addr = v.GetString("APP_ADDR")
	cfg.System.Env = v.GetString("APP_ENV")
	cfg.Database.Driver = strings.ToLower(v.GetString("DATABASE_DRIVER"))
	cfg.Database.DSN = v.GetString("DATABASE_DSN")
	cfg.Session.SecretKey = v.GetString("SECRET_KEY")
	cfg.Session.TTL = v.GetDuration("SESSION_TTL")
	cfg.Session.Store = strings.ToLower(v.GetString("SESSION_STORE"))
	cfg.Session.CookieName = v.GetString("SESSION_COOKIE")
	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Security.PasswordHasher = strings.ToLower(v.GetString("PASSWORD_HASHER"))
	cfg.Admin.FirstName = v.GetString("ADMIN_FIRSTNAME")
	cfg.Admin.LastName = v.GetString("ADMIN_LASTNAME")
	cfg.Admin.Email = v.GetString("ADMIN_EMAIL")
	cfg.Admin.Password = v.GetString("ADMIN_PASSWORD")
	cfg.RabbitMQ.URL = v.GetString("RABBITMQ_URL")

	if cfg.Session.SecretKey == "" {
		key, err := randomKey()
		if err != nil {
			return nil, err
		}
		cfg.Session.SecretKey = key
		cfg.Session.SecretGenerated = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown option values.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Session.Store)
	}
	switch c.Security.PasswordHasher {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("unsupported PASSWORD_HASHER %q", c.Security.PasswordHasher)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func randomKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
