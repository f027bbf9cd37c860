package config_test

import (
	"testing"
	"time"

	"labchem/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := config.FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.System.Addr)
	assert.False(t, cfg.IsProd())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, "bcrypt", cfg.Security.PasswordHasher)
	assert.Empty(t, cfg.RabbitMQ.URL)

	// No key configured: a random one is generated per process
	assert.True(t, cfg.Session.SecretGenerated)
	assert.Len(t, cfg.Session.SecretKey, 64)
	other, err := config.FromViper(newViper())
	require.NoError(t, err)
	assert.NotEqual(t, cfg.Session.SecretKey, other.Session.SecretKey)
}

func TestFromViper_Overrides(t *testing.T) {
	v := newViper()
	v.Set("APP_ENV", "production")
	v.Set("SECRET_KEY", "from-env")
	v.Set("DATABASE_DRIVER", "Postgres")
	v.Set("SESSION_STORE", "redis")
	v.Set("SESSION_TTL", "30m")
	v.Set("PASSWORD_HASHER", "argon2id")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.Equal(t, "from-env", cfg.Session.SecretKey)
	assert.False(t, cfg.Session.SecretGenerated)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "argon2id", cfg.Security.PasswordHasher)
}

func TestFromViper_Invalid(t *testing.T) {
	for key, value := range map[string]string{
		"DATABASE_DRIVER": "mysql",
		"SESSION_STORE":   "file",
		"PASSWORD_HASHER": "md5",
		"SESSION_TTL":     "0s",
		"ADMIN_EMAIL":     "admin@x.com",
	} {
		v := newViper()
		v.Set(key, value)
		_, err := config.FromViper(v)
		assert.Error(t, err, "%s=%s should be rejected", key, value)
	}
}
