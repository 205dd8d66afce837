package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	base := func() Config {
		return Config{
			Env:        "development",
			Port:       "8080",
			JWTSecret:  "secure-secret-at-least-32-chars-long",
			DBDriver:   "postgres",
			DBPassword: "secure-password",
			DBSSLMode:  "require",
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"development defaults", func(*Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"sqlite driver", func(c *Config) { c.DBDriver = "sqlite" }, false},
		{"negative page size", func(c *Config) { c.PageSize = -1 }, true},
		{"negative cache ttl", func(c *Config) { c.HomeCacheTTLSeconds = -5 }, true},
		{"production ok", func(c *Config) { c.Env = "production" }, false},
		{"production default secret", func(c *Config) { c.Env = "production"; c.JWTSecret = defaultJWTSecret }, true},
		{"production short secret", func(c *Config) { c.Env = "prod"; c.JWTSecret = "short" }, true},
		{"production weak db password", func(c *Config) { c.Env = "production"; c.DBPassword = "password" }, true},
		{"production ssl disabled", func(c *Config) { c.Env = "production"; c.DBSSLMode = "disable" }, true},
		{"production sqlite skips db checks", func(c *Config) {
			c.Env = "production"
			c.DBDriver = "sqlite"
			c.DBPassword = ""
			c.DBSSLMode = "disable"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()
	defer os.Unsetenv("APP_ENV")
	os.Setenv("APP_ENV", "development")

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8375", c.Port)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, 10, c.PageSize)
	assert.Equal(t, 12, c.GroupFeedCap)
	assert.Equal(t, 5, c.MostCommentedLimit)
	assert.Equal(t, 20*time.Second, c.HomeCacheTTL())
	assert.True(t, c.HomeCacheInvalidateOnWrite)
	assert.Equal(t, "/auth/login/", c.LoginURL)
	assert.Equal(t, 7*24*time.Hour, c.TokenTTL())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	defer viper.Reset()
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_DRIVER")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("HOME_CACHE_TTL_SECONDS")

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_DRIVER", "  SQLite ")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("HOME_CACHE_TTL_SECONDS", "60")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, time.Minute, c.HomeCacheTTL())
}

func TestLoadConfig_MissingProfileFile(t *testing.T) {
	defer viper.Reset()
	defer os.Unsetenv("APP_ENV")
	os.Setenv("APP_ENV", "staging")

	_, err := LoadConfig()
	assert.Error(t, err)
}
