package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SESSION_BACKEND", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "redis", cfg.Sessions.Backend)
	assert.Equal(t, "sessionid", cfg.Sessions.CookieName)
	assert.Equal(t, 14*24*time.Hour, cfg.Sessions.TTL)
	assert.Contains(t, cfg.Database.URL, "postgres://")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/tracker.db")
	t.Setenv("SESSION_BACKEND", "bolt")
	t.Setenv("SESSION_TTL", "3600")
	t.Setenv("APP_TIME_ZONE", "Europe/Madrid")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/tracker.db", cfg.Database.SQLitePath)
	assert.Equal(t, "bolt", cfg.Sessions.Backend)
	assert.Equal(t, time.Hour, cfg.Sessions.TTL)
	assert.Equal(t, "Europe/Madrid", cfg.Location().String())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	assert.Error(t, err)
}
