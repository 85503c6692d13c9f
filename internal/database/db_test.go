package database

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestWaitForDatabaseRecovers verifies the probe keeps retrying through
// transient failures and returns once the database answers.
func TestWaitForDatabaseRecovers(t *testing.T) {
	attempts := 0
	ping := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	cfg := Config{RetryInterval: time.Millisecond}
	err := waitForDatabase(ping, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "probe should retry until the first success")
}

// TestWaitForDatabaseBounded verifies MaxWait turns the wait into a
// startup failure instead of blocking forever.
func TestWaitForDatabaseBounded(t *testing.T) {
	ping := func() error { return errors.New("connection refused") }

	cfg := Config{
		RetryInterval: time.Millisecond,
		MaxWait:       25 * time.Millisecond,
	}

	start := time.Now()
	err := waitForDatabase(ping, cfg, zap.NewNop())
	assert.Error(t, err, "bounded wait should give up")
	assert.Less(t, time.Since(start), 2*time.Second, "failure should arrive near MaxWait, not hang")
}

// TestDSN verifies the rendered connection string.
func TestDSN(t *testing.T) {
	cfg := Config{
		Host: "db", Port: "5432", User: "badger", Password: "pw",
		Name: "badgereg", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://badger:pw@db:5432/badgereg?sslmode=disable", cfg.DSN())
}

// TestConfigFromEnvDefaults verifies the local-development defaults.
func TestConfigFromEnvDefaults(t *testing.T) {
	cfg := ConfigFromEnv()
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, 10, cfg.MaxOpenConns)
	assert.Equal(t, time.Duration(0), cfg.MaxWait, "wait-forever is the default")
}

// TestConfigFromEnvOverrides verifies env vars take precedence.
func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	t.Setenv("DB_MAX_WAIT", "90s")

	cfg := ConfigFromEnv()
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 3, cfg.MaxOpenConns)
	assert.Equal(t, 90*time.Second, cfg.MaxWait)
}
