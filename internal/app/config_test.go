package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/odyssey-erp/usersync/testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("USERSYNC_API_URL", "http://localhost:5000")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.APIURL)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.Equal(t, StorePostgres, cfg.APIStore)
	assert.Equal(t, ":5000", cfg.APIAddr)
	assert.Equal(t, 120, cfg.APIRateLimit)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsUnknownStore(t *testing.T) {
	t.Setenv("API_STORE", "sqlite")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsNegativeTimeout(t *testing.T) {
	t.Setenv("USERSYNC_HTTP_TIMEOUT", "-1s")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConsoleConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")
	_, err := LoadConsoleConfig()
	assert.Error(t, err)

	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	cfg, err := LoadConsoleConfig()
	require.NoError(t, err)
	assert.Equal(t, "s", cfg.SessionSecret)
}

func TestInTestMode(t *testing.T) {
	assert.True(t, InTestMode(), "importing the testing package enables test mode")
}
