package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{Port: "8080"},
		Store:  StoreConfig{DatabasePath: "/tmp/covers.db"},
		Catalog: CatalogConfig{
			Territories:  []string{"us", "au"},
			ResultLimit:  40,
			ProbeTimeout: 5 * time.Second,
		},
		Merge: MergeConfig{UndoWindow: 3 * time.Second},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.App.Environment = "space"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Logger.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Catalog.Territories = nil
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Catalog.ResultLimit = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Merge.UndoWindow = 0
	assert.Error(t, cfg.Validate())
}

func TestSplitTerritories(t *testing.T) {
	assert.Equal(t, []string{"us", "au", "mx", "jp"}, splitTerritories("us,au,mx,jp"))
	assert.Equal(t, []string{"us", "jp"}, splitTerritories(" US , jp , us "),
		"lowercased, trimmed, deduplicated, order preserved")
	assert.Empty(t, splitTerritories(",,"))
}

func TestExpandPath(t *testing.T) {
	got, err := expandPath("", "/default/covers.db")
	require.NoError(t, err)
	assert.Equal(t, "/default/covers.db", got)

	got, err = expandPath("/var/lib/covers.db", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/covers.db", got)

	got, err = expandPath("~/covers.db", "/default")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.NotContains(t, got, "~")
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("COVERS_TEST_VALUE", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "COVERS_TEST_VALUE", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "COVERS_TEST_VALUE", "default"))
	assert.Equal(t, "default", getConfigValue("", "COVERS_TEST_UNSET", "default"))
}

func TestParseDurationValue(t *testing.T) {
	d, err := parseDurationValue("2s", "COVERS_TEST_DURATION", "5s")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)

	d, err = parseDurationValue("", "COVERS_TEST_DURATION_UNSET", "5s")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	_, err = parseDurationValue("soon", "COVERS_TEST_DURATION", "5s")
	assert.Error(t, err)
}
