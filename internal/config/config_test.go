package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "reviewscope.json5"))
	require.NoError(t, err)
	require.Equal(t, Defaults(), config)

	require.Equal(t, ".item-content", config.Scraper.ContentSelector)
	require.Equal(t, ".item-content .content", config.Scraper.ReviewSelector)
	require.Equal(t, 5, config.Scraper.SessionPolicy().MaxAttempts)
	require.Equal(t, 2*time.Second, config.Scraper.SessionPolicy().Delay)
	require.Equal(t, time.Minute, config.Scraper.LoaderOptions().LoadTimeout)
	require.True(t, config.Scraper.AutomationOptions().Headless)
	require.Equal(t, ProviderLexicon, config.Classifier.Provider)
	require.Equal(t, 8000, config.Service.Port)
}

func TestLoadMergesFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reviewscope.json5")

	err := os.WriteFile(path, []byte(`{
		// comments are allowed
		scraper: {
			max_scroll_iterations: 8,
			browser: { headless: false },
		},
		classifier: { provider: "remote", api_key: "from-main" },
	}`), 0666)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "reviewscope.local.json5"), []byte(`{
		classifier: { api_key: "from-local" },
		database: { url: "libsql://reviews.example.turso.io" },
	}`), 0666)
	require.NoError(t, err)

	config, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 8, config.Scraper.MaxScrollIterations)
	require.Equal(t, 2000, config.Scraper.ScrollPauseMs)
	require.False(t, config.Scraper.AutomationOptions().Headless)
	require.True(t, config.Scraper.AutomationOptions().BlockResources)
	require.Equal(t, ProviderRemote, config.Classifier.Provider)
	require.Equal(t, "from-local", config.Classifier.APIKey)
	require.Equal(t, 30*time.Second, config.Classifier.RemoteOptions().Timeout)

	target, err := config.DatabaseTarget()
	require.NoError(t, err)
	require.Equal(t, "libsql://reviews.example.turso.io", target.URL)
	require.Empty(t, target.File)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviewscope.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{ scraper: `), 0666))

	_, err := Load(path)
	require.Error(t, err)
}

func TestDatabaseTargetDefaultsToDataDir(t *testing.T) {
	config := Defaults()
	config.Database.File = "/tmp/reviews.db"
	target, err := config.DatabaseTarget()
	require.NoError(t, err)
	require.Equal(t, "/tmp/reviews.db", target.File)
}
