package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"reviewscope-backend/internal/automation"
	"reviewscope-backend/internal/automation/automationtest"
	"reviewscope-backend/internal/components/chrono"
	"reviewscope-backend/internal/components/telemetry"
	"reviewscope-backend/internal/config"
	"reviewscope-backend/internal/sentiment"
	"reviewscope-backend/internal/sentiment/lexicon"
	"reviewscope-backend/internal/sentiment/remote"

	"github.com/stretchr/testify/require"
)

func TestNewClassifier(t *testing.T) {
	tel := telemetry.NewRecorder()

	classifier, err := NewClassifier(config.Classifier{}, tel)
	require.NoError(t, err)
	require.IsType(t, &lexicon.Classifier{}, classifier)

	classifier, err = NewClassifier(config.Classifier{Provider: config.ProviderRemote, Endpoint: "http://localhost:1"}, tel)
	require.NoError(t, err)
	require.IsType(t, &remote.Classifier{}, classifier)

	_, err = NewClassifier(config.Classifier{Provider: "crystal-ball"}, tel)
	require.Error(t, err)
}

func TestOpenRunsConfiguredPipeline(t *testing.T) {
	cfg := config.Defaults()
	cfg.Database.File = filepath.Join(t.TempDir(), "reviews.db")
	cfg.Scraper.MaxScrollIterations = 2

	s := automationtest.NewSession(map[string][]automation.Element{
		cfg.Scraper.ContentSelector: {automationtest.Element{Content: "marker"}},
		cfg.Scraper.ReviewSelector: {
			automationtest.Element{Content: "This is an excellent and wonderful product."},
			automationtest.Element{Content: "Awful. It broke and the support was terrible."},
		},
	})
	launcher := &automationtest.Launcher{Session: s}
	clock := chrono.NewFakeTime(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	ctx := context.Background()
	a, err := OpenWith(ctx, cfg, Overrides{Launcher: launcher, Time: clock}, telemetry.NewRecorder())
	require.NoError(t, err)
	defer a.Close()

	result, err := a.Pipeline.Process(ctx, "https://shop.example/p/blender")
	require.NoError(t, err)
	require.Equal(t, 2, result.ClassifiedCount)
	require.Equal(t, "blender", result.ProductName)
	require.Equal(t, 2, s.Scrolls())
	require.True(t, launcher.Options()[0].Headless)
	require.Greater(t, result.Reviews[0].Sentiment, sentiment.ThreeStars)
	require.Less(t, result.Reviews[1].Sentiment, sentiment.ThreeStars)

	records, err := a.Store.GetAnalyses(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
}
