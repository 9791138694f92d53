// Package app wires the configured components into a ready pipeline.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reviewscope-backend/internal/automation"
	"reviewscope-backend/internal/automation/rodbackend"
	"reviewscope-backend/internal/components/chrono"
	"reviewscope-backend/internal/components/telemetry"
	"reviewscope-backend/internal/config"
	"reviewscope-backend/internal/extract"
	"reviewscope-backend/internal/pageload"
	"reviewscope-backend/internal/pipeline"
	"reviewscope-backend/internal/sentiment"
	"reviewscope-backend/internal/sentiment/lexicon"
	"reviewscope-backend/internal/sentiment/remote"
	"reviewscope-backend/internal/session"
	"reviewscope-backend/internal/store"
	"reviewscope-backend/internal/store/db"
	"reviewscope-backend/pkg/migrations"
)

// NewClassifier creates the classifier named by the provider setting.
func NewClassifier(c config.Classifier, tel telemetry.API) (sentiment.Classifier, error) {
	switch c.Provider {
	case "", config.ProviderLexicon:
		return lexicon.New(), nil
	case config.ProviderRemote:
		return remote.New(c.RemoteOptions(), tel), nil
	}
	return nil, fmt.Errorf("unknown classifier provider %q", c.Provider)
}

// Overrides replaces components that are otherwise built from the
// configuration, nil fields keep the configured component.
type Overrides struct {
	Launcher   automation.Launcher
	Time       chrono.TimeAPI
	Classifier sentiment.Classifier
}

type App struct {
	Config     config.Config
	DB         *sql.DB
	Store      store.Store
	Extractor  extract.Extractor
	Classifier sentiment.Classifier
	Pipeline   pipeline.Pipeline
}

func Open(ctx context.Context, cfg config.Config, tel telemetry.API) (*App, error) {
	return OpenWith(ctx, cfg, Overrides{}, tel)
}

func OpenWith(ctx context.Context, cfg config.Config, overrides Overrides, tel telemetry.API) (*App, error) {
	target, err := cfg.DatabaseTarget()
	if err != nil {
		return nil, err
	}
	database, err := migrations.OpenAndMigrateDB(ctx, target, db.Schema)
	if err != nil {
		return nil, err
	}

	clock := overrides.Time
	if clock == nil {
		clock = chrono.StandardTime{}
	}
	launcher := overrides.Launcher
	if launcher == nil {
		launcher = rodbackend.Launcher{}
	}
	classifier := overrides.Classifier
	if classifier == nil {
		classifier, err = NewClassifier(cfg.Classifier, tel)
		if err != nil {
			database.Close()
			return nil, err
		}
	}

	reviewStore := store.NewStore(database, clock)
	extractor := extract.NewExtractor(cfg.Scraper.ReviewSelector, tel)
	sessions := session.NewManager(
		launcher,
		cfg.Scraper.AutomationOptions(),
		cfg.Scraper.SessionPolicy(),
		tel,
	)
	loader := pageload.NewLoader(cfg.Scraper.LoaderOptions(), clock, tel)

	return &App{
		Config:     cfg,
		DB:         database,
		Store:      reviewStore,
		Extractor:  extractor,
		Classifier: classifier,
		Pipeline: pipeline.NewPipeline(pipeline.Dependencies{
			Sessions:   sessions,
			Loader:     loader,
			Extractor:  extractor,
			Classifier: classifier,
			Store:      reviewStore,
		}, cfg.Classifier.Concurrency, tel),
	}, nil
}

func (a *App) Close() error {
	return errors.Join(a.Classifier.Close(), a.DB.Close())
}
