// Package config loads reviewscope.json5 and turns it into the options of
// each component.
package config

import (
	"time"

	"reviewscope-backend/internal/automation"
	"reviewscope-backend/internal/components/configutil"
	"reviewscope-backend/internal/extract"
	"reviewscope-backend/internal/pageload"
	"reviewscope-backend/internal/session"
	"reviewscope-backend/internal/sentiment/remote"
	"reviewscope-backend/pkg/migrations"

	"github.com/adrg/xdg"
)

const DefaultFile = "reviewscope.json5"

// DataFile is the database location used when database.file and
// database.url are both unset, relative to XDG_DATA_HOME.
const DataFile = "reviewscope/reviews.db"

type Database struct {
	File      string `json:"file"`
	URL       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

type Browser struct {
	Headless       bool   `json:"headless"`
	Bin            string `json:"bin"`
	ControlURL     string `json:"control_url"`
	BlockResources bool   `json:"block_resources"`
	UserAgent      string `json:"user_agent"`
}

type Scraper struct {
	ContentSelector     string  `json:"content_selector"`
	ReviewSelector      string  `json:"review_selector"`
	MaxScrollIterations int     `json:"max_scroll_iterations"`
	ScrollPauseMs       int     `json:"scroll_pause_ms"`
	SessionMaxRetries   int     `json:"session_max_retries"`
	SessionRetryDelayMs int     `json:"session_retry_delay_ms"`
	LoadTimeoutMs       int     `json:"load_timeout_ms"`
	PageLoadTimeoutMs   int     `json:"page_load_timeout_ms"`
	EarlyExitPasses     int     `json:"early_exit_passes"`
	SnapshotDir         string  `json:"snapshot_dir"`
	Browser             Browser `json:"browser"`
}

const (
	ProviderLexicon = "lexicon"
	ProviderRemote  = "remote"
)

type Classifier struct {
	Provider          string  `json:"provider"`
	Endpoint          string  `json:"endpoint"`
	APIKey            string  `json:"api_key"`
	TimeoutMs         int     `json:"timeout_ms"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	Concurrency       int     `json:"concurrency"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
	DumpDir           string  `json:"dump_dir"`
}

type Service struct {
	Port        int    `json:"port"`
	AccessToken string `json:"access_token"`
}

type Config struct {
	Database   Database   `json:"database"`
	Scraper    Scraper    `json:"scraper"`
	Classifier Classifier `json:"classifier"`
	Service    Service    `json:"service"`
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// Defaults returns the configuration used for every key missing from the
// configuration files.
func Defaults() Config {
	loader := pageload.DefaultOptions()
	policy := session.DefaultPolicy()
	return Config{
		Scraper: Scraper{
			ContentSelector:     loader.ContentSelector,
			ReviewSelector:      extract.DefaultReviewSelector,
			MaxScrollIterations: loader.MaxScrollIterations,
			ScrollPauseMs:       int(loader.ScrollPause.Milliseconds()),
			SessionMaxRetries:   policy.MaxAttempts,
			SessionRetryDelayMs: int(policy.Delay.Milliseconds()),
			LoadTimeoutMs:       int(loader.LoadTimeout.Milliseconds()),
			PageLoadTimeoutMs:   30000,
			Browser: Browser{
				Headless:       true,
				BlockResources: true,
			},
		},
		Classifier: Classifier{
			Provider:          ProviderLexicon,
			Endpoint:          remote.DefaultEndpoint,
			TimeoutMs:         30000,
			RequestsPerSecond: 5,
			Concurrency:       1,
		},
		Service: Service{Port: 8000},
	}
}

// Load reads path (and its .local override) on top of Defaults. Missing
// files are not an error.
func Load(path string) (Config, error) {
	config := Defaults()
	if path == "" {
		return config, nil
	}

	_, err := configutil.Overlay(path, &config)
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

// DatabaseTarget resolves where the database lives, falling back to the
// XDG data directory.
func (c Config) DatabaseTarget() (migrations.Target, error) {
	target := migrations.Target{
		File:      c.Database.File,
		URL:       c.Database.URL,
		AuthToken: c.Database.AuthToken,
	}
	if target.URL == "" && target.File == "" {
		path, err := xdg.DataFile(DataFile)
		if err != nil {
			return migrations.Target{}, err
		}
		target.File = path
	}
	return target, nil
}

func (s Scraper) SessionPolicy() session.Policy {
	return session.Policy{
		MaxAttempts: s.SessionMaxRetries,
		Delay:       ms(s.SessionRetryDelayMs),
	}
}

func (s Scraper) LoaderOptions() pageload.Options {
	return pageload.Options{
		ContentSelector:     s.ContentSelector,
		LoadTimeout:         ms(s.LoadTimeoutMs),
		MaxScrollIterations: s.MaxScrollIterations,
		ScrollPause:         ms(s.ScrollPauseMs),
		EarlyExitPasses:     s.EarlyExitPasses,
		SnapshotDir:         s.SnapshotDir,
	}
}

func (s Scraper) AutomationOptions() automation.Options {
	return automation.Options{
		Headless:        s.Browser.Headless,
		BrowserBin:      s.Browser.Bin,
		ControlURL:      s.Browser.ControlURL,
		BlockResources:  s.Browser.BlockResources,
		PageLoadTimeout: ms(s.PageLoadTimeoutMs),
		UserAgent:       s.Browser.UserAgent,
	}
}

func (c Classifier) RemoteOptions() remote.Options {
	return remote.Options{
		Endpoint:          c.Endpoint,
		APIKey:            c.APIKey,
		Timeout:           ms(c.TimeoutMs),
		RequestsPerSecond: c.RequestsPerSecond,
		CloudflareBypass:  c.CloudflareBypass,
		DumpDir:           c.DumpDir,
	}
}
