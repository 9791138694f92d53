// dev bootstraps a local development environment: a migrated database
// under dev/.state, local config overrides pointing at it and optionally a
// dockerized headless chrome.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"reviewscope-backend/internal/config"
	"reviewscope-backend/internal/store/db"
	"reviewscope-backend/pkg/migrations"
)

const stateDir = "dev/.state"

func cmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	fmt.Printf("$ %s %s\n", name, strings.Join(args, " "))
	return cmd.Run()
}

// writeIfMissing never overwrites, a developer's edits win.
func writeIfMissing(path, contents string) error {
	_, err := os.Stat(path)
	if err == nil {
		fmt.Println("keeping existing", path)
		return nil
	}
	fmt.Println("writing", path)
	return os.WriteFile(path, []byte(contents), 0666)
}

const localConfigTemplate = `{
  database: { file: %q },
  scraper: {
    snapshot_dir: %q,
    browser: { control_url: %q },
  },
  classifier: { dump_dir: %q },
}
`

const telemetryConfig = `{
  otlp: {
    traces: { grpc_endpoint: "http://localhost:4317" },
    metrics: { grpc_endpoint: "http://localhost:4317" },
  },
}
`

func create(ctx context.Context, recreate, chrome bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll(stateDir)
		if err != nil {
			return err
		}
		os.Remove(localConfigPath())
	}
	err = os.MkdirAll(stateDir, 0777)
	if err != nil {
		return err
	}

	state, err := filepath.Abs(stateDir)
	if err != nil {
		return err
	}
	dbPath := filepath.Join(state, "reviews.db")
	database, err := migrations.OpenAndMigrateDB(ctx, migrations.Target{File: dbPath}, db.Schema)
	if err != nil {
		return err
	}
	database.Close()
	fmt.Println("database ready at", dbPath)

	controlURL := ""
	if chrome {
		err = cmd("docker", "run", "-d", "--rm", "--name", "reviewscope-chrome", "-p", "9222:9222", "chromedp/headless-shell:latest")
		if err != nil {
			return fmt.Errorf("start chrome: %w", err)
		}
		controlURL = "http://localhost:9222"
	}

	err = writeIfMissing(localConfigPath(), fmt.Sprintf(
		localConfigTemplate,
		dbPath,
		filepath.Join(state, "snapshots"),
		controlURL,
		filepath.Join(state, "http"),
	))
	if err != nil {
		return err
	}
	return writeIfMissing("telemetry.local.json5", telemetryConfig)
}

func localConfigPath() string {
	ext := filepath.Ext(config.DefaultFile)
	return strings.TrimSuffix(config.DefaultFile, ext) + ".local" + ext
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	chrome := flag.Bool("chrome", false, "run chrome in docker instead of launching a local browser")
	flag.Parse()

	err := create(context.Background(), *recreate, *chrome)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}
