package main

import (
	"context"
	"log/slog"
	"os"

	"reviewscope-backend/cmd/reviewscope/commands"
	"reviewscope-backend/internal/components/telemetry"
	"reviewscope-backend/pkg/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()

	t, err := telemetry.SetupFromEnv(ctx, "reviewscope")
	if err != nil {
		slog.Debug("otel disabled", "err", err)
	}

	err = commands.ExecuteContext(ctx)
	shutdownErr := t.Shutdown(context.Background())
	if shutdownErr != nil {
		slog.Warn("failed to flush telemetry", "err", shutdownErr)
	}
	if err != nil {
		os.Exit(1)
	}
}
