package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	recorder := NewRecorder()
	scoped := NewScopedAPI("pipeline", NewScopedAPI("extract", recorder))

	scoped.ReportWarning("extractor.read-text", "stale")
	scoped.ReportBroken("extractor.enumerate")
	scoped.ReportCount("extractor.reviews", 3)
	scoped.ReportDebug("loaded page")

	warnings := recorder.Reports("warning")
	require.Len(t, warnings, 1)
	require.Equal(t, "extract: pipeline: extractor.read-text", warnings[0].ID)
	require.Equal(t, []any{"stale"}, warnings[0].Params)

	require.Equal(t, 1, recorder.Count("broken", "extractor.enumerate"))
	require.Equal(t, int64(3), recorder.Reports("count")[0].Count)
	require.Len(t, recorder.Reports(""), 4)
}
