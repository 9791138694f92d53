// Package pageload drives a session to a product page and waits for its
// lazily loaded reviews to render.
package pageload

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"reviewscope-backend/internal/automation"
	"reviewscope-backend/internal/components/assert"
	"reviewscope-backend/internal/components/chrono"
	"reviewscope-backend/internal/components/fault"
	"reviewscope-backend/internal/components/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("internal/pageload")

const (
	report_loader_scroll   = "loader.scroll"
	report_loader_snapshot = "loader.snapshot"
	report_loader_count    = "loader.count-markers"
)

type Options struct {
	// ContentSelector is the content marker, its presence means the page
	// rendered enough to start extraction.
	ContentSelector string
	// LoadTimeout bounds the wait for the content marker.
	LoadTimeout         time.Duration
	MaxScrollIterations int
	ScrollPause         time.Duration
	// EarlyExitPasses stops scrolling once the number of content markers has
	// not grown for this many consecutive passes. 0 always runs every
	// iteration.
	EarlyExitPasses int
	// SnapshotDir, if set, receives the html of every loaded page.
	SnapshotDir string
}

func DefaultOptions() Options {
	return Options{
		ContentSelector:     ".item-content",
		LoadTimeout:         time.Minute,
		MaxScrollIterations: 5,
		ScrollPause:         time.Second * 2,
	}
}

type Loader struct {
	options Options
	time    chrono.TimeAPI
	tel     telemetry.API
}

func NewLoader(options Options, time chrono.TimeAPI, tel telemetry.API) Loader {
	assert.NotEmptyStr(options.ContentSelector)
	assert.NotNil(time)
	assert.NotNil(tel)
	return Loader{
		options: options,
		time:    time,
		tel:     telemetry.NewScopedAPI("pageload", tel),
	}
}

// Load navigates to target, waits for the content marker and runs the
// scroll stabilization loop. The returned document is the live session, it
// may still be mutating.
func (l Loader) Load(ctx context.Context, target string, session automation.Session) (automation.Document, error) {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()
	span.SetAttributes(attribute.String("url", target))
	startedAt := l.time.Now()

	err := session.Navigate(ctx, target)
	if err != nil {
		span.RecordError(err)
		return nil, loadFault("pageload.navigate", err)
	}

	found, err := session.WaitForElement(ctx, l.options.ContentSelector, l.options.LoadTimeout)
	if err != nil {
		span.RecordError(err)
		return nil, loadFault("pageload.wait", err)
	}
	if !found {
		return nil, fault.Newf(
			fault.LoadTimeout,
			"pageload.wait",
			"content marker %q did not appear within %s",
			l.options.ContentSelector, l.options.LoadTimeout,
		)
	}

	passes, err := l.stabilize(ctx, session)
	span.SetAttributes(attribute.Int("scroll_passes", passes))
	if err != nil {
		return nil, err
	}

	if l.options.SnapshotDir != "" {
		path, err := l.snapshot(ctx, target, startedAt, session)
		if err != nil {
			l.tel.ReportWarning(report_loader_snapshot, err)
		} else {
			l.tel.ReportDebug("saved snapshot", path)
		}
	}

	return session, nil
}

func loadFault(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fault.New(fault.LoadTimeout, op, err)
	}
	return fault.New(fault.LoadFailed, op, err)
}

// stabilize scrolls to the bottom and pauses, MaxScrollIterations times.
// A failed scroll is not fatal, the page may still contain reviews.
func (l Loader) stabilize(ctx context.Context, session automation.Session) (int, error) {
	lastCount := -1
	unchanged := 0

	for i := 0; i < l.options.MaxScrollIterations; i++ {
		err := session.TriggerScroll(ctx)
		if err != nil {
			l.tel.ReportWarning(report_loader_scroll, err, i)
		}
		err = l.time.Sleep(ctx, l.options.ScrollPause)
		if err != nil {
			return i + 1, loadFault("pageload.stabilize", err)
		}

		if l.options.EarlyExitPasses <= 0 {
			continue
		}
		markers, err := session.Elements(ctx, l.options.ContentSelector)
		if err != nil {
			l.tel.ReportWarning(report_loader_count, err)
			continue
		}
		if len(markers) == lastCount {
			unchanged++
		} else {
			unchanged = 0
		}
		lastCount = len(markers)
		if unchanged >= l.options.EarlyExitPasses {
			l.tel.ReportDebug("content stabilized early", i+1, lastCount)
			return i + 1, nil
		}
	}
	return l.options.MaxScrollIterations, nil
}

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func snapshotName(target string, at time.Time) string {
	name := target
	parsed, err := url.Parse(target)
	if err == nil && parsed.Host != "" {
		name = parsed.Host + parsed.Path
	}
	name = strings.Trim(unsafePathChars.ReplaceAllString(name, "_"), "_")
	if len(name) > 120 {
		name = name[:120]
	}
	return fmt.Sprintf("%s-%d.html", name, at.Unix())
}

// snapshot names the file after the time the load started.
func (l Loader) snapshot(ctx context.Context, target string, at time.Time, doc automation.Document) (string, error) {
	html, err := doc.HTML(ctx)
	if err != nil {
		return "", err
	}
	err = os.MkdirAll(l.options.SnapshotDir, 0777)
	if err != nil {
		return "", err
	}
	path := filepath.Join(l.options.SnapshotDir, snapshotName(target, at))
	return path, os.WriteFile(path, []byte(html), 0666)
}
