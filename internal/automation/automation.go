// Package automation is the boundary to a browser automation backend.
//
// Everything the scraper needs from a browser is expressed here so that the
// session manager, page loader and extractor can be exercised against
// in-memory fakes.
package automation

import (
	"context"
	"errors"
	"time"
)

// ErrStaleElement is returned (wrapped) by Element.Text when the element
// reference was invalidated by document mutation after enumeration.
var ErrStaleElement = errors.New("stale element reference")

// Element is a handle to a node found in a Document.
type Element interface {
	Text(ctx context.Context) (string, error)
}

// Document is a read-only view over a rendered page.
type Document interface {
	// Elements returns every element matching the css selector in document order.
	Elements(ctx context.Context, selector string) ([]Element, error)
	// HTML returns the serialized document.
	HTML(ctx context.Context) (string, error)
}

// Session is one exclusive handle to a browser automation backend instance.
type Session interface {
	Document

	Navigate(ctx context.Context, url string) error
	// WaitForElement waits up to timeout for an element matching selector,
	// found is false when the timeout elapsed.
	WaitForElement(ctx context.Context, selector string, timeout time.Duration) (found bool, err error)
	// TriggerScroll scrolls to the bottom of the document.
	TriggerScroll(ctx context.Context) error
	Close() error
}

// Options configures a session once, at launch.
type Options struct {
	Headless bool
	// BrowserBin is the path of the browser binary, empty lets the backend
	// find or download one.
	BrowserBin string
	// ControlURL connects to an already running browser instead of launching one.
	ControlURL string
	// BlockResources disables images, stylesheets, fonts and media.
	BlockResources bool
	// PageLoadTimeout bounds every navigation.
	PageLoadTimeout time.Duration
	UserAgent       string
}

// Launcher starts sessions.
type Launcher interface {
	Launch(ctx context.Context, opts Options) (Session, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context, opts Options) (Session, error)

func (f LauncherFunc) Launch(ctx context.Context, opts Options) (Session, error) {
	return f(ctx, opts)
}
