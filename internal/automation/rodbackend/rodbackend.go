// Package rodbackend implements the automation boundary with a headless
// chromium driven through go-rod.
package rodbackend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"reviewscope-backend/internal/automation"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
}

// patterns handed to Network.setBlockedURLs when resources are blocked.
var blockedResources = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.svg", "*.ico",
	"*.css", "*.woff", "*.woff2", "*.ttf", "*.otf",
	"*.mp4", "*.webm",
}

// Launcher launches go-rod sessions.
type Launcher struct{}

func (Launcher) Launch(ctx context.Context, opts automation.Options) (automation.Session, error) {
	s := &session{pageLoadTimeout: opts.PageLoadTimeout}

	controlURL := opts.ControlURL
	if controlURL != "" {
		resolved, err := launcher.ResolveURL(controlURL)
		if err != nil {
			return nil, fmt.Errorf("resolve control url: %w", err)
		}
		controlURL = resolved
	} else {
		l := launcher.New().
			Context(ctx).
			Headless(opts.Headless).
			NoSandbox(true).
			Set(flags.Flag("disable-gpu")).
			Set(flags.Flag("disable-dev-shm-usage"))
		if opts.BlockResources {
			l = l.Set(flags.Flag("blink-settings"), "imagesEnabled=false")
		}
		if opts.BrowserBin != "" {
			l = l.Bin(opts.BrowserBin)
		}
		launched, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		s.launcher = l
		controlURL = launched
	}

	// the cdp connection lives until Close cancels connCtx
	connCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	browser := rod.New().Context(connCtx).ControlURL(controlURL)
	err := browser.Connect()
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	if opts.ControlURL != "" {
		// a shared browser gets an isolated context so closing the session
		// does not close the browser
		browser, err = browser.Incognito()
		if err != nil {
			s.cleanup()
			return nil, fmt.Errorf("create browser context: %w", err)
		}
	}
	s.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}
	s.page = page

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = userAgents[rand.Intn(len(userAgents))]
	}
	err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("set user agent: %w", err)
	}
	if opts.BlockResources {
		err = page.SetBlockedURLs(blockedResources)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("block resources: %w", err)
		}
	}

	return s, nil
}

type session struct {
	cancel          context.CancelFunc
	launcher        *launcher.Launcher
	browser         *rod.Browser
	page            *rod.Page
	pageLoadTimeout time.Duration
}

func (s *session) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx)
	if s.pageLoadTimeout > 0 {
		page = page.Timeout(s.pageLoadTimeout)
		defer page.CancelTimeout()
	}
	return page.Navigate(url)
}

func (s *session) WaitForElement(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	page := s.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	_, err := page.Element(selector)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return false, nil
	}
	return false, err
}

func (s *session) TriggerScroll(ctx context.Context) error {
	_, err := s.page.Context(ctx).Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	return err
}

func (s *session) Elements(ctx context.Context, selector string) ([]automation.Element, error) {
	found, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	out := make([]automation.Element, len(found))
	for i, el := range found {
		out[i] = element{el: el}
	}
	return out, nil
}

func (s *session) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

func (s *session) cleanup() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
}

func (s *session) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	s.cleanup()
	return err
}

type element struct {
	el *rod.Element
}

func (e element) Text(ctx context.Context) (string, error) {
	text, err := e.el.Context(ctx).Text()
	if err != nil {
		if isStale(err) {
			return "", fmt.Errorf("%w: %w", automation.ErrStaleElement, err)
		}
		return "", err
	}
	return text, nil
}

var staleMessages = []string{
	cdp.ErrObjNotFound.Message,
	cdp.ErrCtxNotFound.Message,
	cdp.ErrCtxDestroyed.Message,
	"No node with given id found",
	"Node is detached from document",
}

func isStale(err error) bool {
	var notFound *rod.ObjectNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	var cdpErr *cdp.Error
	if errors.As(err, &cdpErr) {
		for _, msg := range staleMessages {
			if strings.Contains(cdpErr.Message, msg) {
				return true
			}
		}
	}
	return false
}
