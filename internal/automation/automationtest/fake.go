// Package automationtest provides in-memory automation sessions for tests.
package automationtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"reviewscope-backend/internal/automation"
)

// Element is a fake element, Stale makes Text fail with ErrStaleElement.
type Element struct {
	Content string
	Stale   bool
	Err     error
}

func (e Element) Text(ctx context.Context) (string, error) {
	if e.Stale {
		return "", fmt.Errorf("read text: %w", automation.ErrStaleElement)
	}
	if e.Err != nil {
		return "", e.Err
	}
	return e.Content, nil
}

// Session is a scripted automation.Session.
type Session struct {
	mutex sync.Mutex

	// Nodes maps selectors to the elements Elements returns for them.
	Nodes map[string][]automation.Element
	Page  string

	// MarkerMissing makes WaitForElement report not-found.
	MarkerMissing bool
	NavigateErr   error
	WaitErr       error
	ScrollErr     error
	ElementsErr   error
	// OnScroll is called with the 1-based scroll count after each scroll.
	OnScroll func(s *Session, n int)

	navigated []string
	waited    []time.Duration
	scrolls   int
	closes    int
}

func NewSession(nodes map[string][]automation.Element) *Session {
	return &Session{Nodes: nodes}
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.navigated = append(s.navigated, url)
	return s.NavigateErr
}

func (s *Session) WaitForElement(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.waited = append(s.waited, timeout)
	if s.WaitErr != nil {
		return false, s.WaitErr
	}
	return !s.MarkerMissing, nil
}

func (s *Session) TriggerScroll(ctx context.Context) error {
	s.mutex.Lock()
	if s.ScrollErr != nil {
		s.mutex.Unlock()
		return s.ScrollErr
	}
	s.scrolls++
	n := s.scrolls
	onScroll := s.OnScroll
	s.mutex.Unlock()

	if onScroll != nil {
		onScroll(s, n)
	}
	return nil
}

func (s *Session) Elements(ctx context.Context, selector string) ([]automation.Element, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.ElementsErr != nil {
		return nil, s.ElementsErr
	}
	return append([]automation.Element(nil), s.Nodes[selector]...), nil
}

// SetNodes replaces the elements returned for selector.
func (s *Session) SetNodes(selector string, nodes []automation.Element) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.Nodes == nil {
		s.Nodes = map[string][]automation.Element{}
	}
	s.Nodes[selector] = nodes
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	return s.Page, nil
}

func (s *Session) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closes++
	return nil
}

func (s *Session) Navigated() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]string(nil), s.navigated...)
}

func (s *Session) Scrolls() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.scrolls
}

func (s *Session) Closes() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.closes
}

// Launcher hands out Session, failing the first FailFirst launches.
type Launcher struct {
	mutex sync.Mutex

	Session   *Session
	FailFirst int
	Err       error

	attempts int
	options  []automation.Options
}

func (l *Launcher) Launch(ctx context.Context, opts automation.Options) (automation.Session, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.attempts++
	l.options = append(l.options, opts)
	if l.attempts <= l.FailFirst {
		err := l.Err
		if err == nil {
			err = fmt.Errorf("chrome failed to start (attempt %d)", l.attempts)
		}
		return nil, err
	}
	return l.Session, nil
}

func (l *Launcher) Attempts() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.attempts
}

func (l *Launcher) Options() []automation.Options {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]automation.Options(nil), l.options...)
}
