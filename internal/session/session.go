// Package session owns the lifecycle of the exclusive automation session
// used by a single processing run.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"reviewscope-backend/internal/automation"
	"reviewscope-backend/internal/components/assert"
	"reviewscope-backend/internal/components/fault"
	"reviewscope-backend/internal/components/telemetry"

	"github.com/cenkalti/backoff/v4"
)

const (
	report_manager_acquire = "manager.acquire"
	report_manager_release = "manager.release"
	report_handle_state    = "handle.transition"
)

// Policy bounds session acquisition: at most MaxAttempts launches with a
// fixed Delay between them.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 5, Delay: time.Second * 2}
}

// BackOff returns the backoff schedule implementing the policy.
func (p Policy) BackOff(ctx context.Context) backoff.BackOff {
	retries := uint64(0)
	if p.MaxAttempts > 1 {
		retries = uint64(p.MaxAttempts - 1)
	}
	return backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), retries),
		ctx,
	)
}

// Manager launches sessions and guarantees they are released.
// Sessions are never pooled, every Acquire launches a new one.
type Manager struct {
	launcher automation.Launcher
	options  automation.Options
	policy   Policy
	newTimer func() backoff.Timer
	tel      telemetry.API
}

func NewManager(launcher automation.Launcher, options automation.Options, policy Policy, tel telemetry.API) *Manager {
	assert.NotNil(launcher)
	assert.NotNil(tel)
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Manager{
		launcher: launcher,
		options:  options,
		policy:   policy,
		tel:      telemetry.NewScopedAPI("session", tel),
	}
}

// SetTimer replaces the timer used to wait between attempts, nil restores
// the real timer.
func (m *Manager) SetTimer(newTimer func() backoff.Timer) {
	m.newTimer = newTimer
}

// Acquire launches a session, retrying launch failures according to the
// policy. Exhausting the policy or cancelling ctx yields a
// fault.SessionInitFailed.
func (m *Manager) Acquire(ctx context.Context) (*Handle, error) {
	h := &Handle{state: Idle, history: []State{Idle}, tel: m.tel}

	var timer backoff.Timer
	if m.newTimer != nil {
		timer = m.newTimer()
	}

	attempts := 0
	launch := func() (automation.Session, error) {
		attempts++
		h.transition(Starting)
		s, err := m.launcher.Launch(ctx, m.options)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(fmt.Errorf("%w: %w", ctx.Err(), err))
			}
			return nil, err
		}
		return s, nil
	}
	notify := func(err error, next time.Duration) {
		m.tel.ReportWarning(report_manager_acquire, err, attempts, next.String())
		h.transition(Idle)
	}

	s, err := backoff.RetryNotifyWithTimerAndData(launch, m.policy.BackOff(ctx), notify, timer)
	if err != nil {
		h.transition(Closed)
		m.tel.ReportBroken(report_manager_acquire, err, attempts)
		return nil, fault.New(
			fault.SessionInitFailed,
			"session.acquire",
			fmt.Errorf("gave up after %d attempt(s): %w", attempts, err),
		)
	}

	h.session = s
	h.transition(Ready)
	m.tel.ReportDebug("session ready", attempts)
	return h, nil
}

// With acquires a session, runs fn with it and releases it on every exit
// path, including a panic in fn.
func (m *Manager) With(ctx context.Context, fn func(s automation.Session) error) error {
	h, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err := h.Release()
		if err != nil {
			m.tel.ReportWarning(report_manager_release, err)
		}
	}()
	return fn(h.Session())
}

// Handle is an acquired session. Release must be called exactly once,
// further calls are no-ops.
type Handle struct {
	mutex   sync.Mutex
	state   State
	history []State
	session automation.Session
	tel     telemetry.API
}

func (h *Handle) transition(to State) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.transitionLocked(to)
}

func (h *Handle) transitionLocked(to State) {
	if !canTransition(h.state, to) {
		h.tel.ReportBroken(report_handle_state, fmt.Errorf("illegal transition %s -> %s", h.state, to))
		return
	}
	h.state = to
	h.history = append(h.history, to)
}

func (h *Handle) Session() automation.Session {
	return h.session
}

func (h *Handle) State() State {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.state
}

// History returns every state the handle went through, starting with Idle.
func (h *Handle) History() []State {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return append([]State(nil), h.history...)
}

// Release closes the underlying session.
func (h *Handle) Release() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.state == Closed {
		return nil
	}
	h.transitionLocked(Closed)
	return h.session.Close()
}
