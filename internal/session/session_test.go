package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"reviewscope-backend/internal/automation"
	"reviewscope-backend/internal/automation/automationtest"
	"reviewscope-backend/internal/components/fault"
	"reviewscope-backend/internal/components/telemetry"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
)

// instantTimer fires immediately and records every requested delay.
type instantTimer struct {
	c       chan time.Time
	started []time.Duration
}

func newInstantTimer() *instantTimer {
	return &instantTimer{c: make(chan time.Time, 1)}
}

func (t *instantTimer) Start(d time.Duration) {
	t.started = append(t.started, d)
	t.c <- time.Time{}
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time {
	return t.c
}

func setup(launcher automation.Launcher, policy Policy) (*Manager, *instantTimer, *telemetry.Recorder) {
	tel := telemetry.NewRecorder()
	timer := newInstantTimer()
	manager := NewManager(launcher, automation.Options{Headless: true}, policy, tel)
	manager.SetTimer(func() backoff.Timer { return timer })
	return manager, timer, tel
}

func TestAcquireRetriesUntilReady(t *testing.T) {
	session := automationtest.NewSession(nil)
	launcher := &automationtest.Launcher{Session: session, FailFirst: 2}
	manager, timer, tel := setup(launcher, Policy{MaxAttempts: 5, Delay: time.Second * 2})

	handle, err := manager.Acquire(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, launcher.Attempts())
	require.Equal(t, []time.Duration{time.Second * 2, time.Second * 2}, timer.started)
	require.Equal(t, Ready, handle.State())
	require.Equal(t, 2, tel.Count("warning", report_manager_acquire))
	require.True(t, launcher.Options()[0].Headless)

	require.NoError(t, handle.Release())
	require.NoError(t, handle.Release())
	require.Equal(t, 1, session.Closes())
	require.Equal(t, []State{Idle, Starting, Idle, Starting, Idle, Starting, Ready, Closed}, handle.History())
}

func TestAcquireExhaustsPolicy(t *testing.T) {
	launcher := &automationtest.Launcher{FailFirst: 100}
	manager, timer, tel := setup(launcher, Policy{MaxAttempts: 5, Delay: time.Second * 2})

	_, err := manager.Acquire(context.Background())
	require.ErrorIs(t, err, fault.SessionInitFailed)
	require.Equal(t, 5, launcher.Attempts())
	require.Len(t, timer.started, 4)
	require.Equal(t, 1, tel.Count("broken", report_manager_acquire))
}

func TestAcquireSingleAttempt(t *testing.T) {
	launcher := &automationtest.Launcher{FailFirst: 1}
	manager, timer, _ := setup(launcher, Policy{MaxAttempts: 0})

	_, err := manager.Acquire(context.Background())
	require.ErrorIs(t, err, fault.SessionInitFailed)
	require.Equal(t, 1, launcher.Attempts())
	require.Empty(t, timer.started)
}

func TestAcquireCancelled(t *testing.T) {
	launcher := &automationtest.Launcher{FailFirst: 100}
	manager, _, _ := setup(launcher, DefaultPolicy())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := manager.Acquire(ctx)
	require.ErrorIs(t, err, fault.SessionInitFailed)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, launcher.Attempts())
}

func TestWithReleasesOnEveryPath(t *testing.T) {
	session := automationtest.NewSession(nil)
	launcher := &automationtest.Launcher{Session: session}
	manager, _, _ := setup(launcher, DefaultPolicy())

	err := manager.With(context.Background(), func(s automation.Session) error {
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, session.Closes())

	boom := errors.New("extraction failed")
	err = manager.With(context.Background(), func(s automation.Session) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, session.Closes())

	require.Panics(t, func() {
		_ = manager.With(context.Background(), func(s automation.Session) error {
			panic("crash")
		})
	})
	require.Equal(t, 3, session.Closes())
}

func TestCanTransition(t *testing.T) {
	require.True(t, canTransition(Idle, Starting))
	require.True(t, canTransition(Starting, Ready))
	require.True(t, canTransition(Starting, Idle))
	require.True(t, canTransition(Starting, Closed))
	require.True(t, canTransition(Ready, Closed))
	require.False(t, canTransition(Ready, Starting))
	require.False(t, canTransition(Closed, Idle))
	require.False(t, canTransition(Idle, Ready))
	require.Equal(t, "state(9)", State(9).String())
}
