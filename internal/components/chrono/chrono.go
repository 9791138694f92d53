package chrono

import (
	"context"
	"sync"
	"time"
)

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time.
	Now() time.Time
	// Sleep pauses for d or until ctx is done, in which case ctx.Err() is returned.
	Sleep(ctx context.Context, d time.Duration) error
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

func (StandardTime) Now() time.Time {
	return time.Now()
}

func (StandardTime) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FakeTime is a TimeAPI whose clock only moves when Sleep or Advance is called.
type FakeTime struct {
	mutex  sync.Mutex
	now    time.Time
	slept  []time.Duration
	onTick func()
}

func NewFakeTime(start time.Time) *FakeTime {
	return &FakeTime{now: start}
}

func (f *FakeTime) Now() time.Time {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.now
}

func (f *FakeTime) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mutex.Lock()
	f.now = f.now.Add(d)
	f.slept = append(f.slept, d)
	onTick := f.onTick
	f.mutex.Unlock()

	if onTick != nil {
		onTick()
	}
	return nil
}

// Advance moves the clock forward without recording a sleep.
func (f *FakeTime) Advance(d time.Duration) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.now = f.now.Add(d)
}

// OnSleep registers a callback invoked after every Sleep.
func (f *FakeTime) OnSleep(callback func()) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.onTick = callback
}

// Slept returns every duration passed to Sleep in call order.
func (f *FakeTime) Slept() []time.Duration {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]time.Duration(nil), f.slept...)
}
