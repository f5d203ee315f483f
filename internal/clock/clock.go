// Package clock abstracts wall-clock time so that timer-driven behavior
// (the session refresh loop, the gateway redirect delay) can be tested
// without real waits.
package clock

import "time"

// Clock provides the time operations used by the SDK.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
	AfterFunc(d time.Duration, f func()) Timer
}

// Ticker delivers ticks on a channel until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Timer is a single scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Real is a Clock backed by the time package.
type Real struct{}

// New returns the real wall-clock implementation.
func New() Real {
	return Real{}
}

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time {
	return r.t.C
}

func (r realTicker) Stop() {
	r.t.Stop()
}
