package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Clock for tests. Timers and tickers fire
// synchronously inside Advance, in deadline order.
type Fake struct {
	mu   sync.Mutex
	now  time.Time
	work []*fakeEntry
}

type fakeEntry struct {
	clk      *Fake
	deadline time.Time
	interval time.Duration // 0 for one-shot timers
	fn       func()        // nil for tickers
	ch       chan time.Time
	stopped  bool
}

// NewFake returns a Fake clock starting at a fixed reference time.
func NewFake() *Fake {
	return &Fake{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := &fakeEntry{
		clk:      f,
		deadline: f.now.Add(d),
		interval: d,
		ch:       make(chan time.Time, 1),
	}
	f.work = append(f.work, e)
	return fakeTicker{e}
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := &fakeEntry{
		clk:      f,
		deadline: f.now.Add(d),
		fn:       fn,
	}
	f.work = append(f.work, e)
	return fakeTimer{e}
}

// Advance moves the clock forward, firing every timer and ticker whose
// deadline falls within the window.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		e := f.nextDue(target)
		if e == nil {
			break
		}
		f.fire(e)
	}

	f.mu.Lock()
	f.now = target
	f.mu.Unlock()
}

func (f *Fake) nextDue(target time.Time) *fakeEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	sort.SliceStable(f.work, func(i, j int) bool {
		return f.work[i].deadline.Before(f.work[j].deadline)
	})
	for _, e := range f.work {
		if !e.stopped && !e.deadline.After(target) {
			return e
		}
	}
	return nil
}

func (f *Fake) fire(e *fakeEntry) {
	f.mu.Lock()
	if e.stopped {
		f.mu.Unlock()
		return
	}
	f.now = e.deadline
	at := e.deadline
	if e.interval > 0 {
		e.deadline = e.deadline.Add(e.interval)
	} else {
		e.stopped = true
	}
	fn := e.fn
	f.mu.Unlock()

	if fn != nil {
		fn()
		return
	}
	select {
	case e.ch <- at:
	default:
	}
}

func (e *fakeEntry) stop() bool {
	e.clk.mu.Lock()
	defer e.clk.mu.Unlock()
	active := !e.stopped
	e.stopped = true
	return active
}

type fakeTicker struct {
	e *fakeEntry
}

func (t fakeTicker) C() <-chan time.Time {
	return t.e.ch
}

func (t fakeTicker) Stop() {
	t.e.stop()
}

type fakeTimer struct {
	e *fakeEntry
}

func (t fakeTimer) Stop() bool {
	return t.e.stop()
}
