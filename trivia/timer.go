/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RoundTimer counts down once per second and reports each tick. At most
// one countdown runs at a time.
type RoundTimer struct {
	clock clockwork.Clock

	mu        sync.Mutex
	run       *countdown
	remaining int
}

// countdown is one Start..Stop lifetime. Comparing against RoundTimer.run
// keeps a finished goroutine from stopping a newer countdown.
type countdown struct {
	done chan struct{}
}

func NewRoundTimer(clock clockwork.Clock) *RoundTimer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RoundTimer{clock: clock}
}

// Start counts down from limit seconds, calling onTick with the seconds
// left after each one. The final call is onTick(0), after which the timer
// stops itself. onTick runs on the timer's goroutine.
func (t *RoundTimer) Start(limit int, onTick func(remaining int)) error {
	if limit <= 0 {
		return ErrInvalidLimit
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.run != nil {
		return ErrAlreadyRunning
	}

	run := &countdown{done: make(chan struct{})}
	t.run = run
	t.remaining = limit

	ticker := t.clock.NewTicker(time.Second)
	go t.loop(run, ticker, onTick)

	return nil
}

func (t *RoundTimer) loop(run *countdown, ticker clockwork.Ticker, onTick func(int)) {
	defer ticker.Stop()

	for {
		select {
		case <-run.done:
			return
		case <-ticker.Chan():
			t.mu.Lock()
			if t.run != run {
				t.mu.Unlock()
				return
			}
			t.remaining--
			left := t.remaining
			t.mu.Unlock()

			onTick(left)

			if left <= 0 {
				t.finish(run)
				return
			}
		}
	}
}

func (t *RoundTimer) finish(run *countdown) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.run == run {
		close(run.done)
		t.run = nil
	}
}

// Stop cancels the running countdown, if any. It never waits for the
// countdown goroutine, so it is safe to call from inside onTick.
func (t *RoundTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.run != nil {
		close(t.run.done)
		t.run = nil
	}
}

func (t *RoundTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.run != nil
}

// Remaining returns the seconds left on the current or last countdown.
func (t *RoundTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.remaining
}
