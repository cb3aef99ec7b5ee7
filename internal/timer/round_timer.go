package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Tick is one observation of the countdown. Epoch identifies the arming that
// produced it so receivers can drop ticks from before the latest Restart.
type Tick struct {
	Epoch     uint64
	Remaining int
}

// RoundTimer counts down one unit per interval. It calls onTick for every
// positive value and onExpire once when zero is reached.
type RoundTimer struct {
	clock    clockwork.Clock
	interval time.Duration
	onTick   func(Tick)
	onExpire func(Tick)

	mu        sync.Mutex
	epoch     uint64
	remaining int
	pending   clockwork.Timer
}

func New(clk clockwork.Clock, interval time.Duration, onTick, onExpire func(Tick)) *RoundTimer {
	return &RoundTimer{
		clock:    clk,
		interval: interval,
		onTick:   onTick,
		onExpire: onExpire,
	}
}

// Restart cancels the current countdown and starts a new one from n. The next
// decrement happens one full interval later. Values of zero or below leave the
// timer disarmed at zero.
func (that *RoundTimer) Restart(n int) uint64 {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.stopLocked()
	that.remaining = max(n, 0)

	if that.remaining > 0 {
		epoch := that.epoch
		that.pending = that.clock.AfterFunc(that.interval, func() { that.step(epoch) })
	}

	return that.epoch
}

// Stop cancels the countdown. Remaining keeps its last value.
func (that *RoundTimer) Stop() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.stopLocked()
}

func (that *RoundTimer) Remaining() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.remaining
}

func (that *RoundTimer) stopLocked() {
	that.epoch++
	if that.pending != nil {
		that.pending.Stop()
		that.pending = nil
	}
}

func (that *RoundTimer) step(epoch uint64) {
	that.mu.Lock()
	if epoch != that.epoch || that.remaining == 0 {
		that.mu.Unlock()
		return
	}

	that.remaining--
	tick := Tick{Epoch: epoch, Remaining: that.remaining}

	if tick.Remaining > 0 {
		that.pending = that.clock.AfterFunc(that.interval, func() { that.step(epoch) })
	} else {
		that.pending = nil
	}
	that.mu.Unlock()

	// callbacks run unlocked so they may call back into the timer
	if tick.Remaining > 0 {
		that.onTick(tick)
		return
	}

	that.onExpire(tick)
}
