package debounce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer forwards the latest pushed value once no newer value has arrived
// for the quiet period.
type Debouncer struct {
	clock clockwork.Clock
	quiet time.Duration
	emit  func(string)

	mu      sync.Mutex
	seq     uint64
	pending clockwork.Timer
}

func New(clk clockwork.Clock, quiet time.Duration, emit func(string)) *Debouncer {
	return &Debouncer{
		clock: clk,
		quiet: quiet,
		emit:  emit,
	}
}

// Push replaces any scheduled emission with one for text.
func (that *Debouncer) Push(text string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.cancelLocked()

	seq := that.seq
	that.pending = that.clock.AfterFunc(that.quiet, func() { that.fire(seq, text) })
}

// Stop drops the scheduled emission, if any.
func (that *Debouncer) Stop() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.cancelLocked()
}

func (that *Debouncer) cancelLocked() {
	that.seq++
	if that.pending != nil {
		that.pending.Stop()
		that.pending = nil
	}
}

func (that *Debouncer) fire(seq uint64, text string) {
	that.mu.Lock()
	if seq != that.seq {
		that.mu.Unlock()
		return
	}
	that.pending = nil
	that.mu.Unlock()

	that.emit(text)
}
