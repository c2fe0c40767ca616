package collection

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultDebounce is the quiet interval before a search edit takes effect.
const DefaultDebounce = 500 * time.Millisecond

// debouncer delivers the last value passed to Trigger once no further
// Trigger call has happened for the configured interval. Each Trigger
// cancels the previously pending timer.
type debouncer struct {
	clock    clockwork.Clock
	interval time.Duration
	fire     func(string)

	mu    sync.Mutex
	timer clockwork.Timer
	gen   uint64
}

func newDebouncer(clock clockwork.Clock, interval time.Duration, fire func(string)) *debouncer {
	return &debouncer{clock: clock, interval: interval, fire: fire}
}

// Trigger schedules value for delivery after the quiet interval.
func (d *debouncer) Trigger(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.interval, func() {
		d.mu.Lock()
		// A timer that fired while being replaced must not deliver.
		current := gen == d.gen
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			d.fire(value)
		}
	})
}

// Pending reports whether a value is waiting to be delivered.
func (d *debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop drops any pending value.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
