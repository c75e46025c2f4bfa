package clock

import (
	"sync"
	"time"
)

// Countdown is a single-owner countdown timer. It decrements once per
// resolution interval, reporting the remaining tick count through
// onTick, and fires onExpire exactly once when it reaches zero.
//
// A Stop or Reset invalidates the in-flight run: its goroutine may
// still be draining a ticker fire, but the generation guard prevents
// any callback from a superseded run reaching the owner.
type Countdown struct {
	mu         sync.Mutex
	resolution time.Duration
	onTick     func(remaining int)
	onExpire   func()

	generation uint64
	remaining  int
	running    bool
	stopCh     chan struct{}
}

// New creates a countdown with the given tick resolution. Production
// callers use one second; tests shrink it.
func New(resolution time.Duration, onTick func(remaining int), onExpire func()) *Countdown {
	if resolution <= 0 {
		resolution = time.Second
	}
	return &Countdown{
		resolution: resolution,
		onTick:     onTick,
		onExpire:   onExpire,
	}
}

// Start begins a countdown over the given budget. Any in-flight
// countdown is cancelled first.
func (c *Countdown) Start(budget time.Duration) {
	c.mu.Lock()
	c.cancelLocked()

	ticks := int(budget / c.resolution)
	if ticks < 1 {
		ticks = 1
	}

	c.generation++
	c.remaining = ticks
	c.running = true
	c.stopCh = make(chan struct{})

	gen := c.generation
	stop := c.stopCh
	c.mu.Unlock()

	go c.run(gen, stop)
}

// Reset cancels any in-flight countdown and restarts with a full budget.
func (c *Countdown) Reset(budget time.Duration) {
	c.Start(budget)
}

// Stop cancels the countdown without firing the expiry callback.
// Safe to call when nothing is running.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

// Remaining returns the number of ticks left on the current countdown.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) cancelLocked() {
	if c.running {
		c.running = false
		close(c.stopCh)
		c.stopCh = nil
	}
}

func (c *Countdown) run(gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(c.resolution)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		if !c.running || c.generation != gen {
			c.mu.Unlock()
			return
		}
		c.remaining--
		remaining := c.remaining
		expired := remaining <= 0
		if expired {
			// Mark stopped before calling out so a late Stop from the
			// owner cannot race a second expiry.
			c.running = false
			c.stopCh = nil
		}
		c.mu.Unlock()

		if expired {
			if c.onExpire != nil {
				c.onExpire()
			}
			return
		}
		if c.onTick != nil {
			c.onTick(remaining)
		}
	}
}
