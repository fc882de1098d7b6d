package engine

import "sync/atomic"

// PauseControl is the operator's pause request. It is flipped from a signal
// handler and read by workers once per unit of work.
type PauseControl struct {
	paused atomic.Bool
}

// Toggle flips the flag and returns the new state.
func (c *PauseControl) Toggle() bool {
	for {
		old := c.paused.Load()
		if c.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (c *PauseControl) Set(v bool) { c.paused.Store(v) }

func (c *PauseControl) Paused() bool { return c.paused.Load() }
