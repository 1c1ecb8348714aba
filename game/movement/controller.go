package movement

import (
	"sync"

	"github.com/openmapgames/mergewalk/game/engine"
)

// Controller owns the active movement source for one game. Exactly one
// source is active at a time; switching stops the old source before
// starting the new one, with no window in which both or neither run.
type Controller struct {
	mu          sync.Mutex
	sink        Sink
	feed        Feed
	cellSizeDeg float64
	manual      *Manual
	continuous  *Continuous
	active      Source
	lastFailure string

	// OnFallback, if set, is invoked after a feed failure has switched
	// the controller back to manual movement.
	OnFallback func(reason string)
}

// NewController creates a controller with the manual source active.
// feed may be nil, in which case continuous mode is unavailable.
func NewController(sink Sink, feed Feed, cellSizeDeg float64) *Controller {
	c := &Controller{
		sink:        sink,
		feed:        feed,
		cellSizeDeg: cellSizeDeg,
	}
	c.manual = NewManual(sink)
	c.continuous = NewContinuous(sink, feed, cellSizeDeg, c.fallback)
	c.active = c.manual
	c.manual.Start()
	return c
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active.Mode()
}

// ModeLabel returns the active mode as a display string.
func (c *Controller) ModeLabel() string {
	return string(c.Mode())
}

// LastFailure returns the reason of the most recent feed failure, empty
// if the feed never failed or a mode switch succeeded since.
func (c *Controller) LastFailure() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFailure
}

// SetMode switches the active source. Selecting the active mode is a
// no-op. The switch is synchronous: the old source is stopped before the
// new one starts, and an error restores manual movement.
func (c *Controller) SetMode(mode Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var next Source
	switch mode {
	case ModeManual:
		next = c.manual
	case ModeContinuous:
		if c.feed == nil {
			return ErrNoFeed
		}
		next = c.continuous
	default:
		return ErrUnknownMode
	}

	if next == c.active {
		return nil
	}

	c.active.Stop()
	if err := next.Start(); err != nil {
		// Never leave movement uncontrollable.
		c.active = c.manual
		c.manual.Start()
		return err
	}
	c.active = next
	c.lastFailure = ""
	return nil
}

// Step routes a directional command to the manual source.
func (c *Controller) Step(dir engine.Direction) error {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()

	if active.Mode() != ModeManual {
		return ErrNotManual
	}
	return c.manual.Step(dir)
}

// fallback handles a feed failure: the continuous source has already
// stopped itself, so movement deterministically returns to manual. There
// is no retry; the feed stays abandoned until an explicit SetMode.
func (c *Controller) fallback(reason string) {
	c.mu.Lock()
	c.active = c.manual
	c.manual.Start()
	c.lastFailure = reason
	cb := c.OnFallback
	c.mu.Unlock()

	if cb != nil {
		cb(reason)
	}
}
