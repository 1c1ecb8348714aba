package movement

import (
	"math"
	"sync"

	"github.com/openmapgames/mergewalk/game/engine"
)

// CellForFix maps a geographic fix to its grid cell: i = floor(lat/size),
// j = floor(lng/size). Exact-integer cell identity; the float only ever
// appears on this boundary.
func CellForFix(lat, lng, cellSizeDeg float64) engine.Coord {
	return engine.Coord{
		I: int(math.Floor(lat / cellSizeDeg)),
		J: int(math.Floor(lng / cellSizeDeg)),
	}
}

// Continuous is the movement source driven by an external position feed.
// Incoming fixes are quantized to grid cells; a fix that lands in the
// same cell as the last accepted one is jitter and is dropped. A feed
// failure stops the source and reports the reason through onFailure so
// the controller can fall back to manual movement.
type Continuous struct {
	sink        Sink
	feed        Feed
	cellSizeDeg float64
	onFailure   func(reason string)

	mu      sync.Mutex
	started bool
	hasLast bool
	last    engine.Coord

	// deliverMu is held across a fix delivery, from the started check
	// through the sink call. Stop acquires it after flipping started, so
	// returning from Stop means no fix is mid-delivery and none can start.
	deliverMu sync.Mutex
}

// NewContinuous creates a continuous source. onFailure may be nil.
func NewContinuous(sink Sink, feed Feed, cellSizeDeg float64, onFailure func(reason string)) *Continuous {
	return &Continuous{
		sink:        sink,
		feed:        feed,
		cellSizeDeg: cellSizeDeg,
		onFailure:   onFailure,
	}
}

// Start subscribes to the feed. Starting a started source is a no-op.
func (c *Continuous) Start() error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	if c.feed == nil {
		c.mu.Unlock()
		return ErrNoFeed
	}
	c.started = true
	c.hasLast = false
	c.mu.Unlock()

	if err := c.feed.Subscribe(c.handleFix, c.handleError); err != nil {
		c.mu.Lock()
		c.started = false
		c.mu.Unlock()
		return err
	}
	return nil
}

// Stop unsubscribes from the feed and waits for any fix already past the
// started check to finish, so once Stop returns no fix from this source
// can mutate state. Stopping a stopped source is a no-op.
func (c *Continuous) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.mu.Unlock()

	c.feed.Unsubscribe()

	// Drain the in-flight delivery, if any. The caller must not hold a
	// lock the sink needs to complete.
	c.deliverMu.Lock()
	c.deliverMu.Unlock()
}

// Mode returns ModeContinuous.
func (c *Continuous) Mode() Mode {
	return ModeContinuous
}

func (c *Continuous) handleFix(lat, lng float64) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	cell := CellForFix(lat, lng, c.cellSizeDeg)
	if c.hasLast && cell == c.last {
		// Sub-cell noise, silently dropped.
		c.mu.Unlock()
		return
	}
	c.hasLast = true
	c.last = cell
	c.mu.Unlock()

	c.sink.PlacePlayer(cell)
}

func (c *Continuous) handleError(reason string) {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.mu.Unlock()

	c.feed.Unsubscribe()
	if c.onFailure != nil {
		c.onFailure(reason)
	}
}
