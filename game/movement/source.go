package movement

import (
	"errors"

	"github.com/openmapgames/mergewalk/game/engine"
)

// Mode identifies a movement source variant.
type Mode string

const (
	ModeManual     Mode = "manual"
	ModeContinuous Mode = "continuous"
)

var (
	// ErrUnknownMode is returned for a mode string outside the enumeration.
	ErrUnknownMode = errors.New("unknown movement mode")

	// ErrNoFeed is returned when continuous mode is requested but no
	// position feed is available.
	ErrNoFeed = errors.New("no position feed available")

	// ErrNotManual is returned when a directional command arrives while
	// a continuous source owns the player position.
	ErrNotManual = errors.New("directional commands require manual mode")

	// ErrStopped is returned when a command reaches a stopped source.
	ErrStopped = errors.New("movement source is stopped")
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeManual:
		return ModeManual, nil
	case ModeContinuous:
		return ModeContinuous, nil
	default:
		return "", ErrUnknownMode
	}
}

// Sink receives accepted position changes from the active source. The
// implementation owns the post-move sequence: viewport recompute, render
// notification, and state persistence.
type Sink interface {
	// StepPlayer applies one discrete step.
	StepPlayer(dir engine.Direction) error

	// PlacePlayer moves the player to an absolute cell.
	PlacePlayer(c engine.Coord)
}

// Source is one movement variant. Start on a started source and Stop on
// a stopped one are no-ops. After Stop returns, the source must never
// deliver another position change to its sink.
type Source interface {
	Start() error
	Stop()
	Mode() Mode
}

// Feed is the external position source consumed by the continuous
// variant. Subscribe registers callbacks for fixes and failures; after
// Unsubscribe returns the feed initiates no new callbacks, but a
// delivery already in flight may still complete, so consumers must
// gate mutations on their own state.
type Feed interface {
	Subscribe(onFix func(lat, lng float64), onError func(reason string)) error
	Unsubscribe()
}
