package movement

import "github.com/openmapgames/mergewalk/game/engine"

// Manual is the discrete movement source: four directional commands,
// each moving the player exactly one cell.
type Manual struct {
	sink    Sink
	started bool
}

// NewManual creates a manual source feeding the given sink.
func NewManual(sink Sink) *Manual {
	return &Manual{sink: sink}
}

// Start activates the source. Starting a started source is a no-op.
func (m *Manual) Start() error {
	m.started = true
	return nil
}

// Stop deactivates the source. Stopping a stopped source is a no-op.
func (m *Manual) Stop() {
	m.started = false
}

// Mode returns ModeManual.
func (m *Manual) Mode() Mode {
	return ModeManual
}

// Step applies one directional command through the sink.
func (m *Manual) Step(dir engine.Direction) error {
	if !m.started {
		return ErrStopped
	}
	return m.sink.StepPlayer(dir)
}
