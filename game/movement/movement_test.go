package movement

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/openmapgames/mergewalk/game/engine"
)

// recordSink records everything a source delivers.
type recordSink struct {
	steps  []engine.Direction
	places []engine.Coord
}

func (r *recordSink) StepPlayer(dir engine.Direction) error {
	r.steps = append(r.steps, dir)
	return nil
}

func (r *recordSink) PlacePlayer(c engine.Coord) {
	r.places = append(r.places, c)
}

// fakeFeed is a hand-cranked position feed.
type fakeFeed struct {
	onFix      func(lat, lng float64)
	onError    func(reason string)
	subscribed bool
	subErr     error
}

func (f *fakeFeed) Subscribe(onFix func(lat, lng float64), onError func(reason string)) error {
	if f.subErr != nil {
		return f.subErr
	}
	f.onFix = onFix
	f.onError = onError
	f.subscribed = true
	return nil
}

func (f *fakeFeed) Unsubscribe() {
	f.subscribed = false
}

func (f *fakeFeed) emit(lat, lng float64) { f.onFix(lat, lng) }
func (f *fakeFeed) fail(reason string)    { f.onError(reason) }

func TestCellForFix(t *testing.T) {
	const size = 1e-4
	tests := []struct {
		lat, lng float64
		want     engine.Coord
	}{
		{0, 0, engine.Coord{I: 0, J: 0}},
		{0.00015, 0.00005, engine.Coord{I: 1, J: 0}},
		{-0.00001, -0.00001, engine.Coord{I: -1, J: -1}},
		{51.5074, -0.1278, engine.Coord{I: 515074, J: -1278}},
	}
	for _, tt := range tests {
		if got := CellForFix(tt.lat, tt.lng, size); got != tt.want {
			t.Errorf("CellForFix(%v,%v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
		}
	}
}

func TestManual_StepRequiresStart(t *testing.T) {
	sink := &recordSink{}
	m := NewManual(sink)

	if err := m.Step(engine.North); !errors.Is(err, ErrStopped) {
		t.Fatalf("err = %v, want ErrStopped", err)
	}

	m.Start()
	m.Start() // idempotent
	if err := m.Step(engine.East); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(sink.steps) != 1 || sink.steps[0] != engine.East {
		t.Fatalf("sink got %v", sink.steps)
	}

	m.Stop()
	m.Stop() // idempotent
	if err := m.Step(engine.South); !errors.Is(err, ErrStopped) {
		t.Fatalf("step after stop: err = %v, want ErrStopped", err)
	}
}

func TestContinuous_AcceptsCellChanges(t *testing.T) {
	sink := &recordSink{}
	feed := &fakeFeed{}
	c := NewContinuous(sink, feed, 1e-4, nil)

	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	feed.emit(0.00005, 0.00005) // first fix is always accepted
	feed.emit(0.00006, 0.00004) // same cell: jitter, dropped
	feed.emit(0.00015, 0.00005) // next cell north: accepted
	feed.emit(0.00016, 0.00016) // diagonal change: accepted

	want := []engine.Coord{{I: 0, J: 0}, {I: 1, J: 0}, {I: 1, J: 1}}
	if len(sink.places) != len(want) {
		t.Fatalf("accepted %d fixes (%v), want %d", len(sink.places), sink.places, len(want))
	}
	for i, c := range want {
		if sink.places[i] != c {
			t.Errorf("fix %d = %v, want %v", i, sink.places[i], c)
		}
	}
}

func TestContinuous_StopPreventsFurtherFixes(t *testing.T) {
	sink := &recordSink{}
	feed := &fakeFeed{}
	c := NewContinuous(sink, feed, 1e-4, nil)
	c.Start()

	feed.emit(0.001, 0.001)
	c.Stop()
	if feed.subscribed {
		t.Fatal("Stop must unsubscribe before returning")
	}
	// A straggler callback after Stop must not reach the sink.
	feed.emit(0.002, 0.002)
	if len(sink.places) != 1 {
		t.Fatalf("fix after Stop mutated state: %v", sink.places)
	}
}

// blockingSink parks every PlacePlayer call until released, so a test can
// hold a delivery in flight.
type blockingSink struct {
	entered chan struct{}
	release chan struct{}

	mu     sync.Mutex
	places []engine.Coord
}

func (b *blockingSink) StepPlayer(dir engine.Direction) error { return nil }

func (b *blockingSink) PlacePlayer(c engine.Coord) {
	b.entered <- struct{}{}
	<-b.release
	b.mu.Lock()
	b.places = append(b.places, c)
	b.mu.Unlock()
}

func (b *blockingSink) placed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.places)
}

func TestContinuous_StopWaitsForInFlightFix(t *testing.T) {
	sink := &blockingSink{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	feed := &fakeFeed{}
	c := NewContinuous(sink, feed, 1e-4, nil)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}

	go feed.emit(0.001, 0.001)
	// The fix is past the started check and parked inside the sink.
	<-sink.entered

	stopped := make(chan struct{})
	go func() {
		c.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a fix was still inside the sink")
	case <-time.After(50 * time.Millisecond):
	}

	close(sink.release)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the delivery finished")
	}

	if got := sink.placed(); got != 1 {
		t.Fatalf("recorded %d placements, want 1", got)
	}

	// A straggler callback after Stop must never reach the sink.
	feed.emit(0.002, 0.002)
	if got := sink.placed(); got != 1 {
		t.Fatalf("fix after Stop mutated state: %d placements", got)
	}
}

func TestContinuous_StartWithoutFeed(t *testing.T) {
	c := NewContinuous(&recordSink{}, nil, 1e-4, nil)
	if err := c.Start(); !errors.Is(err, ErrNoFeed) {
		t.Fatalf("err = %v, want ErrNoFeed", err)
	}
}

func TestContinuous_FailureReportsReason(t *testing.T) {
	sink := &recordSink{}
	feed := &fakeFeed{}
	var failure string
	c := NewContinuous(sink, feed, 1e-4, func(reason string) { failure = reason })
	c.Start()

	feed.fail("permission denied")
	if failure != "permission denied" {
		t.Fatalf("failure = %q", failure)
	}
	if feed.subscribed {
		t.Fatal("failed source must unsubscribe")
	}
}

func TestController_DefaultsToManual(t *testing.T) {
	ctrl := NewController(&recordSink{}, &fakeFeed{}, 1e-4)
	if ctrl.Mode() != ModeManual {
		t.Fatalf("mode = %s, want manual", ctrl.Mode())
	}
	if ctrl.ModeLabel() != "manual" {
		t.Fatalf("label = %q", ctrl.ModeLabel())
	}
}

func TestController_SwitchModes(t *testing.T) {
	sink := &recordSink{}
	feed := &fakeFeed{}
	ctrl := NewController(sink, feed, 1e-4)

	if err := ctrl.SetMode(ModeContinuous); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if ctrl.Mode() != ModeContinuous || !feed.subscribed {
		t.Fatal("continuous source should be active and subscribed")
	}

	// Directional commands are rejected while continuous owns movement.
	if err := ctrl.Step(engine.North); !errors.Is(err, ErrNotManual) {
		t.Fatalf("err = %v, want ErrNotManual", err)
	}

	// Selecting the active mode is a no-op.
	if err := ctrl.SetMode(ModeContinuous); err != nil {
		t.Fatalf("re-selecting active mode: %v", err)
	}

	if err := ctrl.SetMode(ModeManual); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if feed.subscribed {
		t.Fatal("switching away must unsubscribe the feed")
	}
	if err := ctrl.Step(engine.North); err != nil {
		t.Fatalf("Step after switch back: %v", err)
	}

	if err := ctrl.SetMode(Mode("teleport")); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("err = %v, want ErrUnknownMode", err)
	}
}

func TestController_NoFeedMeansNoContinuous(t *testing.T) {
	ctrl := NewController(&recordSink{}, nil, 1e-4)
	if err := ctrl.SetMode(ModeContinuous); !errors.Is(err, ErrNoFeed) {
		t.Fatalf("err = %v, want ErrNoFeed", err)
	}
	if ctrl.Mode() != ModeManual {
		t.Fatal("controller must stay manual after a failed switch")
	}
}

func TestController_FallbackOnFeedFailure(t *testing.T) {
	sink := &recordSink{}
	feed := &fakeFeed{}
	ctrl := NewController(sink, feed, 1e-4)

	var notified string
	ctrl.OnFallback = func(reason string) { notified = reason }

	if err := ctrl.SetMode(ModeContinuous); err != nil {
		t.Fatal(err)
	}
	feed.fail("signal lost")

	if ctrl.Mode() != ModeManual {
		t.Fatal("feed failure must fall back to manual movement")
	}
	if ctrl.LastFailure() != "signal lost" || notified != "signal lost" {
		t.Fatalf("failure reason not surfaced: %q / %q", ctrl.LastFailure(), notified)
	}
	// Manual movement must work immediately after the fallback.
	if err := ctrl.Step(engine.West); err != nil {
		t.Fatalf("Step after fallback: %v", err)
	}

	// Re-selecting continuous clears the failure.
	if err := ctrl.SetMode(ModeContinuous); err != nil {
		t.Fatal(err)
	}
	if ctrl.LastFailure() != "" {
		t.Error("successful mode switch should clear the recorded failure")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("manual"); err != nil || m != ModeManual {
		t.Errorf("ParseMode(manual) = %v, %v", m, err)
	}
	if m, err := ParseMode("continuous"); err != nil || m != ModeContinuous {
		t.Errorf("ParseMode(continuous) = %v, %v", m, err)
	}
	if _, err := ParseMode("warp"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("ParseMode(warp) err = %v", err)
	}
}
