package websocket

import "sync"

// SessionFeed bridges inbound client position frames to the movement
// layer. It implements movement.Feed: the continuous source subscribes
// and receives whatever the session's clients report.
type SessionFeed struct {
	mu      sync.Mutex
	onFix   func(lat, lng float64)
	onError func(reason string)
}

// Subscribe registers callbacks for fixes and failures. A second
// subscriber replaces the first.
func (f *SessionFeed) Subscribe(onFix func(lat, lng float64), onError func(reason string)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onFix = onFix
	f.onError = onError
	return nil
}

// Unsubscribe deregisters the callbacks. No new delivery starts after
// it returns; a Push or Fail that already loaded its callback may still
// complete, which the movement layer tolerates.
func (f *SessionFeed) Unsubscribe() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onFix = nil
	f.onError = nil
}

// Push delivers a raw position fix to the subscriber, if any.
func (f *SessionFeed) Push(lat, lng float64) {
	f.mu.Lock()
	cb := f.onFix
	f.mu.Unlock()

	if cb != nil {
		cb(lat, lng)
	}
}

// Fail reports a feed failure to the subscriber, if any.
func (f *SessionFeed) Fail(reason string) {
	f.mu.Lock()
	cb := f.onError
	f.mu.Unlock()

	if cb != nil {
		cb(reason)
	}
}
