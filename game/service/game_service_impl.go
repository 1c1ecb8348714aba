package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/openmapgames/mergewalk/game/engine"
	"github.com/openmapgames/mergewalk/game/movement"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions    SessionManager
	rules       RulesManager
	feeds       FeedProvider
	notifier    Notifier
	controllers map[string]*movement.Controller

	// mu serializes all public operations. Asynchronous position fixes
	// from continuous movement take it too, so a fix and a click never
	// interleave inside the engine.
	mu sync.Mutex
}

// NewGameService creates a new game service instance. feeds and notifier
// may be nil.
func NewGameService(sessions SessionManager, rules RulesManager, feeds FeedProvider, notifier Notifier) GameService {
	return &gameServiceImpl{
		sessions:    sessions,
		rules:       rules,
		feeds:       feeds,
		notifier:    notifier,
		controllers: make(map[string]*movement.Controller),
	}
}

// getRulesID returns the rules_id for a given rule set name, used for
// consistent API responses
func (s *gameServiceImpl) getRulesID(rulesName string) string {
	available, err := s.rules.ListRules()
	if err == nil {
		for _, info := range available {
			if info.Name == rulesName {
				return info.RulesID
			}
		}
	}
	if rulesName == "" {
		return "classic"
	}
	return rulesName
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, rulesName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ruleSet *engine.Rules
	var err error
	if rulesName != "" {
		ruleSet, err = s.rules.LoadRules(rulesName)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				available, listErr := s.rules.ListRules()
				if listErr == nil && len(available) > 0 {
					var ids []string
					for _, info := range available {
						ids = append(ids, info.RulesID)
					}
					return nil, fmt.Errorf("rules '%s' not found. Available rules: %v", rulesName, ids)
				}
				return nil, fmt.Errorf("rules '%s' not found. Use /api/rules to list available rule sets", rulesName)
			}
			return nil, fmt.Errorf("failed to load rules %s: %w", rulesName, err)
		}
	} else {
		ruleSet = s.rules.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", ruleSet)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	ctrl := s.ensureController(session)

	rulesID := rulesName
	if rulesID == "" {
		rulesID = s.getRulesID(ruleSet.Name)
	}

	return &SessionInfo{
		ID:             session.ID,
		RulesName:      rulesID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Mode:           ctrl.ModeLabel(),
		GameState:      session.Engine.GetState(),
		Rules:          session.Rules,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	ctrl := s.ensureController(session)

	return &SessionInfo{
		ID:             session.ID,
		RulesName:      s.getRulesID(session.Rules.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Mode:           ctrl.ModeLabel(),
		GameState:      session.Engine.GetState(),
		Rules:          session.Rules,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		ctrl := s.ensureController(sess)
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			RulesName:      s.getRulesID(sess.Rules.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			Mode:           ctrl.ModeLabel(),
			GameState:      sess.Engine.GetState(),
			Rules:          sess.Rules,
		})
	}

	return result, nil
}

// DeleteSession removes a session along with its movement controller
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	key := strings.ToLower(sessionID)
	ctrl := s.controllers[key]
	delete(s.controllers, key)
	err := s.sessions.Delete(sessionID)
	s.mu.Unlock()

	if ctrl != nil {
		// Back to manual, outside the lock: stopping the continuous
		// source waits out any in-flight fix, and that fix needs the
		// lock to finish. The session is already gone, so a fix that
		// slips in first is dropped by the sink.
		ctrl.SetMode(movement.ModeManual)
	}
	return err
}

// Click applies the interaction rule at the target cell
func (s *gameServiceImpl) Click(ctx context.Context, sessionID string, target engine.Coord) (*ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	out, err := sess.Engine.Interact(target)
	if errors.Is(err, engine.ErrOutOfReach) {
		state := sess.Engine.GetState()
		return &ClickResult{
			Success:   false,
			GameState: state,
			Message:   sess.Rules.Messages.OutOfReach,
			Won:       state.Won,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	result := &ClickResult{
		Success:   out.Mutated(),
		Outcome:   string(out.Kind),
		GameState: state,
		Message:   state.Message,
		Won:       state.Won,
	}
	if out.Kind == engine.OutcomeNone {
		result.Outcome = ""
		return result, nil
	}

	result.Events = s.extractClickEvents(sess, out, target)
	for _, ev := range result.Events {
		s.notify(sessionID, ev)
	}

	s.autosave(sessionID, sess)
	return result, nil
}

// Move executes a single manual step for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	ctrl := s.ensureController(sess)
	dir := engine.Direction(strings.ToLower(direction))

	err = ctrl.Step(dir)
	state := sess.Engine.GetState()
	if errors.Is(err, movement.ErrNotManual) {
		return &MoveResult{
			Success:   false,
			GameState: state,
			Message:   "directional commands are disabled while continuous movement is active",
		}, nil
	}
	if err != nil {
		return nil, err
	}

	s.autosave(sessionID, sess)

	return &MoveResult{
		Success:   true,
		GameState: state,
		Message:   state.Message,
	}, nil
}

// SetMode switches the movement source for a session
func (s *gameServiceImpl) SetMode(ctx context.Context, sessionID, mode string) (*ModeResult, error) {
	parsed, err := movement.ParseMode(mode)
	if err != nil {
		return nil, fmt.Errorf("invalid mode %q: %w", mode, err)
	}

	s.mu.Lock()
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	ctrl := s.ensureController(sess)
	// Switch outside the lock: stopping the continuous source waits out
	// any in-flight fix, and that fix needs the lock to finish.
	s.mu.Unlock()

	if err := ctrl.SetMode(parsed); err != nil {
		return nil, fmt.Errorf("failed to switch mode: %w", err)
	}

	return &ModeResult{
		Mode:    ctrl.ModeLabel(),
		Message: fmt.Sprintf("movement mode set to %s", ctrl.ModeLabel()),
	}, nil
}

// NewGame clears the save slot and restarts the session's game
func (s *gameServiceImpl) NewGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	// Clear the slot first so a crash mid-restart never resurrects the
	// finished game.
	if err := s.sessions.ClearSlot(sessionID); err != nil {
		return nil, fmt.Errorf("failed to clear save slot: %w", err)
	}

	state := sess.Engine.NewGame()
	state.Message = sess.Rules.Messages.Welcome

	s.notify(sessionID, GameEvent{
		Type:      "new_game",
		Message:   "Started a new game",
		Timestamp: time.Now(),
		Position:  state.PlayerPos,
	})

	s.autosave(sessionID, sess)
	return state, nil
}

// SaveGame persists the session's current state
func (s *gameServiceImpl) SaveGame(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sessions.Get(sessionID); err != nil {
		return fmt.Errorf("session not found: %w", err)
	}
	return s.sessions.Save(sessionID)
}

// GetGameState returns the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return sess.Engine.GetState(), nil
}

// GetViewport returns the window of cells around the player
func (s *gameServiceImpl) GetViewport(ctx context.Context, sessionID string) ([]engine.ViewportCell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return sess.Engine.Viewport(), nil
}

// GetActionHistory returns paginated action history for a session
func (s *gameServiceImpl) GetActionHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	history := sess.Engine.GetActionHistory()
	total := len(history)

	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > engine.MaxHistoryLimit {
		opts.Limit = engine.MaxHistoryLimit
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}

	ordered := make([]engine.ActionEntry, total)
	copy(ordered, history)
	if opts.Order != "asc" {
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	return &HistoryResponse{
		Actions:      ordered[start:end],
		TotalActions: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// ListRules returns all available rule sets
func (s *gameServiceImpl) ListRules(ctx context.Context) ([]*RulesInfo, error) {
	return s.rules.ListRules()
}

// LoadRules loads a specific rule set
func (s *gameServiceImpl) LoadRules(ctx context.Context, rulesName string) (*engine.Rules, error) {
	return s.rules.LoadRules(rulesName)
}

// SaveRules stores a rule set after validation
func (s *gameServiceImpl) SaveRules(ctx context.Context, rulesName string, rules *engine.Rules) error {
	if err := engine.ValidateRules(rules); err != nil {
		return err
	}
	return s.rules.SaveRules(rulesName, rules)
}

// ensureController returns the movement controller for a session,
// creating it on first use. Caller must hold s.mu.
func (s *gameServiceImpl) ensureController(sess *Session) *movement.Controller {
	key := strings.ToLower(sess.ID)
	if ctrl, ok := s.controllers[key]; ok {
		return ctrl
	}

	var feed movement.Feed
	if s.feeds != nil {
		feed = s.feeds.Feed(sess.ID)
	}

	sink := &gameSink{svc: s, sessionID: sess.ID}
	ctrl := movement.NewController(sink, feed, sess.Rules.CellSizeDeg)
	ctrl.OnFallback = func(reason string) {
		s.notify(sess.ID, GameEvent{
			Type:      "mode_fallback",
			Message:   fmt.Sprintf(sess.Rules.Messages.FeedLost, reason),
			Timestamp: time.Now(),
		})
		log.Warn("position feed lost, falling back to manual", "session", sess.ID, "reason", reason)
	}
	s.controllers[key] = ctrl
	return ctrl
}

// extractClickEvents converts an interaction outcome into game events
func (s *gameServiceImpl) extractClickEvents(sess *Session, out *engine.Outcome, target engine.Coord) []GameEvent {
	now := time.Now()
	var events []GameEvent

	switch out.Kind {
	case engine.OutcomePickUp:
		events = append(events, GameEvent{
			Type:      "pick_up",
			Message:   fmt.Sprintf(sess.Rules.Messages.PickUp, out.Held),
			Timestamp: now,
			Position:  target,
		})
	case engine.OutcomeMerge:
		// The merged token lands in the hand; the cell is cleared.
		events = append(events, GameEvent{
			Type:      "merge",
			Message:   fmt.Sprintf(sess.Rules.Messages.Merge, out.Held),
			Timestamp: now,
			Position:  target,
		})
	case engine.OutcomeSwap:
		events = append(events, GameEvent{
			Type:      "swap",
			Message:   fmt.Sprintf(sess.Rules.Messages.Swap, out.Held),
			Timestamp: now,
			Position:  target,
		})
	}

	if out.Won {
		events = append(events, GameEvent{
			Type:      "win",
			Message:   fmt.Sprintf(sess.Rules.Messages.Win, out.Held),
			Timestamp: now,
			Position:  target,
		})
	}

	return events
}

// autosave persists a session after a mutation. Failure is reported but
// never fails the operation itself.
func (s *gameServiceImpl) autosave(sessionID string, sess *Session) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warn("failed to persist session", "session", sessionID, "error", err)
		s.notify(sessionID, GameEvent{
			Type:      "save_failed",
			Message:   "failed to save game progress",
			Timestamp: time.Now(),
		})
	}
}

func (s *gameServiceImpl) notify(sessionID string, event GameEvent) {
	if s.notifier != nil {
		s.notifier.Notify(sessionID, event)
	}
}

// gameSink routes accepted position changes into the engine.
//
// StepPlayer is only ever called synchronously from Move, which already
// holds the service lock. PlacePlayer arrives asynchronously from the
// position feed and takes the lock itself.
type gameSink struct {
	svc       *gameServiceImpl
	sessionID string
}

func (g *gameSink) StepPlayer(dir engine.Direction) error {
	sess, err := g.svc.sessions.Get(g.sessionID)
	if err != nil {
		return fmt.Errorf("session not found: %w", err)
	}
	return sess.Engine.Step(dir)
}

func (g *gameSink) PlacePlayer(c engine.Coord) {
	g.svc.mu.Lock()
	defer g.svc.mu.Unlock()

	sess, err := g.svc.sessions.Get(g.sessionID)
	if err != nil {
		log.Warn("dropping position fix for unknown session", "session", g.sessionID)
		return
	}

	if !sess.Engine.PlacePlayer(c) {
		return
	}

	g.svc.notify(g.sessionID, GameEvent{
		Type:      "position",
		Message:   fmt.Sprintf("moved to cell %s", c.Key()),
		Timestamp: time.Now(),
		Position:  c,
	})
	g.svc.autosave(g.sessionID, sess)
}
