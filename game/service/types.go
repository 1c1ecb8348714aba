package service

import (
	"time"

	"github.com/openmapgames/mergewalk/game/engine"
	"github.com/openmapgames/mergewalk/game/movement"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	RulesName      string            `json:"rules_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	Mode           string            `json:"mode"`
	GameState      *engine.GameState `json:"game_state"`
	Rules          *engine.Rules     `json:"rules"`
}

// ClickResult contains the result of a cell interaction
type ClickResult struct {
	Success   bool              `json:"success"`
	Outcome   string            `json:"outcome,omitempty"` // pick_up|merge|swap, empty when nothing happened
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
	Won       bool              `json:"won"`
}

// MoveResult contains the result of a directional step
type MoveResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// ModeResult reports the movement mode after a switch attempt
type ModeResult struct {
	Mode    string `json:"mode"`
	Message string `json:"message,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string       `json:"type"` // "pick_up", "merge", "swap", "win", "new_game", "mode_fallback", "save_failed", "position"
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
	Position  engine.Coord `json:"position,omitempty"`
}

// HistoryOptions configures action history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated action history
type HistoryResponse struct {
	Actions      []engine.ActionEntry `json:"actions"`
	TotalActions int                  `json:"total_actions"`
	Page         int                  `json:"page"`
	PageSize     int                  `json:"page_size"`
	TotalPages   int                  `json:"total_pages"`
	HasNext      bool                 `json:"has_next"`
	HasPrevious  bool                 `json:"has_previous"`
}

// RulesInfo provides information about a stored rule set
type RulesInfo struct {
	Filename    string `json:"filename"`
	RulesID     string `json:"rules_id"` // The identifier to use for session creation
	Name        string `json:"name"`     // Display name
	Description string `json:"description"`
	WinValue    int    `json:"win_value"`
	ViewRadius  int    `json:"view_radius"`
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, rules *engine.Rules) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, rules *engine.Rules) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
	ClearSlot(id string) error
}

// RulesManager handles rule set loading
type RulesManager interface {
	LoadRules(name string) (*engine.Rules, error)
	ListRules() ([]*RulesInfo, error)
	GetDefault() *engine.Rules
	SaveRules(name string, rules *engine.Rules) error
}

// FeedProvider supplies the external position feed for a session. A nil
// provider (or a nil feed) leaves continuous movement unavailable.
type FeedProvider interface {
	Feed(sessionID string) movement.Feed
}

// Notifier receives game events for delivery to connected clients.
type Notifier interface {
	Notify(sessionID string, event GameEvent)
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Rules          *engine.Rules
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
