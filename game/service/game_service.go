package service

import (
	"context"

	"github.com/openmapgames/mergewalk/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, rulesName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Click(ctx context.Context, sessionID string, target engine.Coord) (*ClickResult, error)
	Move(ctx context.Context, sessionID, direction string) (*MoveResult, error)
	SetMode(ctx context.Context, sessionID, mode string) (*ModeResult, error)
	NewGame(ctx context.Context, sessionID string) (*engine.GameState, error)
	SaveGame(ctx context.Context, sessionID string) error

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetViewport(ctx context.Context, sessionID string) ([]engine.ViewportCell, error)
	GetActionHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Rules
	ListRules(ctx context.Context) ([]*RulesInfo, error)
	LoadRules(ctx context.Context, rulesName string) (*engine.Rules, error)
	SaveRules(ctx context.Context, rulesName string, rules *engine.Rules) error
}
