package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/openmapgames/mergewalk/game/engine"
	"github.com/openmapgames/mergewalk/game/service"
)

var (
	// ErrSaveNotFound means the slot has never been written. A valid
	// state on first run, not a failure.
	ErrSaveNotFound = errors.New("save not found")

	// ErrSaveCorrupt means the slot exists but cannot be adopted.
	// Callers fall back to defaults rather than partially applying it.
	ErrSaveCorrupt = errors.New("save data corrupt")
)

// SlotPersistence is the durable save slot backing a session.
type SlotPersistence interface {
	// Save writes the slot for a session.
	Save(data *SaveData) error

	// Load reads a slot. Missing slots yield ErrSaveNotFound; unreadable
	// ones wrap ErrSaveCorrupt.
	Load(id string) (*SaveData, error)

	// Delete clears a slot.
	Delete(id string) error

	// ListAll returns every persisted session ID.
	ListAll() ([]string, error)

	// Exists checks whether a slot is present.
	Exists(id string) bool
}

// SaveData is the persisted record for one save slot.
type SaveData struct {
	ID        string           `json:"id"`
	RulesName string           `json:"rules_name"`
	CreatedAt time.Time        `json:"created_at"`
	SavedAt   time.Time        `json:"saved_at"`
	Game      *engine.Snapshot `json:"game"`
}

// saveDataFor projects a session into its persisted record.
func saveDataFor(sess *service.Session) *SaveData {
	return &SaveData{
		ID:        sess.ID,
		RulesName: sess.Rules.Name,
		CreatedAt: sess.CreatedAt,
		SavedAt:   time.Now(),
		Game:      sess.Engine.Snapshot(),
	}
}

// sessionFromSaveData rebuilds a live session from a persisted record.
// Any defect in the record yields ErrSaveCorrupt and no session.
func sessionFromSaveData(data *SaveData, rules service.RulesManager) (*service.Session, error) {
	if data.Game == nil {
		return nil, fmt.Errorf("%w: missing game snapshot", ErrSaveCorrupt)
	}

	ruleSet, err := rules.LoadRules(data.RulesName)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules %q: %w", data.RulesName, err)
	}

	eng, err := engine.NewEngine(ruleSet)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}
	if err := eng.Restore(data.Game); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveCorrupt, err)
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         eng,
		Rules:          ruleSet,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.SavedAt,
	}, nil
}
