package session_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/openmapgames/mergewalk/game/engine"
	"github.com/openmapgames/mergewalk/game/session"
)

func sampleSave(id string) *session.SaveData {
	eng := engine.NewEngineWithDefaults()
	eng.GetState().Held = 2
	return &session.SaveData{
		ID:        id,
		RulesName: "classic",
		CreatedAt: time.Now().Add(-time.Minute),
		SavedAt:   time.Now(),
		Game:      eng.Snapshot(),
	}
}

func testSlotStore(t *testing.T, store session.SlotPersistence) {
	t.Helper()

	if _, err := store.Load("nope"); !errors.Is(err, session.ErrSaveNotFound) {
		t.Errorf("Load missing = %v, want ErrSaveNotFound", err)
	}
	if store.Exists("nope") {
		t.Error("Exists should be false for missing slot")
	}

	if err := store.Save(sampleSave("ab12")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !store.Exists("ab12") {
		t.Error("Exists should be true after save")
	}

	data, err := store.Load("ab12")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if data.RulesName != "classic" {
		t.Errorf("rules name = %q, want classic", data.RulesName)
	}
	if data.Game == nil || data.Game.HeldToken == nil || *data.Game.HeldToken != 2 {
		t.Errorf("held token not preserved: %+v", data.Game)
	}

	// Overwrite is allowed.
	updated := sampleSave("ab12")
	updated.RulesName = "classic"
	if err := store.Save(updated); err != nil {
		t.Fatalf("overwrite Save failed: %v", err)
	}

	ids, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "ab12" {
		t.Errorf("ListAll = %v, want [ab12]", ids)
	}

	if err := store.Delete("ab12"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete("ab12"); !errors.Is(err, session.ErrSaveNotFound) {
		t.Errorf("double Delete = %v, want ErrSaveNotFound", err)
	}
}

func TestFilePersistence(t *testing.T) {
	p, err := session.NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	testSlotStore(t, p)
}

func TestSQLitePersistence(t *testing.T) {
	p, err := session.NewSQLitePersistence(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	testSlotStore(t, p)
}

func TestFilePersistence_CaseInsensitiveIDs(t *testing.T) {
	p, err := session.NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Save(sampleSave("AB12")); err != nil {
		t.Fatal(err)
	}
	if !p.Exists("ab12") {
		t.Error("slot lookup should be case-insensitive")
	}
}
