package session_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openmapgames/mergewalk/game/engine"
	"github.com/openmapgames/mergewalk/game/service"
	"github.com/openmapgames/mergewalk/game/session"
)

// stubRules serves the default rule set under its canonical name
type stubRules struct{}

func (stubRules) LoadRules(name string) (*engine.Rules, error) {
	if name == "classic" {
		return engine.DefaultRules(), nil
	}
	return nil, fmt.Errorf("rules not found: %s", name)
}

func (stubRules) ListRules() ([]*service.RulesInfo, error) {
	return []*service.RulesInfo{{RulesID: "classic", Name: "classic"}}, nil
}

func (stubRules) GetDefault() *engine.Rules { return engine.DefaultRules() }

func (stubRules) SaveRules(string, *engine.Rules) error { return nil }

func newFileManager(t *testing.T) (*session.Manager, *session.FilePersistence, string) {
	t.Helper()
	dir := t.TempDir()
	p, err := session.NewFilePersistence(dir)
	if err != nil {
		t.Fatalf("NewFilePersistence failed: %v", err)
	}
	return session.NewManagerWithPersistence(p, stubRules{}), p, dir
}

func TestManager_CreateGeneratesID(t *testing.T) {
	m := session.NewManager(stubRules{})

	sess, err := m.Create("", engine.DefaultRules())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(sess.ID) != 4 {
		t.Errorf("generated ID %q, want 4 hex characters", sess.ID)
	}
}

func TestManager_CreateDuplicate(t *testing.T) {
	m := session.NewManager(stubRules{})

	if _, err := m.Create("abcd", engine.DefaultRules()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := m.Create("ABCD", engine.DefaultRules()); !errors.Is(err, session.ErrSessionAlreadyExists) {
		t.Errorf("duplicate create error = %v, want ErrSessionAlreadyExists", err)
	}
}

func TestManager_GetCaseInsensitive(t *testing.T) {
	m := session.NewManager(stubRules{})

	m.Create("AbCd", engine.DefaultRules())
	if _, err := m.Get("ABCD"); err != nil {
		t.Errorf("case-insensitive Get failed: %v", err)
	}
	if _, err := m.Get("missing"); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("missing Get error = %v, want ErrSessionNotFound", err)
	}
}

func TestManager_GetRestoresFromStorage(t *testing.T) {
	m, _, _ := newFileManager(t)

	sess, err := m.Create("save", engine.DefaultRules())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sess.Engine.GetState().Held = 4
	if err := m.Save("save"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := m.DeleteFromMemory("save"); err != nil {
		t.Fatalf("DeleteFromMemory failed: %v", err)
	}

	restored, err := m.Get("save")
	if err != nil {
		t.Fatalf("Get after eviction failed: %v", err)
	}
	if restored.Engine.GetHeldToken() != 4 {
		t.Errorf("restored held = %d, want 4", restored.Engine.GetHeldToken())
	}
}

func TestManager_GetOrCreate_CorruptSlotStartsFresh(t *testing.T) {
	m, _, dir := newFileManager(t)

	// A slot that parses but fails restoration.
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"not":"a save"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	sess, err := m.GetOrCreate("bad", engine.DefaultRules())
	if err != nil {
		t.Fatalf("GetOrCreate over corrupt slot failed: %v", err)
	}
	if sess.Engine.GetHeldToken() != 0 || sess.Engine.IsWon() {
		t.Error("corrupt slot should yield a fresh game")
	}
}

func TestManager_GetOrCreate_CorruptJSONStartsFresh(t *testing.T) {
	m, _, dir := newFileManager(t)

	if err := os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{{{"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := m.GetOrCreate("junk", engine.DefaultRules()); err != nil {
		t.Fatalf("GetOrCreate over unparseable slot failed: %v", err)
	}
}

func TestManager_DeleteRemovesSlot(t *testing.T) {
	m, p, _ := newFileManager(t)

	m.Create("gone", engine.DefaultRules())
	if !p.Exists("gone") {
		t.Fatal("create should persist the slot")
	}
	if err := m.Delete("gone"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if p.Exists("gone") {
		t.Error("slot should be removed after delete")
	}
	if err := m.Delete("gone"); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("second delete error = %v, want ErrSessionNotFound", err)
	}
}

func TestManager_ClearSlotKeepsMemory(t *testing.T) {
	m, p, _ := newFileManager(t)

	m.Create("ng", engine.DefaultRules())
	if err := m.ClearSlot("ng"); err != nil {
		t.Fatalf("ClearSlot failed: %v", err)
	}
	if p.Exists("ng") {
		t.Error("slot should be gone")
	}
	if _, err := m.Get("ng"); err != nil {
		t.Errorf("in-memory session should survive ClearSlot: %v", err)
	}

	// Clearing an already-empty slot is fine.
	if err := m.ClearSlot("ng"); err != nil {
		t.Errorf("ClearSlot on empty slot = %v, want nil", err)
	}
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	m := session.NewManager(stubRules{})

	old, _ := m.Create("old1", engine.DefaultRules())
	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	m.Create("new1", engine.DefaultRules())

	removed := m.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if m.Count() != 1 {
		t.Errorf("count = %d, want 1", m.Count())
	}
}

func TestManager_LoadPersistedSessions(t *testing.T) {
	dir := t.TempDir()
	p, err := session.NewFilePersistence(dir)
	if err != nil {
		t.Fatal(err)
	}

	first := session.NewManagerWithPersistence(p, stubRules{})
	first.Create("aaaa", engine.DefaultRules())
	first.Create("bbbb", engine.DefaultRules())
	if err := first.SaveAllSessions(); err != nil {
		t.Fatalf("SaveAllSessions failed: %v", err)
	}

	// One corrupt slot must not block the rest.
	if err := os.WriteFile(filepath.Join(dir, "cccc.json"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	second := session.NewManagerWithPersistence(p, stubRules{})
	if err := second.LoadPersistedSessions(); err != nil {
		t.Fatalf("LoadPersistedSessions failed: %v", err)
	}
	if second.Count() != 2 {
		t.Errorf("loaded %d sessions, want 2", second.Count())
	}
}
