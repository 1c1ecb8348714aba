package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilePersistence stores one JSON file per save slot under a directory.
type FilePersistence struct {
	dir string
}

// NewFilePersistence creates the save directory if needed.
func NewFilePersistence(dir string) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}
	return &FilePersistence{dir: dir}, nil
}

func (p *FilePersistence) path(id string) string {
	return filepath.Join(p.dir, strings.ToLower(id)+".json")
}

func (p *FilePersistence) Save(data *SaveData) error {
	buf, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal save data: %w", err)
	}

	// Write through a temp file so a crash mid-write never leaves a
	// truncated slot behind.
	tmp := p.path(data.ID) + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := os.Rename(tmp, p.path(data.ID)); err != nil {
		return fmt.Errorf("failed to finalize save file: %w", err)
	}
	return nil
}

func (p *FilePersistence) Load(id string) (*SaveData, error) {
	buf, err := os.ReadFile(p.path(id))
	if os.IsNotExist(err) {
		return nil, ErrSaveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}

	var data SaveData
	if err := json.Unmarshal(buf, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveCorrupt, err)
	}
	return &data, nil
}

func (p *FilePersistence) Delete(id string) error {
	err := os.Remove(p.path(id))
	if os.IsNotExist(err) {
		return ErrSaveNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete save file: %w", err)
	}
	return nil
}

func (p *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read save directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

func (p *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(p.path(id))
	return err == nil
}
