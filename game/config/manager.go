package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/openmapgames/mergewalk/game/engine"
	"github.com/openmapgames/mergewalk/game/service"
)

var (
	ErrRulesNotFound = errors.New("rules not found")
	ErrInvalidRules  = errors.New("invalid rules")
)

// Manager handles rule set loading and caching
type Manager struct {
	rulesDir     string
	defaultRules *engine.Rules
	rules        map[string]*engine.Rules
	mu           sync.RWMutex
}

// NewManager creates a new rules manager rooted at rulesDir, creating
// the directory if needed.
func NewManager(rulesDir string) (*Manager, error) {
	if err := os.MkdirAll(rulesDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create rules directory: %w", err)
	}

	m := &Manager{
		rulesDir: rulesDir,
		rules:    make(map[string]*engine.Rules),
	}
	m.loadDefaultRules()
	return m, nil
}

// LoadRules loads a rule set by name
func (m *Manager) LoadRules(name string) (*engine.Rules, error) {
	m.mu.RLock()
	if rules, exists := m.rules[name]; exists {
		m.mu.RUnlock()
		return rules, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if rules, exists := m.rules[name]; exists {
		return rules, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.rulesDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			// The built-in rule set needs no file on disk.
			if name == "classic" {
				rules := engine.DefaultRules()
				m.rules[name] = rules
				return rules, nil
			}
			return nil, ErrRulesNotFound
		}
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules engine.Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	if err := engine.ValidateRules(&rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	m.rules[name] = &rules
	return &rules, nil
}

// ListRules returns information about all available rule sets. The
// built-in classic set is always listed, even with an empty directory.
func (m *Manager) ListRules() ([]*service.RulesInfo, error) {
	entries, err := os.ReadDir(m.rulesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules directory: %w", err)
	}

	var infos []*service.RulesInfo
	seenClassic := false

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		rules, err := m.LoadRules(name)
		if err != nil {
			// Skip invalid rule files
			continue
		}
		if name == "classic" {
			seenClassic = true
		}

		infos = append(infos, &service.RulesInfo{
			Filename:    entry.Name(),
			RulesID:     name, // This is the identifier to use for session creation
			Name:        rules.Name,
			Description: rules.Description,
			WinValue:    rules.WinValue,
			ViewRadius:  rules.ViewRadius,
		})
	}

	if !seenClassic {
		builtin := engine.DefaultRules()
		infos = append(infos, &service.RulesInfo{
			Filename:    "classic.json",
			RulesID:     "classic",
			Name:        builtin.Name,
			Description: builtin.Description,
			WinValue:    builtin.WinValue,
			ViewRadius:  builtin.ViewRadius,
		})
	}

	return infos, nil
}

// GetDefault returns the default rule set
func (m *Manager) GetDefault() *engine.Rules {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultRules
}

// SetDefault sets the default rule set by name
func (m *Manager) SetDefault(name string) error {
	rules, err := m.LoadRules(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultRules = rules
	return nil
}

// RefreshCache drops all cached rule sets so the next load re-reads disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.rules = make(map[string]*engine.Rules)
	m.mu.Unlock()

	m.loadDefaultRules()
}

// loadDefaultRules installs classic.json as the default, falling back to
// the built-in rule set when the file is absent or broken.
func (m *Manager) loadDefaultRules() {
	rules, err := m.LoadRules("classic")
	if err != nil {
		rules = engine.DefaultRules()
	}

	m.mu.Lock()
	m.defaultRules = rules
	m.mu.Unlock()
}

// SaveRules saves a rule set to disk
func (m *Manager) SaveRules(name string, rules *engine.Rules) error {
	if err := engine.ValidateRules(rules); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.rulesDir, filename), data, 0o644); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}

	m.mu.Lock()
	m.rules[name] = rules
	m.mu.Unlock()

	return nil
}
