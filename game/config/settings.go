package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerSettings holds process-level configuration, as opposed to the
// per-game rule sets the Manager serves.
type ServerSettings struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	RulesDir string `yaml:"rules_dir"`
	SavesDir string `yaml:"saves_dir"`
	Storage  string `yaml:"storage"` // "file" or "sqlite"
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`
}

// DefaultSettings returns the built-in server settings.
func DefaultSettings() ServerSettings {
	return ServerSettings{
		Host:     "0.0.0.0",
		Port:     "8080",
		RulesDir: "rules",
		SavesDir: "saves",
		Storage:  "file",
		DBPath:   "saves/mergewalk.db",
		LogLevel: "info",
	}
}

// LoadSettings loads server settings.
// Search order: customPath -> ./mergewalk.yaml -> built-in defaults.
// Missing fields in a loaded file keep their default value.
func LoadSettings(customPath string) (ServerSettings, error) {
	cfg := DefaultSettings()

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read settings %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse settings %s: %w", customPath, err)
		}
		return cfg, cfg.validate()
	}

	if data, err := os.ReadFile("mergewalk.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse settings mergewalk.yaml: %w", err)
		}
	}

	return cfg, cfg.validate()
}

func (s ServerSettings) validate() error {
	switch s.Storage {
	case "file", "sqlite":
	default:
		return fmt.Errorf("invalid storage backend %q (want file or sqlite)", s.Storage)
	}
	if s.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	return nil
}
