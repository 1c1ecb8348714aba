package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openmapgames/mergewalk/game/engine"
)

func writeRulesFile(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp(t.TempDir(), "test_rules_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write rules: %v", err)
	}
	tmpfile.Close()
	return tmpfile.Name()
}

func TestValidateRulesFile_ValidRules(t *testing.T) {
	data, err := json.Marshal(engine.DefaultRules())
	if err != nil {
		t.Fatalf("Failed to marshal rules: %v", err)
	}

	path := writeRulesFile(t, string(data))

	result := validateRulesFile(path)
	if !result.Valid {
		t.Errorf("Expected valid rules, but got errors: %v", result.Errors)
	}

	if result.File != filepath.Base(path) {
		t.Errorf("Expected file name %s, got %s", filepath.Base(path), result.File)
	}
}

func TestValidateRulesFile_InvalidJSON(t *testing.T) {
	path := writeRulesFile(t, `{"name": "test", invalid json}`)

	result := validateRulesFile(path)
	if result.Valid {
		t.Error("Expected invalid result for malformed JSON")
	}

	found := false
	for _, e := range result.Errors {
		if strings.Contains(e, "Invalid JSON") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected 'Invalid JSON' error, got: %v", result.Errors)
	}
}

func TestValidateRulesFile_MissingFile(t *testing.T) {
	result := validateRulesFile("/nonexistent/rules.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
}

func TestValidateRulesFile_UnwinnableWinValue(t *testing.T) {
	rules := engine.DefaultRules()
	rules.WinValue = 300 // not a power-of-two multiple of 2 or 4

	data, _ := json.Marshal(rules)
	path := writeRulesFile(t, string(data))

	result := validateRulesFile(path)
	if result.Valid {
		t.Error("Expected invalid result for unreachable win value")
	}

	found := false
	for _, e := range result.Errors {
		if strings.Contains(e, "not reachable by doubling") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected winnability error, got: %v", result.Errors)
	}
}

func TestValidateRulesFile_MissingMessages(t *testing.T) {
	rules := engine.DefaultRules()
	rules.Messages.Win = ""

	data, _ := json.Marshal(rules)
	path := writeRulesFile(t, string(data))

	result := validateRulesFile(path)
	if result.Valid {
		t.Error("Expected invalid result for missing win message")
	}
}

func TestPlayabilityWarnings_SparseField(t *testing.T) {
	rules := engine.DefaultRules()
	rules.SpawnChance = 0.01

	warnings := playabilityWarnings(rules)

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "very low") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected sparse-field warning, got: %v", warnings)
	}
}

func TestPlayabilityWarnings_ReachBeyondView(t *testing.T) {
	rules := engine.DefaultRules()
	rules.ReachRadius = rules.ViewRadius + 1

	warnings := playabilityWarnings(rules)

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "cannot see") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected reach-beyond-view warning, got: %v", warnings)
	}
}

func TestPlayabilityWarnings_CleanRules(t *testing.T) {
	warnings := playabilityWarnings(engine.DefaultRules())
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings for classic rules, got: %v", warnings)
	}
}

func TestDoublings(t *testing.T) {
	tests := []struct {
		base     int
		target   int
		expected int
	}{
		{2, 256, 7},
		{4, 256, 6},
		{2, 2, 0},
		{3, 256, -1},
		{0, 8, -1},
	}

	for _, test := range tests {
		result := doublings(test.base, test.target)
		if result != test.expected {
			t.Errorf("doublings(%d, %d) = %d, expected %d",
				test.base, test.target, result, test.expected)
		}
	}
}
