// Command validate provides a small CLI that validates game rule JSON files
// in the ../rules directory. It checks:
//   - JSON structure and required fields
//   - Value ranges (spawn chances, radii, cell size)
//   - Winnability: the win value must be a base value times a power of two
//   - Required message keys and their format verbs
//   - Playability heuristics: spawn density, reach vs view, chain length
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openmapgames/mergewalk/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateRulesFile loads and validates a single rules JSON file. It runs
// the engine's structural validation first, then layers playability
// heuristics on top.
func validateRulesFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var rules engine.Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateRules(&rules); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	// Heuristics. These never fail validation, they flag likely mistakes.
	warnings := playabilityWarnings(&rules)
	result.Errors = append(result.Errors, warnings...)

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", rules.Name))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Win value: %d", rules.WinValue))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Values: %d/%d, spawn %.0f%%",
		rules.LowValue, rules.HighValue, rules.SpawnChance*100))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Radii: reach %d, view %d",
		rules.ReachRadius, rules.ViewRadius))

	return result
}

// playabilityWarnings flags rule combinations that validate but make for a
// miserable or degenerate game.
func playabilityWarnings(rules *engine.Rules) []string {
	var warnings []string

	if rules.SpawnChance < 0.02 {
		warnings = append(warnings, fmt.Sprintf(
			"⚠ spawn_chance %.3f is very low, players will walk far between tokens", rules.SpawnChance))
	}
	if rules.SpawnChance > 0.5 {
		warnings = append(warnings, fmt.Sprintf(
			"⚠ spawn_chance %.2f is very high, merges will be trivial", rules.SpawnChance))
	}

	if rules.ReachRadius > rules.ViewRadius {
		warnings = append(warnings, fmt.Sprintf(
			"⚠ reach_radius %d exceeds view_radius %d, players can click cells they cannot see",
			rules.ReachRadius, rules.ViewRadius))
	}

	if depth := doublings(rules.LowValue, rules.WinValue); depth > 10 {
		warnings = append(warnings, fmt.Sprintf(
			"⚠ winning takes %d doublings from %d, expect very long games", depth, rules.LowValue))
	}

	if rules.LowValueChance == 0 {
		warnings = append(warnings, fmt.Sprintf(
			"⚠ low_value_chance is 0, value %d never spawns", rules.LowValue))
	}
	if rules.LowValueChance == 1 {
		warnings = append(warnings, fmt.Sprintf(
			"⚠ low_value_chance is 1, value %d never spawns", rules.HighValue))
	}

	return warnings
}

// doublings counts merge steps from base to target, or -1 when target is
// not on base's doubling chain.
func doublings(base, target int) int {
	if base < 1 {
		return -1
	}
	depth := 0
	for v := base; v <= target; v *= 2 {
		if v == target {
			return depth
		}
		depth++
	}
	return -1
}

// main scans ../rules for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	rulesDir := "../rules"
	if len(os.Args) > 1 {
		rulesDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(rulesDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding rule files: %v\n", err)
		os.Exit(1)
	}

	if len(files) == 0 {
		fmt.Printf("No rule files found in %s\n", rulesDir)
		return
	}

	allValid := true
	for _, file := range files {
		result := validateRulesFile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All rule files are valid!")
	} else {
		fmt.Println("❌ Some rule files have errors")
		os.Exit(1)
	}
}
