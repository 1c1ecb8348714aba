package engine

import (
	"fmt"
	"strings"
)

// DefaultRules returns the built-in rule set.
func DefaultRules() *Rules {
	r := &Rules{
		Name:           "classic",
		Description:    "Craft one token of value 256 by merging equal tokens found around you",
		CellSizeDeg:    DefaultCellSizeDeg,
		SpawnChance:    DefaultSpawnChance,
		LowValueChance: DefaultLowValueChance,
		LowValue:       DefaultLowValue,
		HighValue:      DefaultHighValue,
		WinValue:       DefaultWinValue,
		ReachRadius:    DefaultReachRadius,
		ViewRadius:     DefaultViewRadius,
	}
	r.Messages.Welcome = "Welcome! Walk around and merge equal tokens."
	r.Messages.PickUp = "Picked up a %d token"
	r.Messages.Merge = "Merged into a %d token"
	r.Messages.Swap = "Swapped, now holding a %d token"
	r.Messages.Win = "You crafted the %d token. You win!"
	r.Messages.OutOfReach = "That cell is too far away"
	r.Messages.FeedLost = "Position feed lost (%s), switched to manual movement"
	return r
}

// ValidateRules validates a rule set for correctness and winnability
func ValidateRules(rules *Rules) error {
	if rules == nil {
		return fmt.Errorf("rules validation: rules cannot be nil")
	}
	if rules.Name == "" {
		return fmt.Errorf("rules validation: name is required")
	}

	if rules.CellSizeDeg <= 0 {
		return fmt.Errorf("rules validation: cell_size_deg must be positive, got %g", rules.CellSizeDeg)
	}
	if rules.SpawnChance < 0 || rules.SpawnChance > 1 {
		return fmt.Errorf("rules validation: spawn_chance must be in [0,1], got %g", rules.SpawnChance)
	}
	if rules.LowValueChance < 0 || rules.LowValueChance > 1 {
		return fmt.Errorf("rules validation: low_value_chance must be in [0,1], got %g", rules.LowValueChance)
	}

	if rules.LowValue < 1 {
		return fmt.Errorf("rules validation: low_value must be at least 1, got %d", rules.LowValue)
	}
	if rules.HighValue <= rules.LowValue {
		return fmt.Errorf("rules validation: high_value must exceed low_value, got %d <= %d",
			rules.HighValue, rules.LowValue)
	}

	if rules.ReachRadius < MinRadius || rules.ReachRadius > MaxRadius {
		return fmt.Errorf("rules validation: reach_radius must be between %d and %d, got %d",
			MinRadius, MaxRadius, rules.ReachRadius)
	}
	if rules.ViewRadius < MinRadius || rules.ViewRadius > MaxRadius {
		return fmt.Errorf("rules validation: view_radius must be between %d and %d, got %d",
			MinRadius, MaxRadius, rules.ViewRadius)
	}

	// Winnability: merging only doubles, so the win value must be a base
	// value times a power of two.
	if rules.WinValue <= rules.HighValue {
		return fmt.Errorf("rules validation: win_value must exceed high_value, got %d", rules.WinValue)
	}
	if !reachableByDoubling(rules.WinValue, rules.LowValue) && !reachableByDoubling(rules.WinValue, rules.HighValue) {
		return fmt.Errorf("rules validation: win_value %d is not reachable by doubling %d or %d",
			rules.WinValue, rules.LowValue, rules.HighValue)
	}

	// Required messages and their format verbs
	required := []struct{ name, value string }{
		{"welcome", rules.Messages.Welcome},
		{"pick_up", rules.Messages.PickUp},
		{"merge", rules.Messages.Merge},
		{"win", rules.Messages.Win},
		{"out_of_reach", rules.Messages.OutOfReach},
	}
	for _, m := range required {
		if m.value == "" {
			return fmt.Errorf("rules validation: messages.%s is required", m.name)
		}
	}
	for _, m := range []struct{ name, value string }{
		{"pick_up", rules.Messages.PickUp},
		{"merge", rules.Messages.Merge},
		{"win", rules.Messages.Win},
	} {
		if !strings.Contains(m.value, "%d") {
			return fmt.Errorf("rules validation: messages.%s must contain %%d for the token value", m.name)
		}
	}

	return nil
}

func reachableByDoubling(target, base int) bool {
	for v := base; v <= target; v *= 2 {
		if v == target {
			return true
		}
	}
	return false
}
