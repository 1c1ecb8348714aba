// Command analyze prints quick, human-readable heuristics about rule files
// in the project's rules directory. It samples the deterministic spawn field
// around the origin and summarizes token density, the low/high value mix,
// the merge-chain depth needed to reach the win value, and whether the
// sampled region carries enough tokens to finish a game at all.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openmapgames/mergewalk/game/engine"
)

// sampleRadius bounds the square of cells sampled around the origin.
const sampleRadius = 50

// FieldStats aggregates spawn outcomes over the sampled region.
type FieldStats struct {
	Cells     int
	Tokens    int
	LowCount  int
	HighCount int
}

// Density is the fraction of sampled cells that spawn a token.
func (s FieldStats) Density() float64 {
	if s.Cells == 0 {
		return 0
	}
	return float64(s.Tokens) / float64(s.Cells)
}

func main() {
	dir := "rules"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Printf("Error reading rules directory %s: %v\n", dir, err)
		fmt.Println("\n=== Analyzing built-in classic rules ===")
		analyzeRules(engine.DefaultRules())
		return
	}

	analyzed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		fmt.Printf("\n=== Analyzing %s ===\n", entry.Name())
		analyzeRulesFile(filepath.Join(dir, entry.Name()))
		analyzed++
	}

	if analyzed == 0 {
		fmt.Printf("No rule files in %s\n", dir)
		fmt.Println("\n=== Analyzing built-in classic rules ===")
		analyzeRules(engine.DefaultRules())
	}
}

func analyzeRulesFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var rules engine.Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	if err := engine.ValidateRules(&rules); err != nil {
		fmt.Printf("⚠️  Rules are invalid: %v\n", err)
		return
	}

	analyzeRules(&rules)
}

func analyzeRules(rules *engine.Rules) {
	fmt.Printf("Name: %s\n", rules.Name)
	fmt.Printf("Win Value: %d\n", rules.WinValue)
	fmt.Printf("Token Values: %d (low) / %d (high)\n", rules.LowValue, rules.HighValue)
	fmt.Printf("Spawn Chance: %.0f%% (%.0f%% of spawns are low)\n",
		rules.SpawnChance*100, rules.LowValueChance*100)
	fmt.Printf("Reach Radius: %d, View Radius: %d\n", rules.ReachRadius, rules.ViewRadius)

	stats := sampleField(rules, sampleRadius)

	fmt.Printf("\nSampled %d cells around the origin:\n", stats.Cells)
	fmt.Printf("Tokens: %d (density %.1f%%, expected %.1f%%)\n",
		stats.Tokens, stats.Density()*100, rules.SpawnChance*100)
	fmt.Printf("Value mix: %d low / %d high\n", stats.LowCount, stats.HighCount)

	lowChain := chainDepth(rules.LowValue, rules.WinValue)
	highChain := chainDepth(rules.HighValue, rules.WinValue)
	fmt.Printf("Merge chain to win: %d doublings from %d, %d from %d\n",
		lowChain, rules.LowValue, highChain, rules.HighValue)

	// Winning from value v takes WinValue/v tokens of that value.
	lowNeeded := rules.WinValue / rules.LowValue
	highNeeded := rules.WinValue / rules.HighValue

	if stats.LowCount >= lowNeeded || stats.HighCount >= highNeeded {
		fmt.Printf("✅ The sample carries enough tokens to craft %d\n", rules.WinValue)
	} else {
		fmt.Printf("⚠️  WARNING: the sample cannot produce %d on its own!\n", rules.WinValue)
		fmt.Printf("   Need %d low tokens (have %d) or %d high tokens (have %d)\n",
			lowNeeded, stats.LowCount, highNeeded, stats.HighCount)
		fmt.Printf("   Players must roam beyond %d cells from the start to win\n", sampleRadius)
	}

	avgWalk := meanNearestTokenDistance(rules, sampleRadius)
	fmt.Printf("Mean walk to the nearest token: %.1f cells\n", avgWalk)
	if avgWalk > float64(rules.ReachRadius)*4 {
		fmt.Printf("⚠️  Tokens are sparse relative to reach %d, expect long hauls\n", rules.ReachRadius)
	}
}

// sampleField rolls every cell in the (2r+1)^2 square around the origin.
// Spawning is a pure function of coordinates, so this is exactly the field
// a player would uncover by walking the region.
func sampleField(rules *engine.Rules, r int) FieldStats {
	var stats FieldStats
	for i := -r; i <= r; i++ {
		for j := -r; j <= r; j++ {
			stats.Cells++
			value, ok := engine.SpawnAt(rules, engine.Coord{I: i, J: j})
			if !ok {
				continue
			}
			stats.Tokens++
			if value == rules.LowValue {
				stats.LowCount++
			} else {
				stats.HighCount++
			}
		}
	}
	return stats
}

// chainDepth counts the doublings needed to grow base into target.
// Returns -1 when target is not reachable by doubling base.
func chainDepth(base, target int) int {
	if base <= 0 || target < base {
		return -1
	}
	depth := 0
	for v := base; v < target; v *= 2 {
		depth++
	}
	start := base
	for n := 0; n < depth; n++ {
		start *= 2
	}
	if start != target {
		return -1
	}
	return depth
}

// meanNearestTokenDistance averages, over token-free sampled cells, the
// Chebyshev distance to the closest spawned token.
func meanNearestTokenDistance(rules *engine.Rules, r int) float64 {
	var tokens []engine.Coord
	for i := -r; i <= r; i++ {
		for j := -r; j <= r; j++ {
			c := engine.Coord{I: i, J: j}
			if _, ok := engine.SpawnAt(rules, c); ok {
				tokens = append(tokens, c)
			}
		}
	}
	if len(tokens) == 0 {
		return 0
	}

	total := 0
	count := 0
	// A coarse stride keeps the scan quick without skewing the mean.
	for i := -r; i <= r; i += 5 {
		for j := -r; j <= r; j += 5 {
			from := engine.Coord{I: i, J: j}
			best := -1
			for _, tok := range tokens {
				d := engine.Chebyshev(from, tok)
				if best < 0 || d < best {
					best = d
				}
			}
			total += best
			count++
		}
	}
	return float64(total) / float64(count)
}
