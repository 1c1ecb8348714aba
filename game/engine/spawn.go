package engine

import "hash/fnv"

// magnitudeSuffix decorrelates the magnitude draw from the presence draw:
// the two values come from hashing different keys for the same cell.
const magnitudeSuffix = ":v"

// UnitDraw maps a key to a reproducible pseudo-random value in [0,1).
// The same key always yields the same value, within a process and across
// restarts; there is no hidden counter or seed.
func UnitDraw(key string) float64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	// Keep the top 53 bits so the quotient is exact in a float64.
	return float64(h.Sum64()>>11) / float64(uint64(1)<<53)
}

// SpawnAt decides whether coord spawns a token under the given rules and,
// if so, which base value it holds. Pure: it reads nothing but its
// arguments and is safe to call before the cell exists anywhere.
func SpawnAt(rules *Rules, c Coord) (value int, ok bool) {
	key := c.Key()
	if UnitDraw(key) >= rules.SpawnChance {
		return 0, false
	}
	if UnitDraw(key+magnitudeSuffix) < rules.LowValueChance {
		return rules.LowValue, true
	}
	return rules.HighValue, true
}
