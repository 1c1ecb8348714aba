package engine

// RecomputeViewport materializes the square window of cells from
// center-R to center+R on both axes (R = view radius) and returns its
// contents for the render layer.
//
// A coordinate entering a viewport for the first time is marked visited
// and gets exactly one spawn evaluation; coordinates already visited are
// never re-rolled, even when currently empty. Given the same visited set
// and cell store the call is idempotent.
func (gs *GameState) RecomputeViewport(center Coord, rules *Rules) []ViewportCell {
	r := rules.ViewRadius
	window := make([]ViewportCell, 0, (2*r+1)*(2*r+1))

	for di := -r; di <= r; di++ {
		for dj := -r; dj <= r; dj++ {
			c := Coord{I: center.I + di, J: center.J + dj}
			if gs.Visited.Mark(c) {
				if v, ok := SpawnAt(rules, c); ok {
					gs.Cells.Set(c, v)
				}
			}
			vc := ViewportCell{Coord: c}
			if v, ok := gs.Cells.Get(c); ok {
				vc.Value = v
				vc.Present = true
			}
			window = append(window, vc)
		}
	}
	return window
}
