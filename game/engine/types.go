package engine

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Validation constants
	MinRadius        = 1
	MaxRadius        = 16
	MaxHistoryLimit  = 100
	WebSocketBufSize = 256

	// DefaultCellSizeDeg is the angular size of one grid cell in degrees.
	// Roughly 11 meters of latitude per cell.
	DefaultCellSizeDeg = 1e-4

	// DefaultSpawnChance is the presence-draw threshold: a cell spawns a
	// token when its presence draw lands below this value.
	DefaultSpawnChance = 0.5

	// DefaultLowValueChance is the magnitude-draw threshold: a spawning
	// cell holds the low base token when its magnitude draw lands below
	// this value, the high base token otherwise.
	DefaultLowValueChance = 0.7

	DefaultLowValue  = 1
	DefaultHighValue = 2

	// DefaultWinValue is the token value the player must craft to win.
	// Earlier iterations of the game used 16.
	DefaultWinValue = 256

	// DefaultReachRadius is the per-axis distance within which the player
	// may interact with a cell.
	DefaultReachRadius = 3

	// DefaultViewRadius is the per-axis distance defining the spawn-eligible
	// window around the player. Independent of the reach radius.
	DefaultViewRadius = 5
)

// Coord identifies a single cell of the unbounded grid.
type Coord struct {
	I int `json:"i"`
	J int `json:"j"`
}

// Key returns the canonical "i,j" map key for the coordinate.
func (c Coord) Key() string {
	return strconv.Itoa(c.I) + "," + strconv.Itoa(c.J)
}

func (c Coord) String() string {
	return "(" + c.Key() + ")"
}

// ParseKey reverses Coord.Key.
func ParseKey(key string) (Coord, error) {
	i, j, ok := strings.Cut(key, ",")
	if !ok {
		return Coord{}, fmt.Errorf("malformed cell key %q", key)
	}
	ci, err := strconv.Atoi(i)
	if err != nil {
		return Coord{}, fmt.Errorf("malformed cell key %q: %v", key, err)
	}
	cj, err := strconv.Atoi(j)
	if err != nil {
		return Coord{}, fmt.Errorf("malformed cell key %q: %v", key, err)
	}
	return Coord{I: ci, J: cj}, nil
}

// Chebyshev returns the chessboard distance between two coordinates:
// the larger of the per-axis absolute differences.
func Chebyshev(a, b Coord) int {
	di := a.I - b.I
	if di < 0 {
		di = -di
	}
	dj := a.J - b.J
	if dj < 0 {
		dj = -dj
	}
	if dj > di {
		return dj
	}
	return di
}

// Direction is one of the four discrete step commands.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Delta returns the per-axis displacement of a step. The i axis follows
// latitude, so north increments i; the j axis follows longitude.
func (d Direction) Delta() (di, dj int, ok bool) {
	switch d {
	case North:
		return 1, 0, true
	case South:
		return -1, 0, true
	case East:
		return 0, 1, true
	case West:
		return 0, -1, true
	default:
		return 0, 0, false
	}
}

// Rules is the per-game rule set loaded from a JSON rules file.
type Rules struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	CellSizeDeg    float64 `json:"cell_size_deg"`
	SpawnChance    float64 `json:"spawn_chance"`
	LowValueChance float64 `json:"low_value_chance"`
	LowValue       int     `json:"low_value"`
	HighValue      int     `json:"high_value"`
	WinValue       int     `json:"win_value"`
	ReachRadius    int     `json:"reach_radius"`
	ViewRadius     int     `json:"view_radius"`
	Messages       struct {
		Welcome    string `json:"welcome"`
		PickUp     string `json:"pick_up"`
		Merge      string `json:"merge"`
		Swap       string `json:"swap"`
		Win        string `json:"win"`
		OutOfReach string `json:"out_of_reach"`
		FeedLost   string `json:"feed_lost"`
	} `json:"messages"`
}

// ViewportCell reports the content of one cell in the rendered window.
// Value is meaningful only when Present is true.
type ViewportCell struct {
	Coord   Coord `json:"coord"`
	Value   int   `json:"value,omitempty"`
	Present bool  `json:"present"`
}

// GameState is the complete in-memory state of one game.
type GameState struct {
	PlayerPos Coord       `json:"player_pos"`
	Held      int         `json:"held_token"` // 0 means empty hands
	Won       bool        `json:"won"`
	Cells     *CellStore  `json:"cells"`
	Visited   *VisitedSet `json:"visited"`
	Message   string      `json:"message,omitempty"`
	RulesName string      `json:"rules_name"`

	ActionHistory []ActionEntry `json:"action_history"`
	TotalActions  int           `json:"total_actions"`
}

// ActionEntry records a single player action.
type ActionEntry struct {
	Action    string `json:"action"`
	From      Coord  `json:"from"`
	To        Coord  `json:"to"`
	Outcome   string `json:"outcome,omitempty"`
	Held      int    `json:"held_token"`
	Timestamp int64  `json:"timestamp"`
	Success   bool   `json:"success"`
	Seq       int    `json:"seq"`
}
