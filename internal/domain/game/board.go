package game

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Color string

const (
	Black Color = "black"
	White Color = "white"
)

func (c Color) Opposite() Color {
	if c == Black {
		return White
	}
	return Black
}

type Position struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

// Key is the canonical "x,y" form used for the stone map and for storage.
func (p Position) Key() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

func ParseKey(key string) (Position, error) {
	parts := strings.SplitN(key, ",", 2)
	if len(parts) != 2 {
		return Position{}, fmt.Errorf("malformed position key %q", key)
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return Position{}, fmt.Errorf("malformed position key %q", key)
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return Position{}, fmt.Errorf("malformed position key %q", key)
	}
	return Position{X: x, Y: y}, nil
}

type Captures struct {
	Black int `json:"black" bson:"black"`
	White int `json:"white" bson:"white"`
}

// BoardState is an immutable snapshot of the board. Every legal move produces
// a new value; PreviousBoardKey holds the canonical form of the configuration
// before the opponent's last move and exists only for ko detection.
type BoardState struct {
	Size              int              `json:"size" bson:"size"`
	Stones            map[string]Color `json:"stones" bson:"stones"`
	Captures          Captures         `json:"captures" bson:"captures"`
	CurrentTurn       Color            `json:"current_turn" bson:"current_turn"`
	PreviousBoardKey  string           `json:"previous_board_key,omitempty" bson:"previous_board_key,omitempty"`
	LastMove          *Position        `json:"last_move,omitempty" bson:"last_move,omitempty"`
	ConsecutivePasses int              `json:"consecutive_passes" bson:"consecutive_passes"`
}

// CloneStones returns an independent copy of a stone map.
func CloneStones(stones map[string]Color) map[string]Color {
	out := make(map[string]Color, len(stones))
	for k, v := range stones {
		out[k] = v
	}
	return out
}

// BoardKey serializes a stone configuration into a canonical, order-independent
// string. Two configurations are ko-equal iff their keys match.
func BoardKey(stones map[string]Color) string {
	keys := make([]string, 0, len(stones))
	for k := range stones {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(string(stones[k]))
		b.WriteByte(';')
	}
	return b.String()
}

type Territory struct {
	Black []Position `json:"black" bson:"black"`
	White []Position `json:"white" bson:"white"`
}

type Score struct {
	Black float64 `json:"black" bson:"black"`
	White float64 `json:"white" bson:"white"`
}
