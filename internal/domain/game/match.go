package game

import "time"

type RuleSet string

const (
	RuleSetChinese  RuleSet = "chinese"
	RuleSetJapanese RuleSet = "japanese"
)

// DefaultKomi returns the customary komi for a rule set.
func DefaultKomi(rs RuleSet) float64 {
	if rs == RuleSetJapanese {
		return 6.5
	}
	return 7.5
}

const (
	WinnerBlack = "black"
	WinnerWhite = "white"
	WinnerDraw  = "draw"
)

const (
	WinReasonResignation = "resignation"
	WinReasonScore       = "score"
	WinReasonTimeout     = "timeout"
)

// Per-player outcomes recorded in user statistics.
const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultDraw = "draw"
)

// Move is the immutable durable record of one action in a match. Sequence
// numbers are strictly increasing per match and never reused.
type Move struct {
	ID             string     `json:"id" bson:"_id,omitempty"`
	GameID         string     `json:"game_id" bson:"game_id"`
	PlayerID       string     `json:"player_id" bson:"player_id"`
	MoveNumber     int        `json:"move_number" bson:"move_number"`
	Color          Color      `json:"color" bson:"color"`
	Position       *Position  `json:"position,omitempty" bson:"position,omitempty"`
	CapturedStones []Position `json:"captured_stones" bson:"captured_stones"`
	IsPass         bool       `json:"is_pass" bson:"is_pass"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
}

// GameState bundles the board with the data only the match cares about.
type GameState struct {
	Board       BoardState `json:"board" bson:"board"`
	MoveHistory []Move     `json:"move_history" bson:"move_history"`
	DeadStones  []Position `json:"dead_stones" bson:"dead_stones"`
	Territory   Territory  `json:"territory" bson:"territory"`
}

// Match is the top-level aggregate. Version increments on every durable write
// and is the only concurrency-control token: conditional updates compare it.
type Match struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	BoardSize      int       `json:"board_size" bson:"board_size"`
	PlayerBlack    string    `json:"player_black" bson:"player_black"`
	PlayerWhite    string    `json:"player_white" bson:"player_white"`
	State          GameState `json:"state" bson:"state"`
	Status         string    `json:"status" bson:"status"`
	Handicap       int       `json:"handicap" bson:"handicap"`
	Komi           float64   `json:"komi" bson:"komi"`
	RuleSet        RuleSet   `json:"rule_set" bson:"rule_set"`
	InvitationCode string    `json:"invitation_code" bson:"invitation_code"`
	Winner         string    `json:"winner,omitempty" bson:"winner,omitempty"`
	WinReason      string    `json:"win_reason,omitempty" bson:"win_reason,omitempty"`
	FinalScore     *Score    `json:"final_score,omitempty" bson:"final_score,omitempty"`
	Version        int64     `json:"version" bson:"version"`
	Deleted        bool      `json:"-" bson:"deleted,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// PlayerColor reports the seat a player holds, or "" when not seated.
func (m *Match) PlayerColor(playerID string) Color {
	switch {
	case playerID != "" && m.PlayerBlack == playerID:
		return Black
	case playerID != "" && m.PlayerWhite == playerID:
		return White
	}
	return ""
}

func (m *Match) PlayerByColor(c Color) string {
	if c == Black {
		return m.PlayerBlack
	}
	return m.PlayerWhite
}

// RatingChange is written once per (match, player) at finalization.
type RatingChange struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	GameID       string    `json:"game_id" bson:"game_id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	RatingBefore int       `json:"rating_before" bson:"rating_before"`
	RatingAfter  int       `json:"rating_after" bson:"rating_after"`
	Delta        int       `json:"delta" bson:"delta"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type CreateMatchRequest struct {
	BoardSize int     `json:"board_size"`
	Color     string  `json:"color,omitempty"`
	Handicap  int     `json:"handicap,omitempty"`
	Komi      float64 `json:"komi,omitempty"`
	RuleSet   RuleSet `json:"rule_set,omitempty"`
}

type JoinMatchRequest struct {
	InvitationCode string `json:"invitation_code"`
}

type MatchCreateResponse struct {
	ID             string `json:"id"`
	InvitationCode string `json:"invitation_code"`
}

// GameResult is what the broadcaster fans out when a match ends.
type GameResult struct {
	Winner        string                   `json:"winner"`
	Reason        string                   `json:"reason"`
	FinalScore    *Score                   `json:"final_score,omitempty"`
	RatingChanges map[string]*RatingChange `json:"rating_changes,omitempty"`
}
