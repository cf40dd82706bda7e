// Package engine implements the rules of Go over immutable board snapshots.
// All functions are pure: they never mutate their inputs and always return
// fresh BoardState values.
package engine

import (
	"webgo/internal/domain/game"
)

// MoveReason names why a placement was rejected.
type MoveReason string

const (
	ReasonOutOfBounds MoveReason = "out_of_bounds"
	ReasonOccupied    MoveReason = "occupied"
	ReasonSuicide     MoveReason = "suicide"
	ReasonKo          MoveReason = "ko"
)

type MoveResult struct {
	Valid    bool
	Reason   MoveReason
	Captured []game.Position
	Board    game.BoardState
}

// NewBoard returns an empty board with black to move.
func NewBoard(size int) game.BoardState {
	return game.BoardState{
		Size:        size,
		Stones:      map[string]game.Color{},
		CurrentTurn: game.Black,
	}
}

// NewGameState returns the initial game state for a fresh match.
func NewGameState(size int) game.GameState {
	return game.GameState{
		Board:       NewBoard(size),
		MoveHistory: []game.Move{},
		DeadStones:  []game.Position{},
	}
}

// ApplyMove validates and executes a stone placement. Captures are resolved
// before suicide is evaluated, so a placement that captures is always legal
// even if the placing group would otherwise have no liberties. Ko compares the
// resulting configuration against the one before the opponent's last move.
func ApplyMove(board game.BoardState, pos game.Position, color game.Color) MoveResult {
	if !InBounds(pos, board.Size) {
		return MoveResult{Reason: ReasonOutOfBounds}
	}

	key := pos.Key()
	if _, occupied := board.Stones[key]; occupied {
		return MoveResult{Reason: ReasonOccupied}
	}

	newStones := game.CloneStones(board.Stones)
	newStones[key] = color

	opponent := color.Opposite()
	var captured []game.Position
	for _, group := range capturedGroups(newStones, opponent, board.Size) {
		for _, p := range group {
			captured = append(captured, p)
			delete(newStones, p.Key())
		}
	}

	if len(captured) == 0 {
		ownGroup := FindGroup(newStones, pos, board.Size)
		if CountLiberties(newStones, ownGroup, board.Size) == 0 {
			return MoveResult{Reason: ReasonSuicide}
		}
	}

	newKey := game.BoardKey(newStones)
	if board.PreviousBoardKey != "" && newKey == board.PreviousBoardKey {
		return MoveResult{Reason: ReasonKo}
	}

	captures := board.Captures
	if color == game.Black {
		captures.Black += len(captured)
	} else {
		captures.White += len(captured)
	}

	lastMove := pos
	return MoveResult{
		Valid:    true,
		Captured: captured,
		Board: game.BoardState{
			Size:              board.Size,
			Stones:            newStones,
			Captures:          captures,
			CurrentTurn:       opponent,
			PreviousBoardKey:  game.BoardKey(board.Stones),
			LastMove:          &lastMove,
			ConsecutivePasses: 0,
		},
	}
}

// Pass flips the turn and bumps the consecutive-pass counter. Always legal.
func Pass(board game.BoardState) game.BoardState {
	next := board
	next.Stones = game.CloneStones(board.Stones)
	next.CurrentTurn = board.CurrentTurn.Opposite()
	next.LastMove = nil
	next.ConsecutivePasses = board.ConsecutivePasses + 1
	return next
}

// ShouldEndGame reports whether two consecutive passes have ended play.
func ShouldEndGame(board game.BoardState) bool {
	return board.ConsecutivePasses >= 2
}
