package engine

import (
	"webgo/internal/domain/game"
)

// Star points in placement order: corners, center, then edges.
var starPoints = map[int][][2]int{
	9: {
		{2, 6}, {6, 2}, {6, 6}, {2, 2},
		{4, 4},
		{4, 2}, {4, 6}, {2, 4}, {6, 4},
	},
	13: {
		{3, 9}, {9, 3}, {9, 9}, {3, 3},
		{6, 6},
		{6, 3}, {6, 9}, {3, 6}, {9, 6},
	},
	19: {
		{3, 15}, {15, 3}, {15, 15}, {3, 3},
		{9, 9},
		{9, 3}, {9, 15}, {3, 9}, {15, 9},
	},
}

// HandicapPositions returns the first count star points for a board size.
func HandicapPositions(size int, count int) []game.Position {
	points, ok := starPoints[size]
	if !ok {
		points = starPoints[19]
	}
	if count > len(points) {
		count = len(points)
	}
	positions := make([]game.Position, 0, count)
	for i := 0; i < count; i++ {
		positions = append(positions, game.Position{X: points[i][0], Y: points[i][1]})
	}
	return positions
}

// ApplyHandicap places count black stones at the star points and gives white
// the first move. Counts outside [2,9] leave the board untouched.
func ApplyHandicap(board game.BoardState, count int) game.BoardState {
	if count < 2 || count > 9 {
		return board
	}

	newStones := game.CloneStones(board.Stones)
	for _, pos := range HandicapPositions(board.Size, count) {
		newStones[pos.Key()] = game.Black
	}

	next := board
	next.Stones = newStones
	next.CurrentTurn = game.White
	return next
}
