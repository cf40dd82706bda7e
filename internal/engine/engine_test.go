package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webgo/internal/domain/game"
)

func place(t *testing.T, board game.BoardState, x, y int, color game.Color) game.BoardState {
	t.Helper()
	res := ApplyMove(board, game.Position{X: x, Y: y}, color)
	require.True(t, res.Valid, "move (%d,%d) %s rejected: %s", x, y, color, res.Reason)
	return res.Board
}

func boardWith(size int, stones map[string]game.Color) game.BoardState {
	b := NewBoard(size)
	b.Stones = game.CloneStones(stones)
	return b
}

func TestApplyMoveRejections(t *testing.T) {
	tt := []struct {
		name   string
		stones map[string]game.Color
		pos    game.Position
		color  game.Color
		reason MoveReason
	}{
		{
			name:   "out of bounds negative",
			stones: map[string]game.Color{},
			pos:    game.Position{X: -1, Y: 4},
			color:  game.Black,
			reason: ReasonOutOfBounds,
		},
		{
			name:   "out of bounds past edge",
			stones: map[string]game.Color{},
			pos:    game.Position{X: 9, Y: 0},
			color:  game.Black,
			reason: ReasonOutOfBounds,
		},
		{
			name:   "occupied",
			stones: map[string]game.Color{"4,4": game.Black},
			pos:    game.Position{X: 4, Y: 4},
			color:  game.White,
			reason: ReasonOccupied,
		},
		{
			name: "suicide in corner",
			stones: map[string]game.Color{
				"1,0": game.White,
				"0,1": game.White,
			},
			pos:    game.Position{X: 0, Y: 0},
			color:  game.Black,
			reason: ReasonSuicide,
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			res := ApplyMove(boardWith(9, tc.stones), tc.pos, tc.color)
			assert.False(t, res.Valid)
			assert.Equal(t, tc.reason, res.Reason)
		})
	}
}

func TestCaptureSingleStone(t *testing.T) {
	// White stone at (4,4) with three liberties filled; black plays the last.
	board := boardWith(9, map[string]game.Color{
		"4,4": game.White,
		"3,4": game.Black,
		"5,4": game.Black,
		"4,3": game.Black,
	})

	res := ApplyMove(board, game.Position{X: 4, Y: 5}, game.Black)
	require.True(t, res.Valid)
	assert.Equal(t, []game.Position{{X: 4, Y: 4}}, res.Captured)
	assert.Equal(t, 1, res.Board.Captures.Black)
	_, stillThere := res.Board.Stones["4,4"]
	assert.False(t, stillThere)
}

func TestCaptureConnectedGroup(t *testing.T) {
	// Two connected white stones surrounded except one liberty.
	board := boardWith(9, map[string]game.Color{
		"4,4": game.White,
		"5,4": game.White,
		"3,4": game.Black,
		"4,3": game.Black,
		"5,3": game.Black,
		"4,5": game.Black,
		"5,5": game.Black,
	})

	res := ApplyMove(board, game.Position{X: 6, Y: 4}, game.Black)
	require.True(t, res.Valid)
	assert.Len(t, res.Captured, 2)
	assert.Equal(t, 2, res.Board.Captures.Black)
}

func TestCaptureBeforeSuicide(t *testing.T) {
	// Black plays into a point with no liberties of its own, but the
	// placement captures a white stone first, vacating a liberty.
	board := boardWith(9, map[string]game.Color{
		"1,0": game.White,
		"0,1": game.Black,
		"1,1": game.Black,
		"2,0": game.Black,
	})

	res := ApplyMove(board, game.Position{X: 0, Y: 0}, game.Black)
	require.True(t, res.Valid, "capturing placement must not be suicide")
	assert.Equal(t, []game.Position{{X: 1, Y: 0}}, res.Captured)
}

func TestKoRule(t *testing.T) {
	// Classic ko: the white stone at (3,4) has (4,4) as its only liberty.
	board := boardWith(9, map[string]game.Color{
		"2,4": game.Black,
		"3,3": game.Black,
		"3,5": game.Black,
		"3,4": game.White,
		"4,3": game.White,
		"4,5": game.White,
		"5,4": game.White,
	})

	// Black captures the white ko stone.
	res := ApplyMove(board, game.Position{X: 4, Y: 4}, game.Black)
	require.True(t, res.Valid)
	require.Equal(t, []game.Position{{X: 3, Y: 4}}, res.Captured)

	// White recapturing immediately would repeat the previous configuration.
	retake := ApplyMove(res.Board, game.Position{X: 3, Y: 4}, game.White)
	assert.False(t, retake.Valid)
	assert.Equal(t, ReasonKo, retake.Reason)

	// After an exchange elsewhere the recapture no longer matches the
	// immediately preceding configuration and is accepted.
	elsewhere := place(t, res.Board, 0, 8, game.White)
	elsewhere = place(t, elsewhere, 8, 0, game.Black)
	retake = ApplyMove(elsewhere, game.Position{X: 3, Y: 4}, game.White)
	assert.True(t, retake.Valid)
	assert.Equal(t, []game.Position{{X: 4, Y: 4}}, retake.Captured)
}

func TestFindGroupFourConnectivity(t *testing.T) {
	stones := map[string]game.Color{
		"4,4": game.Black,
		"5,5": game.Black, // diagonal, not part of the group
		"4,5": game.Black,
	}
	group := FindGroup(stones, game.Position{X: 4, Y: 4}, 9)
	assert.Len(t, group, 2)
	for _, p := range group {
		assert.NotEqual(t, game.Position{X: 5, Y: 5}, p)
	}
}

func TestLibertyCounts(t *testing.T) {
	tt := []struct {
		name   string
		stones map[string]game.Color
		start  game.Position
		want   int
	}{
		{
			name:   "corner stone",
			stones: map[string]game.Color{"0,0": game.Black},
			start:  game.Position{X: 0, Y: 0},
			want:   2,
		},
		{
			name:   "edge stone",
			stones: map[string]game.Color{"4,0": game.Black},
			start:  game.Position{X: 4, Y: 0},
			want:   3,
		},
		{
			name:   "interior stone",
			stones: map[string]game.Color{"4,4": game.Black},
			start:  game.Position{X: 4, Y: 4},
			want:   4,
		},
		{
			name: "straight two-stone group",
			stones: map[string]game.Color{
				"4,4": game.Black,
				"5,4": game.Black,
			},
			start: game.Position{X: 4, Y: 4},
			want:  6,
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			group := FindGroup(tc.stones, tc.start, 9)
			assert.Equal(t, tc.want, CountLiberties(tc.stones, group, 9))
		})
	}
}

func TestGroupLibertyPositions(t *testing.T) {
	// White blocks one side of the corner stone; the single remaining
	// liberty is the other empty neighbor.
	stones := map[string]game.Color{
		"0,0": game.Black,
		"1,0": game.White,
	}
	group := FindGroup(stones, game.Position{X: 0, Y: 0}, 9)

	liberties := GroupLiberties(stones, group, 9)
	assert.ElementsMatch(t, []game.Position{{X: 0, Y: 1}}, liberties)
}

func TestPassAndGameEnd(t *testing.T) {
	board := NewBoard(9)
	assert.False(t, ShouldEndGame(board))

	board = Pass(board)
	assert.Equal(t, game.White, board.CurrentTurn)
	assert.Equal(t, 1, board.ConsecutivePasses)
	assert.False(t, ShouldEndGame(board))

	board = Pass(board)
	assert.True(t, ShouldEndGame(board))
}

func TestStonePlacementResetsPassCounter(t *testing.T) {
	board := Pass(NewBoard(9))
	board = place(t, board, 2, 2, game.White)
	assert.Equal(t, 0, board.ConsecutivePasses)
	assert.False(t, ShouldEndGame(Pass(board)))
}

func TestApplyMoveDoesNotMutateInput(t *testing.T) {
	board := boardWith(9, map[string]game.Color{"0,0": game.White})
	res := ApplyMove(board, game.Position{X: 4, Y: 4}, game.Black)
	require.True(t, res.Valid)

	assert.Len(t, board.Stones, 1)
	assert.Equal(t, game.Black, board.CurrentTurn)
	assert.Equal(t, 0, board.Captures.Black)
}
