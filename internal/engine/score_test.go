package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webgo/internal/domain/game"
)

func TestTerritorySingleStoneOpenBoard(t *testing.T) {
	// One black stone on an otherwise empty 9x9: the whole empty region
	// borders only black, so it all counts as black territory.
	stones := map[string]game.Color{"4,4": game.Black}

	territory := CalculateTerritory(stones, 9, nil)
	assert.Len(t, territory.Black, 80)
	assert.Empty(t, territory.White)
}

func TestTerritoryEmptyBoardIsNeutral(t *testing.T) {
	territory := CalculateTerritory(map[string]game.Color{}, 9, nil)
	assert.Empty(t, territory.Black)
	assert.Empty(t, territory.White)
}

func TestTerritoryMixedBorderIsNeutral(t *testing.T) {
	stones := map[string]game.Color{
		"0,0": game.Black,
		"8,8": game.White,
	}
	territory := CalculateTerritory(stones, 9, nil)
	assert.Empty(t, territory.Black)
	assert.Empty(t, territory.White)
}

func TestTerritoryWallSplitsBoard(t *testing.T) {
	// A full black wall on column 4 of a 9x9 board. Both sides border only
	// black stones.
	stones := map[string]game.Color{}
	for y := 0; y < 9; y++ {
		stones[game.Position{X: 4, Y: y}.Key()] = game.Black
	}

	territory := CalculateTerritory(stones, 9, nil)
	assert.Len(t, territory.Black, 72)
	assert.Empty(t, territory.White)
}

func TestTerritoryDeadStonesLifted(t *testing.T) {
	// A lone white stone inside black's walled-off side becomes black
	// territory once it is marked dead.
	stones := map[string]game.Color{"2,2": game.White}
	for y := 0; y < 9; y++ {
		stones[game.Position{X: 4, Y: y}.Key()] = game.Black
	}

	// While the white stone is live the left side is mixed-bordered and
	// neutral; only the 36 points right of the wall count for black.
	live := CalculateTerritory(stones, 9, nil)
	assert.Len(t, live.Black, 36)
	assert.Empty(t, live.White)

	dead := CalculateTerritory(stones, 9, []game.Position{{X: 2, Y: 2}})
	assert.Len(t, dead.Black, 72)
}

func TestCalculateScoreChinese(t *testing.T) {
	stones := map[string]game.Color{}
	for y := 0; y < 9; y++ {
		stones[game.Position{X: 4, Y: y}.Key()] = game.Black
	}

	score := CalculateScore(stones, 9, game.Captures{}, nil, 7.5, game.RuleSetChinese)
	// 72 territory + 9 live stones for black, komi only for white.
	assert.Equal(t, 81.0, score.Black)
	assert.Equal(t, 7.5, score.White)
}

func TestCalculateScoreJapanese(t *testing.T) {
	stones := map[string]game.Color{
		"4,0": game.Black, "4,1": game.Black, "4,2": game.Black,
		"4,3": game.Black, "4,4": game.Black, "4,5": game.Black,
		"4,6": game.Black, "4,7": game.Black, "4,8": game.Black,
		"6,6": game.White,
	}
	captures := game.Captures{Black: 3, White: 1}
	deadStones := []game.Position{{X: 6, Y: 6}}

	score := CalculateScore(stones, 9, captures, deadStones, 6.5, game.RuleSetJapanese)
	// Black: 72 territory (white's dead stone lifted) + 3 captures + 1 dead white.
	assert.Equal(t, 76.0, score.Black)
	// White: no territory + 1 capture + komi.
	assert.Equal(t, 7.5, score.White)
}

func TestScoringScenarioSinglePointNineByNine(t *testing.T) {
	// create 9x9, black plays (4,4), white passes, black passes.
	board := NewBoard(9)
	res := ApplyMove(board, game.Position{X: 4, Y: 4}, game.Black)
	require.True(t, res.Valid)

	board = Pass(res.Board)
	board = Pass(board)
	require.True(t, ShouldEndGame(board))

	score := CalculateScore(board.Stones, board.Size, board.Captures, nil, 7.5, game.RuleSetChinese)
	// The empty region borders only black, so chinese scoring gives black
	// the whole board; white keeps komi.
	assert.Equal(t, 81.0, score.Black)
	assert.Equal(t, 7.5, score.White)
}

func TestHandicapPlacement(t *testing.T) {
	tt := []struct {
		name       string
		size       int
		count      int
		wantStones int
		wantTurn   game.Color
	}{
		{name: "nine stones on 19x19", size: 19, count: 9, wantStones: 9, wantTurn: game.White},
		{name: "two stones on 9x9", size: 9, count: 2, wantStones: 2, wantTurn: game.White},
		{name: "five stones on 13x13", size: 13, count: 5, wantStones: 5, wantTurn: game.White},
		{name: "count below range is a no-op", size: 19, count: 1, wantStones: 0, wantTurn: game.Black},
		{name: "count above range is a no-op", size: 19, count: 10, wantStones: 0, wantTurn: game.Black},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			board := ApplyHandicap(NewBoard(tc.size), tc.count)
			assert.Len(t, board.Stones, tc.wantStones)
			assert.Equal(t, tc.wantTurn, board.CurrentTurn)
			for _, color := range board.Stones {
				assert.Equal(t, game.Black, color)
			}
		})
	}
}

func TestHandicapStarPoints19(t *testing.T) {
	board := ApplyHandicap(NewBoard(19), 9)
	for _, key := range []string{"3,3", "3,15", "15,3", "15,15", "9,9", "9,3", "9,15", "3,9", "15,9"} {
		assert.Equal(t, game.Black, board.Stones[key], "expected handicap stone at %s", key)
	}
}
