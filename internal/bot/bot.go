// Package bot selects moves for computer opponents. Three built-in policies
// cover the difficulty tiers; hard play can additionally delegate to an
// external move provider and falls back to the built-in heuristic whenever
// the provider fails, times out, or answers with an illegal move.
package bot

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"webgo/internal/domain/game"
	"webgo/internal/engine"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Engine struct {
	log             *zap.SugaredLogger
	rng             *rand.Rand
	provider        MoveProvider
	providerTimeout time.Duration
}

func NewEngine(log *zap.SugaredLogger, provider MoveProvider, providerTimeout time.Duration) *Engine {
	if providerTimeout <= 0 {
		providerTimeout = 10 * time.Second
	}
	return &Engine{
		log:             log,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		provider:        provider,
		providerTimeout: providerTimeout,
	}
}

// WithRand fixes the random source, for tests.
func (e *Engine) WithRand(rng *rand.Rand) *Engine {
	e.rng = rng
	return e
}

// SelectMove picks a move for the side to play, or nil to pass. Hard games
// consult the external provider first when one is configured.
func (e *Engine) SelectMove(ctx context.Context, board game.BoardState, difficulty Difficulty) *game.Position {
	if difficulty == DifficultyHard && e.provider != nil {
		if pos, ok := e.tryProvider(ctx, board); ok {
			return pos
		}
	}
	return e.selectBuiltin(board, difficulty)
}

func (e *Engine) tryProvider(ctx context.Context, board game.BoardState) (*game.Position, bool) {
	ctx, cancel := context.WithTimeout(ctx, e.providerTimeout)
	defer cancel()

	pos, err := e.provider.SelectMove(ctx, board)
	if err != nil {
		e.log.Warnf("external engine %s failed, using built-in heuristic: %v", e.provider.Name(), err)
		return nil, false
	}
	if pos == nil {
		// Provider explicitly suggested passing.
		return nil, true
	}
	if res := engine.ApplyMove(board, *pos, board.CurrentTurn); !res.Valid {
		e.log.Warnf("external engine %s returned illegal move (%d,%d): %s",
			e.provider.Name(), pos.X, pos.Y, res.Reason)
		return nil, false
	}
	return pos, true
}

func (e *Engine) selectBuiltin(board game.BoardState, difficulty Difficulty) *game.Position {
	validMoves := e.validMoves(board)
	if len(validMoves) == 0 {
		return nil
	}

	var pos game.Position
	switch difficulty {
	case DifficultyEasy:
		pos = e.selectEasy(board, validMoves)
	case DifficultyMedium:
		pos = e.selectMedium(board, validMoves)
	case DifficultyHard:
		pos = e.selectHard(board, validMoves)
	default:
		pos = e.randomMove(validMoves)
	}
	return &pos
}

func (e *Engine) validMoves(board game.BoardState) []game.Position {
	var moves []game.Position
	for x := 0; x < board.Size; x++ {
		for y := 0; y < board.Size; y++ {
			pos := game.Position{X: x, Y: y}
			if res := engine.ApplyMove(board, pos, board.CurrentTurn); res.Valid {
				moves = append(moves, pos)
			}
		}
	}
	return moves
}

func (e *Engine) randomMove(moves []game.Position) game.Position {
	return moves[e.rng.Intn(len(moves))]
}

// selectEasy: 60% random, then prefer captures, then rescues, then random.
func (e *Engine) selectEasy(board game.BoardState, validMoves []game.Position) game.Position {
	roll := e.rng.Float64()
	if roll < 0.6 {
		return e.randomMove(validMoves)
	}

	if roll < 0.9 {
		if captures := findCapturingMoves(board, validMoves); len(captures) > 0 {
			return e.randomMove(positionsOf(captures))
		}
	}

	if saves := findSavingMoves(board, validMoves); len(saves) > 0 {
		return e.randomMove(saves)
	}

	return e.randomMove(validMoves)
}

// selectMedium: always rescue ataris first, then capture (80%, biggest
// capture), then random.
func (e *Engine) selectMedium(board game.BoardState, validMoves []game.Position) game.Position {
	if saves := findSavingMoves(board, validMoves); len(saves) > 0 {
		return e.randomMove(saves)
	}

	if e.rng.Float64() < 0.8 {
		captures := findCapturingMoves(board, validMoves)
		if len(captures) > 0 {
			sort.SliceStable(captures, func(i, j int) bool {
				return captures[i].captured > captures[j].captured
			})
			return captures[0].pos
		}
	}

	return e.randomMove(validMoves)
}

// selectHard scores every legal move and picks uniformly among the top three
// so play stays non-deterministic.
func (e *Engine) selectHard(board game.BoardState, validMoves []game.Position) game.Position {
	type candidate struct {
		pos   game.Position
		score int
	}
	candidates := make([]candidate, 0, len(validMoves))
	for _, pos := range validMoves {
		candidates = append(candidates, candidate{pos: pos, score: evaluateMove(board, pos)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	top := candidates
	if len(top) > 3 {
		top = top[:3]
	}
	return top[e.rng.Intn(len(top))].pos
}

// evaluateMove implements the hard-tier weighted heuristic: captures x10,
// atari rescues x15, corner > side > center, resulting liberties, and a -20
// penalty for self-atari without a compensating capture.
func evaluateMove(board game.BoardState, pos game.Position) int {
	res := engine.ApplyMove(board, pos, board.CurrentTurn)
	if !res.Valid {
		return -1000
	}

	score := 0
	score += len(res.Captured) * 10

	atariBefore := countGroupsInAtari(board, board.CurrentTurn)
	atariAfter := countGroupsInAtari(res.Board, board.CurrentTurn)
	if atariAfter < atariBefore {
		score += (atariBefore - atariAfter) * 15
	}

	switch {
	case isCorner(pos, board.Size):
		score += 5
	case isSide(pos, board.Size):
		score += 2
	default:
		score++
	}

	group := engine.FindGroup(res.Board.Stones, pos, board.Size)
	liberties := engine.CountLiberties(res.Board.Stones, group, board.Size)
	score += liberties

	if liberties == 1 && len(res.Captured) == 0 {
		score -= 20
	}

	return score
}

type capturingMove struct {
	pos      game.Position
	captured int
}

func findCapturingMoves(board game.BoardState, validMoves []game.Position) []capturingMove {
	var captures []capturingMove
	for _, pos := range validMoves {
		res := engine.ApplyMove(board, pos, board.CurrentTurn)
		if res.Valid && len(res.Captured) > 0 {
			captures = append(captures, capturingMove{pos: pos, captured: len(res.Captured)})
		}
	}
	return captures
}

func positionsOf(captures []capturingMove) []game.Position {
	out := make([]game.Position, len(captures))
	for i, c := range captures {
		out[i] = c.pos
	}
	return out
}

// findSavingMoves returns moves that reduce the number of own groups at one
// liberty. A rescue is either playing an atari group's remaining liberty or
// capturing the attacker; no other move can grow the group's liberties.
func findSavingMoves(board game.BoardState, validMoves []game.Position) []game.Position {
	inAtari := atariGroups(board, board.CurrentTurn)
	if len(inAtari) == 0 {
		return nil
	}
	before := len(inAtari)

	var saves []game.Position
	tried := map[string]bool{}
	for _, group := range inAtari {
		for _, lib := range engine.GroupLiberties(board.Stones, group, board.Size) {
			if tried[lib.Key()] {
				continue
			}
			tried[lib.Key()] = true
			res := engine.ApplyMove(board, lib, board.CurrentTurn)
			if res.Valid && countGroupsInAtari(res.Board, board.CurrentTurn) < before {
				saves = append(saves, lib)
			}
		}
	}
	for _, pos := range validMoves {
		if tried[pos.Key()] {
			continue
		}
		res := engine.ApplyMove(board, pos, board.CurrentTurn)
		if res.Valid && len(res.Captured) > 0 && countGroupsInAtari(res.Board, board.CurrentTurn) < before {
			saves = append(saves, pos)
		}
	}
	return saves
}

func atariGroups(board game.BoardState, color game.Color) [][]game.Position {
	var groups [][]game.Position
	for _, group := range engine.GroupsOf(board.Stones, color, board.Size) {
		if engine.CountLiberties(board.Stones, group, board.Size) == 1 {
			groups = append(groups, group)
		}
	}
	return groups
}

func countGroupsInAtari(board game.BoardState, color game.Color) int {
	return len(atariGroups(board, color))
}

func isCorner(pos game.Position, size int) bool {
	return (pos.X == 0 || pos.X == size-1) && (pos.Y == 0 || pos.Y == size-1)
}

func isSide(pos game.Position, size int) bool {
	return pos.X == 0 || pos.X == size-1 || pos.Y == 0 || pos.Y == size-1
}
