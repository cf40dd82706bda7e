// Package match owns the authoritative lifecycle of a match: seat filling,
// move application, scoring negotiation and finalization. Every mutating
// operation is read-modify-conditional-write against the versioned match
// record and retries a bounded number of times under contention.
package match

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"webgo/internal/bot"
	"webgo/internal/common"
	"webgo/internal/domain/game"
	"webgo/internal/domain/user"
	"webgo/internal/engine"
	apperrors "webgo/internal/errors"
	"webgo/internal/statuses"
)

const (
	maxWriteAttempts = 3
	retryBackoffBase = 10 * time.Millisecond
)

// MatchStore is the persistence collaborator. Implementations must make
// UpdateMatchVersioned atomic with respect to the version check.
type MatchStore interface {
	GetMatchByID(ctx context.Context, id string) (game.Match, error)
	GetMatchByInvitationCode(ctx context.Context, code string) (game.Match, error)
	PutMatch(ctx context.Context, m game.Match) error
	UpdateMatchVersioned(ctx context.Context, m game.Match, expectedVersion int64) (bool, error)
	AppendMove(ctx context.Context, mv game.Move) error
	GetMovesByMatchID(ctx context.Context, matchID string) ([]game.Move, error)
	SoftDeleteMatch(ctx context.Context, id string) error
	GetMatchesByUserID(ctx context.Context, userID string) ([]game.Match, error)

	GetUser(ctx context.Context, id string) (user.User, error)
	GetBotUser(ctx context.Context, difficulty string) (user.User, error)
	SaveUserRating(ctx context.Context, id string, rating int) error
	RecordUserResult(ctx context.Context, id string, result string) error
	RecordRatingChange(ctx context.Context, rc game.RatingChange) error

	AddScoreAcceptance(ctx context.Context, matchID, playerID string) error
	ScoreAcceptances(ctx context.Context, matchID string) ([]string, error)
	ClearScoreAcceptances(ctx context.Context, matchID string) error
}

// Broadcaster fans successful results out to every viewer of a match. A nil
// broadcaster is valid and drops everything.
type Broadcaster interface {
	Broadcast(matchID string, event string, payload interface{})
}

// Outbound event names.
const (
	EventMoveMade         = "move_made"
	EventTurnPassed       = "turn_passed"
	EventScoringStarted   = "scoring_started"
	EventDeadStonesMarked = "dead_stones_marked"
	EventScoreAccepted    = "score_accepted"
	EventGameEnded        = "game_ended"
)

// MoveError reports a rules-level rejection with its specific reason.
type MoveError struct {
	Reason engine.MoveReason
}

func (e *MoveError) Error() string {
	return "illegal move: " + string(e.Reason)
}

type MatchUseCase struct {
	store       MatchStore
	bots        *bot.Engine
	broadcaster Broadcaster
	log         *zap.SugaredLogger
	rng         *rand.Rand
}

func NewMatchUseCase(store MatchStore, bots *bot.Engine, log *zap.SugaredLogger) *MatchUseCase {
	return &MatchUseCase{
		store: store,
		bots:  bots,
		log:   log,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetBroadcaster wires the realtime fan-out. Called once at startup.
func (m *MatchUseCase) SetBroadcaster(b Broadcaster) {
	m.broadcaster = b
}

func (m *MatchUseCase) broadcast(matchID, event string, payload interface{}) {
	if m.broadcaster != nil {
		m.broadcaster.Broadcast(matchID, event, payload)
	}
}

// withRetry reruns op while it reports a version conflict, backing off
// between attempts. Each attempt re-reads current state, so retries are safe.
func (m *MatchUseCase) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(retryBackoffBase << (attempt - 1))
		}
		err = op(ctx)
		if !errors.Is(err, apperrors.ErrConcurrentUpdate) {
			return err
		}
	}
	return fmt.Errorf("%w: gave up after %d attempts", apperrors.ErrConcurrentUpdate, maxWriteAttempts)
}

// CreateMatch builds a fresh match in the waiting state and persists it.
func (m *MatchUseCase) CreateMatch(ctx context.Context, creatorID string, req game.CreateMatchRequest) (game.Match, error) {
	ruleSet := req.RuleSet
	if ruleSet == "" {
		ruleSet = game.RuleSetChinese
	}

	komi := req.Komi
	if komi == 0 {
		komi = game.DefaultKomi(ruleSet)
	}
	if req.Handicap > 0 {
		// Handicap games conventionally reduce komi to half a point.
		komi = 0.5
	}

	creatorColor := game.Color(req.Color)
	if creatorColor != game.Black && creatorColor != game.White {
		if m.rng.Intn(2) == 0 {
			creatorColor = game.Black
		} else {
			creatorColor = game.White
		}
	}

	state := engine.NewGameState(req.BoardSize)
	if req.Handicap > 0 {
		state.Board = engine.ApplyHandicap(state.Board, req.Handicap)
	}

	code, err := m.generateInvitationCode(ctx)
	if err != nil {
		return game.Match{}, err
	}

	now := time.Now()
	newMatch := game.Match{
		ID:             uuid.New().String(),
		BoardSize:      req.BoardSize,
		State:          state,
		Status:         statuses.StatusWaiting,
		Handicap:       req.Handicap,
		Komi:           komi,
		RuleSet:        ruleSet,
		InvitationCode: code,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if creatorColor == game.Black {
		newMatch.PlayerBlack = creatorID
	} else {
		newMatch.PlayerWhite = creatorID
	}

	if err := m.store.PutMatch(ctx, newMatch); err != nil {
		return game.Match{}, fmt.Errorf("%w: %v", apperrors.ErrCreateGameFailed, err)
	}

	m.log.Infow("match created", "match_id", newMatch.ID, "board_size", req.BoardSize, "creator", creatorID)
	return newMatch, nil
}

// CreateBotMatch creates a match with the seeded bot of the given difficulty
// already seated; the match starts active immediately.
func (m *MatchUseCase) CreateBotMatch(ctx context.Context, creatorID string, difficulty bot.Difficulty, req game.CreateMatchRequest) (game.Match, error) {
	botUser, err := m.store.GetBotUser(ctx, string(difficulty))
	if err != nil {
		return game.Match{}, err
	}

	created, err := m.CreateMatch(ctx, creatorID, req)
	if err != nil {
		return game.Match{}, err
	}

	var seated game.Match
	err = m.withRetry(ctx, func(ctx context.Context) error {
		current, err := m.store.GetMatchByID(ctx, created.ID)
		if err != nil {
			return err
		}
		if current.PlayerColor(botUser.ID) == "" {
			if current.PlayerBlack == "" {
				current.PlayerBlack = botUser.ID
			} else {
				current.PlayerWhite = botUser.ID
			}
		}
		current.Status = statuses.StatusActive
		current.UpdatedAt = time.Now()

		if err := m.conditionalWrite(ctx, &current); err != nil {
			return err
		}
		seated = current
		return nil
	})
	if err != nil {
		return game.Match{}, err
	}

	m.scheduleBotTurn(seated.ID)
	return seated, nil
}

func (m *MatchUseCase) generateInvitationCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code := common.GenerateInvitationCode(m.rng)
		_, err := m.store.GetMatchByInvitationCode(ctx, code)
		if errors.Is(err, apperrors.ErrGameNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: could not generate unique invitation code", apperrors.ErrInternal)
}

// JoinMatch seats a player via invitation code. Joining a match you already
// sit in is a no-op; the match goes active once both seats are filled.
func (m *MatchUseCase) JoinMatch(ctx context.Context, code string, playerID string) (game.Match, error) {
	var joined game.Match
	err := m.withRetry(ctx, func(ctx context.Context) error {
		current, err := m.store.GetMatchByInvitationCode(ctx, code)
		if err != nil {
			return err
		}

		if current.PlayerColor(playerID) != "" {
			joined = current
			return nil
		}
		if current.Status != statuses.StatusWaiting {
			return apperrors.ErrGameNotJoinable
		}

		switch {
		case current.PlayerBlack == "":
			current.PlayerBlack = playerID
		case current.PlayerWhite == "":
			current.PlayerWhite = playerID
		default:
			return apperrors.ErrGameFull
		}

		if current.PlayerBlack != "" && current.PlayerWhite != "" {
			current.Status = statuses.StatusActive
		}
		current.UpdatedAt = time.Now()

		if err := m.conditionalWrite(ctx, &current); err != nil {
			return err
		}
		joined = current
		return nil
	})
	if err != nil {
		return game.Match{}, err
	}

	m.log.Infow("player joined match", "match_id", joined.ID, "player", playerID, "status", joined.Status)
	if joined.Status == statuses.StatusActive {
		m.scheduleBotTurn(joined.ID)
	}
	return joined, nil
}

// conditionalWrite persists current against the version it was read at and
// bumps the in-memory version on success.
func (m *MatchUseCase) conditionalWrite(ctx context.Context, current *game.Match) error {
	ok, err := m.store.UpdateMatchVersioned(ctx, *current, current.Version)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrConcurrentUpdate
	}
	current.Version++
	return nil
}

// MoveOutcome reports a committed move or pass.
type MoveOutcome struct {
	Match          game.Match
	Move           game.Move
	Captured       []game.Position
	ScoringStarted bool
}

// MakeMove validates and commits a stone placement for playerID.
func (m *MatchUseCase) MakeMove(ctx context.Context, matchID, playerID string, pos game.Position) (*MoveOutcome, error) {
	var outcome *MoveOutcome
	err := m.withRetry(ctx, func(ctx context.Context) error {
		current, color, err := m.activeTurn(ctx, matchID, playerID)
		if err != nil {
			return err
		}

		res := engine.ApplyMove(current.State.Board, pos, color)
		if !res.Valid {
			return &MoveError{Reason: res.Reason}
		}

		move := game.Move{
			ID:             uuid.New().String(),
			GameID:         matchID,
			PlayerID:       playerID,
			MoveNumber:     len(current.State.MoveHistory) + 1,
			Color:          color,
			Position:       &pos,
			CapturedStones: res.Captured,
			CreatedAt:      time.Now(),
		}
		current.State.Board = res.Board
		current.State.MoveHistory = append(current.State.MoveHistory, move)
		current.UpdatedAt = move.CreatedAt

		if err := m.conditionalWrite(ctx, &current); err != nil {
			return err
		}
		m.appendMoveLog(ctx, move)

		outcome = &MoveOutcome{Match: current, Move: move, Captured: res.Captured}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.broadcast(matchID, EventMoveMade, map[string]interface{}{
		"move":            outcome.Move,
		"captured_stones": outcome.Captured,
		"board":           outcome.Match.State.Board,
	})
	m.scheduleBotTurn(matchID)
	return outcome, nil
}

// PassTurn commits a pass; two consecutive passes move the match to scoring.
func (m *MatchUseCase) PassTurn(ctx context.Context, matchID, playerID string) (*MoveOutcome, error) {
	var outcome *MoveOutcome
	err := m.withRetry(ctx, func(ctx context.Context) error {
		current, color, err := m.activeTurn(ctx, matchID, playerID)
		if err != nil {
			return err
		}

		current.State.Board = engine.Pass(current.State.Board)

		move := game.Move{
			ID:         uuid.New().String(),
			GameID:     matchID,
			PlayerID:   playerID,
			MoveNumber: len(current.State.MoveHistory) + 1,
			Color:      color,
			IsPass:     true,
			CreatedAt:  time.Now(),
		}
		current.State.MoveHistory = append(current.State.MoveHistory, move)
		current.UpdatedAt = move.CreatedAt

		scoring := engine.ShouldEndGame(current.State.Board)
		if scoring {
			current.Status = statuses.StatusScoring
			current.State.Territory = engine.CalculateTerritory(
				current.State.Board.Stones, current.State.Board.Size, nil)
		}

		if err := m.conditionalWrite(ctx, &current); err != nil {
			return err
		}
		m.appendMoveLog(ctx, move)

		outcome = &MoveOutcome{Match: current, Move: move, ScoringStarted: scoring}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.broadcast(matchID, EventTurnPassed, map[string]interface{}{
		"color":              outcome.Move.Color,
		"consecutive_passes": outcome.Match.State.Board.ConsecutivePasses,
	})
	if outcome.ScoringStarted {
		m.broadcast(matchID, EventScoringStarted, map[string]interface{}{
			"territory": outcome.Match.State.Territory,
		})
	} else {
		m.scheduleBotTurn(matchID)
	}
	return outcome, nil
}

// activeTurn loads the match and checks the usual move preconditions.
func (m *MatchUseCase) activeTurn(ctx context.Context, matchID, playerID string) (game.Match, game.Color, error) {
	current, err := m.store.GetMatchByID(ctx, matchID)
	if err != nil {
		return game.Match{}, "", err
	}
	if current.Status != statuses.StatusActive {
		return game.Match{}, "", apperrors.ErrGameNotActive
	}
	color := current.PlayerColor(playerID)
	if color == "" {
		return game.Match{}, "", apperrors.ErrNotParticipant
	}
	if current.State.Board.CurrentTurn != color {
		return game.Match{}, "", apperrors.ErrNotYourTurn
	}
	return current, color, nil
}

// MarkDeadStones toggles dead marks during scoring. Any change invalidates
// previously recorded score acceptances.
func (m *MatchUseCase) MarkDeadStones(ctx context.Context, matchID, playerID string, positions []game.Position) (game.Match, error) {
	var updated game.Match
	err := m.withRetry(ctx, func(ctx context.Context) error {
		current, err := m.store.GetMatchByID(ctx, matchID)
		if err != nil {
			return err
		}
		if current.Status != statuses.StatusScoring {
			return apperrors.ErrNotInScoring
		}
		if current.PlayerColor(playerID) == "" {
			return apperrors.ErrNotParticipant
		}

		dead := current.State.DeadStones
		for _, pos := range positions {
			if !engine.InBounds(pos, current.BoardSize) {
				return fmt.Errorf("%w: (%d,%d)", apperrors.ErrMarkOutOfBounds, pos.X, pos.Y)
			}
			if _, ok := current.State.Board.Stones[pos.Key()]; !ok {
				return fmt.Errorf("%w: (%d,%d)", apperrors.ErrMarkEmptyPoint, pos.X, pos.Y)
			}
			dead = togglePosition(dead, pos)
		}
		current.State.DeadStones = dead
		current.State.Territory = engine.CalculateTerritory(
			current.State.Board.Stones, current.State.Board.Size, dead)
		current.UpdatedAt = time.Now()

		if err := m.conditionalWrite(ctx, &current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return game.Match{}, err
	}

	if err := m.store.ClearScoreAcceptances(ctx, matchID); err != nil {
		m.log.Errorw("failed to clear score acceptances", "match_id", matchID, "error", err)
	}

	m.broadcast(matchID, EventDeadStonesMarked, map[string]interface{}{
		"positions": positions,
		"marked_by": playerID,
		"territory": updated.State.Territory,
	})
	return updated, nil
}

func togglePosition(list []game.Position, pos game.Position) []game.Position {
	for i, p := range list {
		if p == pos {
			return append(list[:i], list[i+1:]...)
		}
	}
	return append(list, pos)
}

// AcceptScore records a player's agreement with the current score. The match
// finalizes when both seated players have accepted. Returns the match and
// whether it ended.
func (m *MatchUseCase) AcceptScore(ctx context.Context, matchID, playerID string) (game.Match, bool, error) {
	current, err := m.store.GetMatchByID(ctx, matchID)
	if err != nil {
		return game.Match{}, false, err
	}
	if current.Status != statuses.StatusScoring {
		return game.Match{}, false, apperrors.ErrNotInScoring
	}
	if current.PlayerColor(playerID) == "" {
		return game.Match{}, false, apperrors.ErrNotParticipant
	}

	if err := m.store.AddScoreAcceptance(ctx, matchID, playerID); err != nil {
		return game.Match{}, false, err
	}

	accepted, err := m.store.ScoreAcceptances(ctx, matchID)
	if err != nil {
		return game.Match{}, false, err
	}
	both := containsAll(accepted, current.PlayerBlack, current.PlayerWhite)

	m.broadcast(matchID, EventScoreAccepted, map[string]interface{}{
		"accepted_by":   playerID,
		"both_accepted": both,
	})

	if !both {
		m.scheduleBotAcceptance(matchID)
		return current, false, nil
	}

	final, err := m.finalizeScoredMatch(ctx, matchID)
	if err != nil {
		return game.Match{}, false, err
	}
	return final, true, nil
}

func containsAll(haystack []string, needles ...string) bool {
	present := make(map[string]bool, len(haystack))
	for _, h := range haystack {
		present[h] = true
	}
	for _, n := range needles {
		if n == "" || !present[n] {
			return false
		}
	}
	return true
}

// finalizeScoredMatch computes the final score, decides the winner, applies
// rating updates and closes the match. When a concurrent acceptance already
// performed the scoring→finished transition, that call owns the rating
// updates and broadcast; this one returns the closed match untouched.
func (m *MatchUseCase) finalizeScoredMatch(ctx context.Context, matchID string) (game.Match, error) {
	var final game.Match
	var closedHere bool
	err := m.withRetry(ctx, func(ctx context.Context) error {
		closedHere = false
		current, err := m.store.GetMatchByID(ctx, matchID)
		if err != nil {
			return err
		}
		if current.Status != statuses.StatusScoring {
			final = current
			return nil
		}

		score := engine.CalculateScore(
			current.State.Board.Stones,
			current.State.Board.Size,
			current.State.Board.Captures,
			current.State.DeadStones,
			current.Komi,
			current.RuleSet,
		)
		current.FinalScore = &score
		switch {
		case score.Black > score.White:
			current.Winner = game.WinnerBlack
		case score.White > score.Black:
			current.Winner = game.WinnerWhite
		default:
			current.Winner = game.WinnerDraw
		}
		current.WinReason = game.WinReasonScore
		current.Status = statuses.StatusFinished
		current.UpdatedAt = time.Now()

		if err := m.conditionalWrite(ctx, &current); err != nil {
			return err
		}
		final = current
		closedHere = true
		return nil
	})
	if err != nil {
		return game.Match{}, err
	}
	if !closedHere {
		return final, nil
	}

	if err := m.store.ClearScoreAcceptances(ctx, matchID); err != nil {
		m.log.Errorw("failed to clear score acceptances", "match_id", matchID, "error", err)
	}

	changes := m.applyRatings(ctx, &final)
	m.broadcast(matchID, EventGameEnded, game.GameResult{
		Winner:        final.Winner,
		Reason:        final.WinReason,
		FinalScore:    final.FinalScore,
		RatingChanges: changes,
	})
	m.log.Infow("match finished by score", "match_id", matchID, "winner", final.Winner)
	return final, nil
}

// Resign ends the match in the opponent's favor. Resigning a match that is
// still waiting for an opponent soft-removes it instead.
func (m *MatchUseCase) Resign(ctx context.Context, matchID, playerID string) (game.Match, error) {
	var final game.Match
	err := m.withRetry(ctx, func(ctx context.Context) error {
		current, err := m.store.GetMatchByID(ctx, matchID)
		if err != nil {
			return err
		}
		color := current.PlayerColor(playerID)
		if color == "" {
			return apperrors.ErrNotParticipant
		}

		if current.Status == statuses.StatusWaiting {
			current.Status = statuses.StatusAbandoned
			current.UpdatedAt = time.Now()
			if err := m.conditionalWrite(ctx, &current); err != nil {
				return err
			}
			if err := m.store.SoftDeleteMatch(ctx, matchID); err != nil {
				return err
			}
			final = current
			return nil
		}

		if current.Status != statuses.StatusActive && current.Status != statuses.StatusScoring {
			return apperrors.ErrCannotResign
		}

		current.Status = statuses.StatusFinished
		current.Winner = string(color.Opposite())
		current.WinReason = game.WinReasonResignation
		current.FinalScore = &game.Score{}
		current.UpdatedAt = time.Now()

		if err := m.conditionalWrite(ctx, &current); err != nil {
			return err
		}
		final = current
		return nil
	})
	if err != nil {
		return game.Match{}, err
	}

	if final.Status == statuses.StatusAbandoned {
		m.log.Infow("waiting match abandoned", "match_id", matchID, "player", playerID)
		return final, nil
	}

	changes := m.applyRatings(ctx, &final)
	m.broadcast(matchID, EventGameEnded, game.GameResult{
		Winner:        final.Winner,
		Reason:        final.WinReason,
		FinalScore:    final.FinalScore,
		RatingChanges: changes,
	})
	m.log.Infow("match finished by resignation", "match_id", matchID, "winner", final.Winner)
	return final, nil
}

// appendMoveLog writes the move to the append-only log with a bounded retry.
// The match document already carries the authoritative history, so exhausted
// retries degrade to a logged error instead of failing the committed move.
func (m *MatchUseCase) appendMoveLog(ctx context.Context, mv game.Move) {
	var err error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(retryBackoffBase << (attempt - 1))
		}
		if err = m.store.AppendMove(ctx, mv); err == nil {
			return
		}
	}
	m.log.Errorw("failed to append move to log",
		"match_id", mv.GameID, "move_number", mv.MoveNumber, "error", err)
}

func (m *MatchUseCase) GetMatch(ctx context.Context, matchID string) (game.Match, error) {
	return m.store.GetMatchByID(ctx, matchID)
}

// GetMoves returns the durable move log of a match in move-number order.
func (m *MatchUseCase) GetMoves(ctx context.Context, matchID string) ([]game.Move, error) {
	if _, err := m.store.GetMatchByID(ctx, matchID); err != nil {
		return nil, err
	}
	return m.store.GetMovesByMatchID(ctx, matchID)
}

func (m *MatchUseCase) GetMatchByInvitationCode(ctx context.Context, code string) (game.Match, error) {
	return m.store.GetMatchByInvitationCode(ctx, code)
}

func (m *MatchUseCase) GetMatchesByUserID(ctx context.Context, userID string) ([]game.Match, error) {
	return m.store.GetMatchesByUserID(ctx, userID)
}
