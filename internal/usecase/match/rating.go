package match

import (
	"context"
	"time"

	"github.com/google/uuid"

	"webgo/internal/domain/game"
	"webgo/internal/elo"
	"webgo/internal/statuses"
)

// applyRatings updates both players' ratings for a finished match and writes
// one immutable rating-change record per player. Failures are logged, never
// surfaced: the match result itself is already durable.
func (m *MatchUseCase) applyRatings(ctx context.Context, finished *game.Match) map[string]*game.RatingChange {
	if finished.Status != statuses.StatusFinished ||
		finished.PlayerBlack == "" || finished.PlayerWhite == "" {
		return nil
	}

	black, err := m.store.GetUser(ctx, finished.PlayerBlack)
	if err != nil {
		m.log.Errorw("rating update skipped, black player not loadable",
			"match_id", finished.ID, "player", finished.PlayerBlack, "error", err)
		return nil
	}
	white, err := m.store.GetUser(ctx, finished.PlayerWhite)
	if err != nil {
		m.log.Errorw("rating update skipped, white player not loadable",
			"match_id", finished.ID, "player", finished.PlayerWhite, "error", err)
		return nil
	}

	var blackChange, whiteChange elo.Change
	var blackResult, whiteResult string
	switch finished.Winner {
	case game.WinnerBlack:
		res := elo.RateGame(black.Rating, white.Rating)
		blackChange, whiteChange = res.Winner, res.Loser
		blackResult, whiteResult = game.ResultWin, game.ResultLoss
	case game.WinnerWhite:
		res := elo.RateGame(white.Rating, black.Rating)
		whiteChange, blackChange = res.Winner, res.Loser
		whiteResult, blackResult = game.ResultWin, game.ResultLoss
	case game.WinnerDraw:
		res := elo.RateDraw(black.Rating, white.Rating)
		blackChange, whiteChange = res.PlayerA, res.PlayerB
		blackResult, whiteResult = game.ResultDraw, game.ResultDraw
	default:
		return nil
	}

	changes := map[string]*game.RatingChange{}
	for _, rc := range []struct {
		userID string
		change elo.Change
		result string
	}{
		{userID: black.ID, change: blackChange, result: blackResult},
		{userID: white.ID, change: whiteChange, result: whiteResult},
	} {
		record := game.RatingChange{
			ID:           uuid.New().String(),
			GameID:       finished.ID,
			UserID:       rc.userID,
			RatingBefore: rc.change.Before,
			RatingAfter:  rc.change.After,
			Delta:        rc.change.Delta,
			CreatedAt:    time.Now(),
		}
		if err := m.store.SaveUserRating(ctx, rc.userID, rc.change.After); err != nil {
			m.log.Errorw("failed to save rating", "user", rc.userID, "error", err)
			continue
		}
		if err := m.store.RecordUserResult(ctx, rc.userID, rc.result); err != nil {
			m.log.Errorw("failed to record result statistic", "user", rc.userID, "error", err)
		}
		if err := m.store.RecordRatingChange(ctx, record); err != nil {
			m.log.Errorw("failed to record rating change", "user", rc.userID, "error", err)
		}
		changes[rc.userID] = &record
	}
	return changes
}
