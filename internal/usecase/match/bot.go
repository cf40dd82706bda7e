package match

import (
	"context"
	"time"

	"webgo/internal/bot"
	"webgo/internal/statuses"
)

const (
	botThinkMin = 500 * time.Millisecond
	botThinkMax = 2500 * time.Millisecond

	botTurnTimeout = 30 * time.Second
)

// scheduleBotTurn checks, detached from the caller's request, whether the
// side to move is a bot and plays for it if so. Fire-and-forget: the human
// action that made it the bot's turn never waits on the bot's reply.
func (m *MatchUseCase) scheduleBotTurn(matchID string) {
	if m.bots == nil {
		return
	}
	delay := botThinkMin + time.Duration(m.rng.Int63n(int64(botThinkMax-botThinkMin)))
	go func() {
		time.Sleep(delay)
		ctx, cancel := context.WithTimeout(context.Background(), botTurnTimeout)
		defer cancel()
		m.playBotTurnIfDue(ctx, matchID)
	}()
}

func (m *MatchUseCase) playBotTurnIfDue(ctx context.Context, matchID string) {
	current, err := m.store.GetMatchByID(ctx, matchID)
	if err != nil {
		m.log.Errorw("bot turn check failed", "match_id", matchID, "error", err)
		return
	}
	if current.Status != statuses.StatusActive {
		return
	}

	playerID := current.PlayerByColor(current.State.Board.CurrentTurn)
	if playerID == "" {
		return
	}
	player, err := m.store.GetUser(ctx, playerID)
	if err != nil || !player.IsBot {
		return
	}

	difficulty := bot.Difficulty(player.BotDifficulty)
	pos := m.bots.SelectMove(ctx, current.State.Board, difficulty)

	if pos != nil {
		if _, err := m.MakeMove(ctx, matchID, playerID, *pos); err != nil {
			m.log.Errorw("bot move rejected", "match_id", matchID, "difficulty", difficulty, "error", err)
		}
		return
	}
	if _, err := m.PassTurn(ctx, matchID, playerID); err != nil {
		m.log.Errorw("bot pass rejected", "match_id", matchID, "error", err)
	}
}

// scheduleBotAcceptance lets a bot opponent agree with the proposed score
// shortly after its human opponent did.
func (m *MatchUseCase) scheduleBotAcceptance(matchID string) {
	if m.bots == nil {
		return
	}
	go func() {
		time.Sleep(500 * time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), botTurnTimeout)
		defer cancel()
		m.acceptScoreAsBot(ctx, matchID)
	}()
}

func (m *MatchUseCase) acceptScoreAsBot(ctx context.Context, matchID string) {
	current, err := m.store.GetMatchByID(ctx, matchID)
	if err != nil || current.Status != statuses.StatusScoring {
		return
	}

	accepted, err := m.store.ScoreAcceptances(ctx, matchID)
	if err != nil {
		return
	}
	alreadyAccepted := make(map[string]bool, len(accepted))
	for _, id := range accepted {
		alreadyAccepted[id] = true
	}

	for _, playerID := range []string{current.PlayerBlack, current.PlayerWhite} {
		if playerID == "" || alreadyAccepted[playerID] {
			continue
		}
		player, err := m.store.GetUser(ctx, playerID)
		if err != nil || !player.IsBot {
			continue
		}
		if _, _, err := m.AcceptScore(ctx, matchID, playerID); err != nil {
			m.log.Errorw("bot score acceptance failed", "match_id", matchID, "error", err)
		}
		return
	}
}
