package match

import (
	"context"
	"errors"
	"sort"
	"sync"

	"webgo/internal/domain/game"
	"webgo/internal/domain/user"
	apperrors "webgo/internal/errors"
)

// fakeStore is an in-memory MatchStore with the same conditional-update
// semantics as the mongo repository.
type fakeStore struct {
	mu            sync.Mutex
	matches       map[string]game.Match
	moves         []game.Move
	users         map[string]user.User
	ratingChanges []game.RatingChange
	acceptances   map[string]map[string]bool
	softDeleted   map[string]bool

	// beforeUpdate runs inside UpdateMatchVersioned before the version
	// check, letting tests interleave a concurrent committed write.
	beforeUpdate func(s *fakeStore)

	// failUpdates makes every conditional write report a version conflict.
	failUpdates bool

	// appendMoveFailures fails that many AppendMove calls before succeeding.
	appendMoveFailures int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		matches:     map[string]game.Match{},
		users:       map[string]user.User{},
		acceptances: map[string]map[string]bool{},
		softDeleted: map[string]bool{},
	}
}

func (s *fakeStore) GetMatchByID(ctx context.Context, id string) (game.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok || s.softDeleted[id] {
		return game.Match{}, apperrors.ErrGameNotFound
	}
	return m, nil
}

func (s *fakeStore) GetMatchByInvitationCode(ctx context.Context, code string) (game.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.InvitationCode == code && !s.softDeleted[m.ID] {
			return m, nil
		}
	}
	return game.Match{}, apperrors.ErrGameNotFound
}

func (s *fakeStore) PutMatch(ctx context.Context, m game.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.ID] = m
	return nil
}

func (s *fakeStore) UpdateMatchVersioned(ctx context.Context, m game.Match, expectedVersion int64) (bool, error) {
	if s.beforeUpdate != nil {
		hook := s.beforeUpdate
		s.beforeUpdate = nil
		hook(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.matches[m.ID]
	if s.failUpdates || !ok || stored.Version != expectedVersion {
		return false, nil
	}
	m.Version = expectedVersion + 1
	s.matches[m.ID] = m
	return true, nil
}

func (s *fakeStore) AppendMove(ctx context.Context, mv game.Move) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendMoveFailures > 0 {
		s.appendMoveFailures--
		return errors.New("append failed")
	}
	s.moves = append(s.moves, mv)
	return nil
}

func (s *fakeStore) GetMovesByMatchID(ctx context.Context, matchID string) ([]game.Move, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []game.Move
	for _, mv := range s.moves {
		if mv.GameID == matchID {
			out = append(out, mv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MoveNumber < out[j].MoveNumber })
	return out, nil
}

func (s *fakeStore) SoftDeleteMatch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.softDeleted[id] = true
	return nil
}

func (s *fakeStore) GetMatchesByUserID(ctx context.Context, userID string) ([]game.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []game.Match
	for _, m := range s.matches {
		if (m.PlayerBlack == userID || m.PlayerWhite == userID) && !s.softDeleted[m.ID] {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) GetUser(ctx context.Context, id string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return user.User{}, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeStore) GetBotUser(ctx context.Context, difficulty string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.IsBot && u.BotDifficulty == difficulty {
			return u, nil
		}
	}
	return user.User{}, apperrors.ErrUserNotFound
}

func (s *fakeStore) SaveUserRating(ctx context.Context, id string, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Rating = rating
	s.users[id] = u
	return nil
}

func (s *fakeStore) RecordUserResult(ctx context.Context, id string, result string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	switch result {
	case game.ResultWin:
		u.Statistic.Wins++
	case game.ResultLoss:
		u.Statistic.Losses++
	case game.ResultDraw:
		u.Statistic.Draws++
	}
	s.users[id] = u
	return nil
}

func (s *fakeStore) RecordRatingChange(ctx context.Context, rc game.RatingChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratingChanges = append(s.ratingChanges, rc)
	return nil
}

func (s *fakeStore) AddScoreAcceptance(ctx context.Context, matchID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acceptances[matchID] == nil {
		s.acceptances[matchID] = map[string]bool{}
	}
	s.acceptances[matchID][playerID] = true
	return nil
}

func (s *fakeStore) ScoreAcceptances(ctx context.Context, matchID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for id := range s.acceptances[matchID] {
		out = append(out, id)
	}
	return out, nil
}

func (s *fakeStore) ClearScoreAcceptances(ctx context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.acceptances, matchID)
	return nil
}
