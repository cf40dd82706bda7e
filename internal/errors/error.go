package errors

import "errors"

var (
	ErrUserNotFound     = errors.New("user was not found")
	ErrSessionNotFound  = errors.New("session was not found")
	ErrCreateGameFailed = errors.New("create game failed")
	ErrGameNotFound     = errors.New("game not found")
	ErrGameNotJoinable  = errors.New("game is not waiting for players")
	ErrGameFull         = errors.New("game is full")
	ErrGameNotActive    = errors.New("game is not active")
	ErrNotInScoring     = errors.New("game is not in scoring phase")
	ErrMarkOutOfBounds  = errors.New("mark position is out of bounds")
	ErrMarkEmptyPoint   = errors.New("no stone at mark position")
	ErrNotParticipant   = errors.New("player is not in this game")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrCannotResign     = errors.New("cannot resign from this game")
	ErrConcurrentUpdate = errors.New("concurrent modification, try again")
	ErrProviderNoMove   = errors.New("external engine returned no usable move")
	ErrInternal         = errors.New("internal error")
)
