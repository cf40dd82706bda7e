// Package elo implements the Elo rating update used at match finalization.
package elo

import "math"

const (
	KFactor       = 32
	MinimumRating = 100
)

// Change is the before/after pair for one participant.
type Change struct {
	Before int `json:"rating_before"`
	After  int `json:"rating_after"`
	Delta  int `json:"delta"`
}

type GameResult struct {
	Winner Change
	Loser  Change
}

type DrawResult struct {
	PlayerA Change
	PlayerB Change
}

// ExpectedScore is the probability of the first player winning.
func ExpectedScore(rating, opponent int) float64 {
	return 1 / (1 + math.Pow(10, float64(opponent-rating)/400))
}

func newRating(old int, expected, actual float64) int {
	updated := float64(old) + KFactor*(actual-expected)
	rounded := int(math.Round(updated))
	if rounded < MinimumRating {
		return MinimumRating
	}
	return rounded
}

func change(old int, expected, actual float64) Change {
	after := newRating(old, expected, actual)
	return Change{Before: old, After: after, Delta: after - old}
}

// RateGame computes both sides of a decisive result.
func RateGame(winnerRating, loserRating int) GameResult {
	return GameResult{
		Winner: change(winnerRating, ExpectedScore(winnerRating, loserRating), 1),
		Loser:  change(loserRating, ExpectedScore(loserRating, winnerRating), 0),
	}
}

// RateDraw computes both sides of a drawn result.
func RateDraw(ratingA, ratingB int) DrawResult {
	return DrawResult{
		PlayerA: change(ratingA, ExpectedScore(ratingA, ratingB), 0.5),
		PlayerB: change(ratingB, ExpectedScore(ratingB, ratingA), 0.5),
	}
}
