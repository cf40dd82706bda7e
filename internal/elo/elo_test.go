package elo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedScore(t *testing.T) {
	tt := []struct {
		name     string
		rating   int
		opponent int
		want     float64
	}{
		{name: "equal ratings", rating: 1500, opponent: 1500, want: 0.5},
		{name: "400 points stronger", rating: 1900, opponent: 1500, want: 10.0 / 11.0},
		{name: "400 points weaker", rating: 1500, opponent: 1900, want: 1.0 / 11.0},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := ExpectedScore(tc.rating, tc.opponent)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("ExpectedScore(%d, %d) = %v, want %v", tc.rating, tc.opponent, got, tc.want)
			}
		})
	}
}

func TestRateGameEqualRatings(t *testing.T) {
	res := RateGame(1500, 1500)

	assert.Equal(t, 16, res.Winner.Delta)
	assert.Equal(t, -16, res.Loser.Delta)
	assert.Equal(t, 1516, res.Winner.After)
	assert.Equal(t, 1484, res.Loser.After)
	assert.Equal(t, 1500, res.Winner.Before)
	assert.Equal(t, 1500, res.Loser.Before)
}

func TestRateGameUpset(t *testing.T) {
	// The underdog gains more than 16 points by beating a stronger player.
	res := RateGame(1200, 1600)

	assert.Greater(t, res.Winner.Delta, 16)
	assert.Less(t, res.Loser.Delta, 0)
}

func TestRateDrawEqualRatings(t *testing.T) {
	res := RateDraw(1500, 1500)

	assert.Equal(t, 0, res.PlayerA.Delta)
	assert.Equal(t, 0, res.PlayerB.Delta)
}

func TestRateDrawUnequalRatings(t *testing.T) {
	// A draw pulls the higher-rated player down and the lower-rated up.
	res := RateDraw(1700, 1300)

	assert.Less(t, res.PlayerA.Delta, 0)
	assert.Greater(t, res.PlayerB.Delta, 0)
}

func TestRatingFloor(t *testing.T) {
	// Unclamped the loser would drop to ~94; the floor holds the line at 100.
	res := RateGame(120, 110)

	assert.Equal(t, MinimumRating, res.Loser.After)
	assert.Equal(t, MinimumRating-110, res.Loser.Delta)
	assert.Greater(t, res.Winner.Delta, 0)
}
