package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatingDelta(t *testing.T) {
	tests := []struct {
		name       string
		isWinner   bool
		playerRP   int
		opponentRP int
		want       int
	}{
		{name: "even win", isWinner: true, playerRP: 1000, opponentRP: 1000, want: 25},
		{name: "even loss", isWinner: false, playerRP: 1000, opponentRP: 1000, want: -20},
		{name: "upset win", isWinner: true, playerRP: 1000, opponentRP: 1500, want: 30},
		{name: "expected win over weaker", isWinner: true, playerRP: 2000, opponentRP: 1500, want: 20},
		{name: "upset bonus capped", isWinner: true, playerRP: 0, opponentRP: 9000, want: 35},
		{name: "win penalty capped", isWinner: true, playerRP: 9000, opponentRP: 0, want: 15},
		{name: "loss to stronger softened", isWinner: false, playerRP: 1000, opponentRP: 1500, want: -15},
		{name: "loss to weaker hurts more", isWinner: false, playerRP: 1500, opponentRP: 1000, want: -25},
		{name: "loss capped", isWinner: false, playerRP: 9000, opponentRP: 0, want: -30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RatingDelta(tt.isWinner, tt.playerRP, tt.opponentRP))
		})
	}
}

func TestClampRating(t *testing.T) {
	assert.Equal(t, 0, ClampRating(-5))
	assert.Equal(t, 0, ClampRating(0))
	assert.Equal(t, 42, ClampRating(42))
}

func TestGetRankInfo(t *testing.T) {
	bronze := GetRankInfo(0)
	assert.Equal(t, "Bronze", bronze.Rank)
	assert.Equal(t, 0, bronze.ProgressToNext)
	assert.Equal(t, "Silver", bronze.NextRank)
	assert.Equal(t, 1000, bronze.RPToNext)

	gold := GetRankInfo(2500)
	assert.Equal(t, "Gold", gold.Rank)
	assert.Equal(t, 50, gold.ProgressToNext)
	assert.Equal(t, "Diamond", gold.NextRank)
	assert.Equal(t, 500, gold.RPToNext)

	top := GetRankInfo(5000)
	assert.Equal(t, "Platinum", top.Rank)
	assert.Equal(t, 100, top.ProgressToNext)
	assert.Empty(t, top.NextRank)
	assert.Equal(t, 0, top.RPToNext)

	negative := GetRankInfo(-50)
	assert.Equal(t, "Bronze", negative.Rank)
	assert.Equal(t, 0, negative.CurrentRP)
}
