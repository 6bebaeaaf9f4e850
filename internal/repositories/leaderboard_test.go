package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyLeaderboardRanks(t *testing.T) {
	entries := []*LeaderboardEntry{
		{StudentID: 1, Score: 10, TimeTakenSeconds: 100},
		{StudentID: 2, Score: 10, TimeTakenSeconds: 200},
		{StudentID: 3, Score: 8, TimeTakenSeconds: 50},
		{StudentID: 4, Score: 8, TimeTakenSeconds: 90},
		{StudentID: 5, Score: 3, TimeTakenSeconds: 10},
	}

	ApplyLeaderboardRanks(entries)

	// Equal scores share a rank; a faster finish does not break the tie.
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 1, entries[1].Rank)
	assert.Equal(t, 2, entries[2].Rank)
	assert.Equal(t, 2, entries[3].Rank)
	assert.Equal(t, 3, entries[4].Rank)
}

func TestApplyLeaderboardRanksEmpty(t *testing.T) {
	assert.NotPanics(t, func() { ApplyLeaderboardRanks(nil) })
}
