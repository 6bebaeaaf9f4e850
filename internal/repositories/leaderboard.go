package repositories

// ApplyLeaderboardRanks assigns dense ranks to entries already sorted by
// score descending. Rank is a function of score only, so equal scores share
// a rank and the time-taken tiebreak affects row order, not rank.
func ApplyLeaderboardRanks(entries []*LeaderboardEntry) {
	rank := 0
	for i, entry := range entries {
		if i == 0 || entry.Score != entries[i-1].Score {
			rank++
		}
		entry.Rank = rank
	}
}
