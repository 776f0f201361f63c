package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankPlayersCompetitionRanking(t *testing.T) {
	tournament := newTestTournament(t)
	totals := map[int]int{1: 140, 2: 140, 3: 120, 4: 110, 5: 110, 6: 110, 7: 90, 8: 80}
	for i := range tournament.Players {
		tournament.Players[i].TotalScore = totals[tournament.Players[i].ID]
	}

	ranked := RankPlayers(tournament)
	require.Len(t, ranked, 8)

	gotTotals := make([]int, 0, len(ranked))
	gotRanks := make([]int, 0, len(ranked))
	for _, p := range ranked {
		gotTotals = append(gotTotals, p.TotalScore)
		gotRanks = append(gotRanks, p.Rank)
	}
	assert.Equal(t, []int{140, 140, 120, 110, 110, 110, 90, 80}, gotTotals)
	// Ties share the earlier rank; the next distinct total resumes at its
	// own position.
	assert.Equal(t, []int{1, 1, 3, 4, 4, 4, 7, 8}, gotRanks)
}

func TestRankPlayersTiesAreOrderStable(t *testing.T) {
	tournament := newTestTournament(t)
	for i := range tournament.Players {
		tournament.Players[i].TotalScore = 100
	}

	ranked := RankPlayers(tournament)
	for i, p := range ranked {
		assert.Equal(t, i+1, p.ID, "tied players keep their snapshot order")
		assert.Equal(t, 1, p.Rank)
	}
}

func TestRankPlayersDoesNotMutateSnapshot(t *testing.T) {
	tournament := newTestTournament(t)
	tournament.Players[0].TotalScore = 50

	_ = RankPlayers(tournament)
	for _, p := range tournament.Players {
		assert.Zero(t, p.Rank)
	}
	assert.Equal(t, 1, tournament.Players[0].ID)
}
