package game

import (
	"sort"

	"github.com/shuttleclub/doubles-server/models"
)

// RankPlayers returns the players ordered by total score descending with
// competition ranking attached: players on equal totals share the rank of
// the first player in the group, and the next distinct total resumes at its
// own 1-based position ([140, 140, 120] ranks as [1, 1, 3]). Ties keep
// their relative order from the snapshot. The snapshot itself is not
// modified.
func RankPlayers(t *models.Tournament) []models.Player {
	ranked := make([]models.Player, len(t.Players))
	copy(ranked, t.Players)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})

	for i := range ranked {
		if i > 0 && ranked[i].TotalScore == ranked[i-1].TotalScore {
			ranked[i].Rank = ranked[i-1].Rank
		} else {
			ranked[i].Rank = i + 1
		}
	}
	return ranked
}
