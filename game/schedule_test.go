package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuttleclub/doubles-server/models"
)

func testNames() []string {
	return []string{"Jason", "Mike", "Kim", "Alex", "Ray", "Steven", "Josh", "Justin"}
}

func TestNewTournamentShape(t *testing.T) {
	tournament, err := NewTournament("club42", testNames(), "2026-08-31")
	require.NoError(t, err)

	assert.NotEmpty(t, tournament.ID)
	assert.Equal(t, "club42", tournament.AccessCode)
	assert.Equal(t, "2026-08-31", tournament.Date)
	assert.Equal(t, 1, tournament.CurrentRound)
	assert.False(t, tournament.IsFinalized)

	require.Len(t, tournament.Players, models.PlayerCount)
	for i, p := range tournament.Players {
		assert.Equal(t, i+1, p.ID)
		assert.Len(t, p.Scores, models.RoundCount)
		assert.Zero(t, p.TotalScore)
	}

	require.Len(t, tournament.Matches, models.MatchCount)
	for i, m := range tournament.Matches {
		assert.Equal(t, i+1, m.ID)
		assert.Equal(t, i/2+1, m.Round, "matches must be in round-major order")
		assert.Nil(t, m.ScoreA)
		assert.Nil(t, m.ScoreB)
		assert.False(t, m.Completed)
	}
}

// Every unordered pair of players partners together in exactly one match
// across the tournament: 14 matches x 2 teams = 28 partnerships = C(8,2).
func TestScheduleCoversEveryPartnershipOnce(t *testing.T) {
	tournament, err := NewTournament("club42", testNames(), "")
	require.NoError(t, err)

	type pair struct{ lo, hi int }
	normalize := func(team models.Team) pair {
		if team.Player1 < team.Player2 {
			return pair{team.Player1, team.Player2}
		}
		return pair{team.Player2, team.Player1}
	}

	partnerships := make(map[pair]int)
	for _, m := range tournament.Matches {
		partnerships[normalize(m.TeamA)]++
		partnerships[normalize(m.TeamB)]++
	}

	assert.Len(t, partnerships, 28)
	for p, count := range partnerships {
		assert.Equalf(t, 1, count, "pair %v partnered %d times", p, count)
	}
}

// Each round's 4 teams use all 8 player ids exactly once.
func TestScheduleEveryRoundIsAPerfectMatching(t *testing.T) {
	tournament, err := NewTournament("club42", testNames(), "")
	require.NoError(t, err)

	byRound := make(map[int][]models.Match)
	for _, m := range tournament.Matches {
		byRound[m.Round] = append(byRound[m.Round], m)
	}
	require.Len(t, byRound, models.RoundCount)

	for round, matches := range byRound {
		require.Lenf(t, matches, 2, "round %d", round)
		seen := make(map[int]bool)
		for _, m := range matches {
			for _, id := range []int{m.TeamA.Player1, m.TeamA.Player2, m.TeamB.Player1, m.TeamB.Player2} {
				assert.Falsef(t, seen[id], "player %d appears twice in round %d", id, round)
				seen[id] = true
			}
		}
		assert.Lenf(t, seen, models.PlayerCount, "round %d", round)
	}
}

func TestNewTournamentValidation(t *testing.T) {
	names := testNames()

	_, err := NewTournament("", names, "")
	assert.ErrorIs(t, err, ErrAccessCodeEmpty)

	_, err = NewTournament("club42", names[:7], "")
	assert.ErrorIs(t, err, ErrPlayerCount)

	short := testNames()
	short[3] = ""
	_, err = NewTournament("club42", short, "")
	assert.ErrorIs(t, err, ErrEmptyPlayerName)

	long := testNames()
	long[0] = "Maximilian"
	_, err = NewTournament("club42", long, "")
	assert.ErrorIs(t, err, ErrPlayerNameTooLong)

	dup := testNames()
	dup[1] = dup[0]
	_, err = NewTournament("club42", dup, "")
	assert.ErrorIs(t, err, ErrDuplicateName)
}
