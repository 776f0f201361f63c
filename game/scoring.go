package game

import (
	"errors"

	"github.com/shuttleclub/doubles-server/models"
)

const winningScore = 21

var (
	ErrMatchNotFound = errors.New("match not found in tournament")
	ErrInvalidScore  = errors.New("invalid score: one side must reach exactly 21, the other must stay below 21")
)

// ScoreUpdate is the incremental descriptor of one applied result. It rides
// along relay updates so other clients can show a toast; the full snapshot
// remains the only source of truth.
type ScoreUpdate struct {
	MatchID int `json:"matchId"`
	Round   int `json:"round"`
	ScoreA  int `json:"scoreA"`
	ScoreB  int `json:"scoreB"`
}

// ValidateScore reports whether (a, b) is a legal single-game result:
// exactly one side at 21, the other in [0, 21). No extended deuce.
func ValidateScore(a, b int) bool {
	if a < 0 || b < 0 || a > winningScore || b > winningScore {
		return false
	}
	if a == winningScore && b < winningScore {
		return true
	}
	if b == winningScore && a < winningScore {
		return true
	}
	return false
}

// ApplyScore records a match result on the snapshot: match scores, completed
// flag and winner, the round slot of all four participants (teammates share
// their side's score), and every player's recomputed total.
//
// CurrentRound advances by one only for a first-time submission (isEdit
// false) that completes the round the tournament is currently on; edits are
// corrections to history and never move the round forward. The round is
// capped at the final round and never regresses.
//
// On a validation failure the snapshot is left untouched and an error is
// returned, so callers can distinguish a rejected result from an accepted
// one that changed nothing.
func ApplyScore(t *models.Tournament, matchID, scoreA, scoreB int, isEdit bool) (*ScoreUpdate, error) {
	match := t.Match(matchID)
	if match == nil {
		return nil, ErrMatchNotFound
	}
	if !ValidateScore(scoreA, scoreB) {
		return nil, ErrInvalidScore
	}

	a, b := scoreA, scoreB
	match.ScoreA = &a
	match.ScoreB = &b
	match.Completed = true
	winner := models.WinnerTeamB
	if scoreA == winningScore {
		winner = models.WinnerTeamA
	}
	match.WinnerTeam = &winner

	roundIdx := match.Round - 1
	for i := range t.Players {
		p := &t.Players[i]
		switch {
		case match.TeamA.Has(p.ID):
			p.Scores[roundIdx] = scoreA
		case match.TeamB.Has(p.ID):
			p.Scores[roundIdx] = scoreB
		}
	}

	if !isEdit && match.Round == t.CurrentRound && t.CurrentRound < models.RoundCount && roundComplete(t, match.Round) {
		t.CurrentRound++
	}

	RecomputeTotals(t)

	return &ScoreUpdate{
		MatchID: matchID,
		Round:   match.Round,
		ScoreA:  scoreA,
		ScoreB:  scoreB,
	}, nil
}

// RecomputeTotals refreshes every player's total from their round slots.
// Totals are derived data and are never trusted on their own.
func RecomputeTotals(t *models.Tournament) {
	for i := range t.Players {
		total := 0
		for _, s := range t.Players[i].Scores {
			total += s
		}
		t.Players[i].TotalScore = total
	}
}

// ReconcileFromMatches rebuilds every player's round slots and total from
// the completed match list. Used at finalize time so the persisted totals
// match the authoritative match history even if incremental maintenance
// drifted.
func ReconcileFromMatches(t *models.Tournament) {
	for i := range t.Players {
		t.Players[i].Scores = make([]int, models.RoundCount)
	}
	for _, m := range t.Matches {
		if !m.Completed || m.ScoreA == nil || m.ScoreB == nil {
			continue
		}
		roundIdx := m.Round - 1
		for i := range t.Players {
			p := &t.Players[i]
			switch {
			case m.TeamA.Has(p.ID):
				p.Scores[roundIdx] = *m.ScoreA
			case m.TeamB.Has(p.ID):
				p.Scores[roundIdx] = *m.ScoreB
			}
		}
	}
	RecomputeTotals(t)
}

// IsComplete reports whether all 14 matches have been played.
func IsComplete(t *models.Tournament) bool {
	for _, m := range t.Matches {
		if !m.Completed {
			return false
		}
	}
	return true
}

func roundComplete(t *models.Tournament, round int) bool {
	for _, m := range t.Matches {
		if m.Round == round && !m.Completed {
			return false
		}
	}
	return true
}
