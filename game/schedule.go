package game

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shuttleclub/doubles-server/models"
)

var (
	ErrPlayerCount       = errors.New("exactly 8 player names are required")
	ErrEmptyPlayerName   = errors.New("player names must not be empty")
	ErrPlayerNameTooLong = errors.New("player names must be at most 8 characters")
	ErrDuplicateName     = errors.New("player names must be unique")
	ErrAccessCodeEmpty   = errors.New("access code is required")
)

type pairing struct {
	teamA [2]int
	teamB [2]int
}

// RoundMatchups is the pre-solved pairing chart: 7 rounds of 2 matches over
// player ids 1..8. Every unordered pair of ids partners together in exactly
// one match (28 partnerships = C(8,2)), and every round uses all 8 ids
// exactly once. The table is a fixed constant rather than generated at
// runtime; the player count never changes, so the combinatorial work was
// done once and frozen.
var RoundMatchups = [models.RoundCount][2]pairing{
	{{teamA: [2]int{8, 1}, teamB: [2]int{2, 6}}, {teamA: [2]int{7, 5}, teamB: [2]int{3, 4}}},
	{{teamA: [2]int{8, 2}, teamB: [2]int{3, 7}}, {teamA: [2]int{1, 6}, teamB: [2]int{4, 5}}},
	{{teamA: [2]int{8, 3}, teamB: [2]int{4, 1}}, {teamA: [2]int{2, 7}, teamB: [2]int{5, 6}}},
	{{teamA: [2]int{8, 4}, teamB: [2]int{5, 2}}, {teamA: [2]int{3, 1}, teamB: [2]int{6, 7}}},
	{{teamA: [2]int{8, 5}, teamB: [2]int{6, 3}}, {teamA: [2]int{4, 2}, teamB: [2]int{7, 1}}},
	{{teamA: [2]int{8, 6}, teamB: [2]int{7, 4}}, {teamA: [2]int{5, 3}, teamB: [2]int{1, 2}}},
	{{teamA: [2]int{8, 7}, teamB: [2]int{1, 5}}, {teamA: [2]int{6, 4}, teamB: [2]int{2, 3}}},
}

// ValidatePlayerNames checks the create/rename input: exactly 8 names,
// each non-empty, at most 8 characters, unique within the tournament.
func ValidatePlayerNames(names []string) error {
	if len(names) != models.PlayerCount {
		return ErrPlayerCount
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			return ErrEmptyPlayerName
		}
		if utf8.RuneCountInString(name) > 8 {
			return fmt.Errorf("%w: %q", ErrPlayerNameTooLong, name)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// NewTournament builds a fresh snapshot: 8 players with zeroed score slots
// and the 14 matches of the fixed schedule, ids 1..14 in round-major order.
// When date is empty, today's date (YYYY-MM-DD) is used.
func NewTournament(accessCode string, playerNames []string, date string) (*models.Tournament, error) {
	if accessCode == "" {
		return nil, ErrAccessCodeEmpty
	}
	if err := ValidatePlayerNames(playerNames); err != nil {
		return nil, err
	}

	players := make([]models.Player, 0, models.PlayerCount)
	for i, name := range playerNames {
		players = append(players, models.Player{
			ID:     i + 1,
			Name:   name,
			Scores: make([]int, models.RoundCount),
		})
	}

	matches := make([]models.Match, 0, models.MatchCount)
	matchID := 1
	for roundIdx, roundPairings := range RoundMatchups {
		for _, p := range roundPairings {
			matches = append(matches, models.Match{
				ID:    matchID,
				Round: roundIdx + 1,
				TeamA: models.Team{Player1: p.teamA[0], Player2: p.teamA[1]},
				TeamB: models.Team{Player1: p.teamB[0], Player2: p.teamB[1]},
			})
			matchID++
		}
	}

	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	return &models.Tournament{
		ID:           uuid.NewString(),
		AccessCode:   accessCode,
		Date:         date,
		Players:      players,
		Matches:      matches,
		CurrentRound: 1,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
