package models

import "time"

// Tournament is the complete snapshot that moves between store, clients and
// the sync relay as a single value. AccessCode is the short human-entered
// string used to locate the active tournament; it is the only secret in the
// system.
type Tournament struct {
	ID           string    `json:"id"`
	AccessCode   string    `json:"accessCode"`
	Date         string    `json:"date"`
	Players      []Player  `json:"players"`
	Matches      []Match   `json:"matches"`
	CurrentRound int       `json:"currentRound"`
	IsFinalized  bool      `json:"isFinalized"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Match returns the match with the given id, or nil.
func (t *Tournament) Match(matchID int) *Match {
	for i := range t.Matches {
		if t.Matches[i].ID == matchID {
			return &t.Matches[i]
		}
	}
	return nil
}

// Player returns the player with the given id, or nil.
func (t *Tournament) Player(playerID int) *Player {
	for i := range t.Players {
		if t.Players[i].ID == playerID {
			return &t.Players[i]
		}
	}
	return nil
}
