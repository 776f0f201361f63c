package models

// RoundCount is the number of scheduled rounds; every player has one score
// slot per round.
const RoundCount = 7

// PlayerCount is fixed by the pairing design: 8 players, 28 unique
// partnerships, 14 matches.
const PlayerCount = 8

// Player belongs to exactly one tournament snapshot. Scores holds one entry
// per round (0 = round not played yet); TotalScore is always the sum of
// Scores and is recomputed after every mutation.
type Player struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Scores     []int  `json:"scores"`
	TotalScore int    `json:"totalScore"`
	Rank       int    `json:"rank,omitempty"`
}
