package models

// MatchCount is RoundCount rounds of 2 matches each.
const MatchCount = 14

type WinnerTeam string

const (
	WinnerTeamA WinnerTeam = "A"
	WinnerTeamB WinnerTeam = "B"
)

// Team is an unordered pair of player ids partnering for one match.
type Team struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

func (t Team) Has(playerID int) bool {
	return t.Player1 == playerID || t.Player2 == playerID
}

// Match team composition is fixed at schedule-generation time and never
// changes. ScoreA/ScoreB stay nil until the match is played.
type Match struct {
	ID         int         `json:"id"`
	Round      int         `json:"round"`
	TeamA      Team        `json:"teamA"`
	TeamB      Team        `json:"teamB"`
	ScoreA     *int        `json:"scoreA"`
	ScoreB     *int        `json:"scoreB"`
	Completed  bool        `json:"completed"`
	WinnerTeam *WinnerTeam `json:"winnerTeam,omitempty"`
}
