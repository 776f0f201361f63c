package relay

import (
	"encoding/json"

	"github.com/shuttleclub/doubles-server/game"
	"github.com/shuttleclub/doubles-server/models"
)

// Message types carried over the relay connection.
const (
	// client -> relay
	TypeCreateTournament = "create-tournament"
	TypeJoinTournament   = "join-tournament"
	TypeTournamentUpdate = "tournament:update"

	// relay -> client
	TypeTournamentSync = "tournament:sync"
	TypeToastScore     = "toast:score"
)

// Message is the single tagged envelope for every relay event, in both
// directions. Type is the discriminant; Payload decodes according to it.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinPayload accompanies TypeJoinTournament.
type JoinPayload struct {
	AccessCode string `json:"accessCode"`
}

// UpdatePayload accompanies TypeTournamentUpdate. Update is optional; when
// present the relay emits a toast to everyone in the room but the sender.
type UpdatePayload struct {
	Tournament *models.Tournament `json:"tournament"`
	Update     *game.ScoreUpdate  `json:"update,omitempty"`
}

// ToastPayload accompanies TypeToastScore. Display-only; never a source of
// truth. TS is a unix timestamp in milliseconds.
type ToastPayload struct {
	MatchID int   `json:"matchId"`
	Round   int   `json:"round"`
	ScoreA  int   `json:"scoreA"`
	ScoreB  int   `json:"scoreB"`
	TS      int64 `json:"ts"`
}

func marshalMessage(msgType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: msgType, Payload: raw})
}
