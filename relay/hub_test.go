package relay

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuttleclub/doubles-server/game"
	"github.com/shuttleclub/doubles-server/models"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func startRelay(t *testing.T) *httptest.Server {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Attach(conn)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Message{Type: msgType, Payload: raw}))
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func readSync(t *testing.T, conn *websocket.Conn) *models.Tournament {
	t.Helper()
	msg := readMessage(t, conn)
	require.Equal(t, TypeTournamentSync, msg.Type)
	var tournament models.Tournament
	require.NoError(t, json.Unmarshal(msg.Payload, &tournament))
	return &tournament
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "expected no message")
}

func testSnapshot(t *testing.T, accessCode string) *models.Tournament {
	t.Helper()
	names := []string{"Jason", "Mike", "Kim", "Alex", "Ray", "Steven", "Josh", "Justin"}
	tournament, err := game.NewTournament(accessCode, names, "2026-08-31")
	require.NoError(t, err)
	return tournament
}

func TestCreateEchoesSyncToCreator(t *testing.T) {
	srv := startRelay(t)
	creator := dial(t, srv)

	snapshot := testSnapshot(t, "code-1")
	send(t, creator, TypeCreateTournament, snapshot)

	synced := readSync(t, creator)
	assert.Equal(t, snapshot.ID, synced.ID)
	assert.Equal(t, "code-1", synced.AccessCode)
}

func TestJoinByAccessCodeReceivesSnapshot(t *testing.T) {
	srv := startRelay(t)
	creator := dial(t, srv)
	joiner := dial(t, srv)

	snapshot := testSnapshot(t, "code-1")
	send(t, creator, TypeCreateTournament, snapshot)
	readSync(t, creator)

	send(t, joiner, TypeJoinTournament, JoinPayload{AccessCode: "code-1"})
	synced := readSync(t, joiner)
	assert.Equal(t, snapshot.ID, synced.ID)
}

func TestJoinUnknownCodeIsSilentlyDropped(t *testing.T) {
	srv := startRelay(t)
	joiner := dial(t, srv)

	send(t, joiner, TypeJoinTournament, JoinPayload{AccessCode: "nope"})
	expectSilence(t, joiner)
}

func TestUpdateFansOutToRoomWithToast(t *testing.T) {
	srv := startRelay(t)
	creator := dial(t, srv)
	joiner := dial(t, srv)

	snapshot := testSnapshot(t, "code-1")
	send(t, creator, TypeCreateTournament, snapshot)
	readSync(t, creator)
	send(t, joiner, TypeJoinTournament, JoinPayload{AccessCode: "code-1"})
	readSync(t, joiner)

	updated := *snapshot
	updated.CurrentRound = 2
	send(t, creator, TypeTournamentUpdate, UpdatePayload{
		Tournament: &updated,
		Update:     &game.ScoreUpdate{MatchID: 1, Round: 1, ScoreA: 21, ScoreB: 15},
	})

	// The whole room gets the snapshot, sender included.
	assert.Equal(t, 2, readSync(t, creator).CurrentRound)
	assert.Equal(t, 2, readSync(t, joiner).CurrentRound)

	// The toast goes to everyone except the sender.
	toastMsg := readMessage(t, joiner)
	require.Equal(t, TypeToastScore, toastMsg.Type)
	var toast ToastPayload
	require.NoError(t, json.Unmarshal(toastMsg.Payload, &toast))
	assert.Equal(t, 1, toast.MatchID)
	assert.Equal(t, 21, toast.ScoreA)
	assert.Equal(t, 15, toast.ScoreB)
	assert.NotZero(t, toast.TS)

	expectSilence(t, creator)
}

func TestUpdateWithoutDescriptorEmitsNoToast(t *testing.T) {
	srv := startRelay(t)
	creator := dial(t, srv)
	joiner := dial(t, srv)

	snapshot := testSnapshot(t, "code-1")
	send(t, creator, TypeCreateTournament, snapshot)
	readSync(t, creator)
	send(t, joiner, TypeJoinTournament, JoinPayload{AccessCode: "code-1"})
	readSync(t, joiner)

	send(t, creator, TypeTournamentUpdate, UpdatePayload{Tournament: snapshot})
	readSync(t, creator)
	readSync(t, joiner)
	expectSilence(t, joiner)
}

func TestRoomsAreIsolated(t *testing.T) {
	srv := startRelay(t)
	clientA := dial(t, srv)
	clientC := dial(t, srv)

	snapshotA := testSnapshot(t, "code-a")
	snapshotC := testSnapshot(t, "code-c")
	send(t, clientA, TypeCreateTournament, snapshotA)
	readSync(t, clientA)
	send(t, clientC, TypeCreateTournament, snapshotC)
	readSync(t, clientC)

	send(t, clientA, TypeTournamentUpdate, UpdatePayload{Tournament: snapshotA})
	readSync(t, clientA)

	// A client in a different tournament's room never sees the update.
	expectSilence(t, clientC)
}

func TestUpdateWithoutIdentityIsDropped(t *testing.T) {
	srv := startRelay(t)
	creator := dial(t, srv)

	snapshot := testSnapshot(t, "code-1")
	send(t, creator, TypeCreateTournament, snapshot)
	readSync(t, creator)

	anonymous := *snapshot
	anonymous.AccessCode = ""
	send(t, creator, TypeTournamentUpdate, UpdatePayload{Tournament: &anonymous})
	expectSilence(t, creator)
}
