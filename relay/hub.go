package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/shuttleclub/doubles-server/models"
)

// Hub is the sync relay: a fan-out pipe that keeps per-tournament rooms of
// connected clients and rebroadcasts whichever snapshot a client last
// published. It performs no validation beyond requiring an id and access
// code on incoming snapshots, and no conflict resolution — consistency is
// last-write-wins.
//
// All hub state is owned by the single Run goroutine: registrations,
// disconnects and inbound client events arrive over channels and are
// processed one at a time. The hub is constructed once at service startup
// and holds no durable state; snapshots live in memory for the life of the
// process.
type Hub struct {
	logger *slog.Logger

	register   chan *Client
	unregister chan *Client
	events     chan inboundEvent

	rooms map[string]map[*Client]bool

	// last published snapshot per access code, and tournament id -> access
	// code for room naming
	snapshots map[string]*models.Tournament
	codeByID  map[string]string
}

type inboundEvent struct {
	client *Client
	msg    Message
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan inboundEvent),
		rooms:      make(map[string]map[*Client]bool),
		snapshots:  make(map[string]*models.Tournament),
		codeByID:   make(map[string]string),
	}
}

func roomName(tournamentID string) string {
	return "tournament:" + tournamentID
}

// Run processes hub traffic until ctx is cancelled. Must be started exactly
// once, before any client is attached.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("relay hub stopped")
			return

		case client := <-h.register:
			// A fresh connection belongs to no room until it creates or
			// joins a tournament.
			client.room = ""

		case client := <-h.unregister:
			h.dropClient(client)

		case ev := <-h.events:
			h.handleEvent(ev.client, ev.msg)
		}
	}
}

func (h *Hub) handleEvent(client *Client, msg Message) {
	switch msg.Type {
	case TypeCreateTournament:
		var t models.Tournament
		if err := json.Unmarshal(msg.Payload, &t); err != nil {
			h.logger.Warn("relay: bad create-tournament payload", slog.Any("error", err))
			return
		}
		h.handleCreate(client, &t)

	case TypeJoinTournament:
		var p JoinPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.logger.Warn("relay: bad join-tournament payload", slog.Any("error", err))
			return
		}
		h.handleJoin(client, p.AccessCode)

	case TypeTournamentUpdate:
		var p UpdatePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.logger.Warn("relay: bad tournament:update payload", slog.Any("error", err))
			return
		}
		h.handleUpdate(client, p)

	default:
		h.logger.Warn("relay: unknown message type", slog.String("type", msg.Type))
	}
}

// handleCreate registers the snapshot, joins the creator to its room and
// immediately rebroadcasts, so the creator's other tabs/devices sync too.
func (h *Hub) handleCreate(client *Client, t *models.Tournament) {
	if t.ID == "" || t.AccessCode == "" {
		return
	}
	h.snapshots[t.AccessCode] = t
	h.codeByID[t.ID] = t.AccessCode

	room := roomName(t.ID)
	h.joinRoom(client, room)
	h.broadcastToRoom(room, nil, TypeTournamentSync, t)
}

// handleJoin looks up the snapshot by access code and, when found, adds the
// connection to the room and sends it the current snapshot directly. An
// unknown code is silently dropped; the client is expected to retry or time
// out.
func (h *Hub) handleJoin(client *Client, accessCode string) {
	t, ok := h.snapshots[accessCode]
	if !ok {
		h.logger.Info("relay: join for unknown access code", slog.String("accessCode", accessCode))
		return
	}
	h.joinRoom(client, roomName(t.ID))
	h.sendTo(client, TypeTournamentSync, t)
}

// handleUpdate overwrites the stored snapshot and fans the full snapshot out
// to the whole room, sender included (clients must tolerate their own echo).
// When the payload carries an incremental descriptor a toast goes to
// everyone except the sender.
func (h *Hub) handleUpdate(client *Client, p UpdatePayload) {
	t := p.Tournament
	if t == nil || t.ID == "" || t.AccessCode == "" {
		return
	}
	h.snapshots[t.AccessCode] = t
	h.codeByID[t.ID] = t.AccessCode

	room := roomName(t.ID)
	h.broadcastToRoom(room, nil, TypeTournamentSync, t)

	if p.Update != nil {
		h.broadcastToRoom(room, client, TypeToastScore, ToastPayload{
			MatchID: p.Update.MatchID,
			Round:   p.Update.Round,
			ScoreA:  p.Update.ScoreA,
			ScoreB:  p.Update.ScoreB,
			TS:      time.Now().UnixMilli(),
		})
	}
}

func (h *Hub) joinRoom(client *Client, room string) {
	if client.room == room {
		return
	}
	if client.room != "" {
		h.leaveRoom(client)
	}
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	client.room = room
	h.logger.Info("relay: client joined room",
		slog.String("room", room),
		slog.Int("clients", len(h.rooms[room])))
}

func (h *Hub) leaveRoom(client *Client) {
	members, ok := h.rooms[client.room]
	if !ok {
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.rooms, client.room)
	}
	client.room = ""
}

func (h *Hub) dropClient(client *Client) {
	if client.room != "" {
		room := client.room
		h.leaveRoom(client)
		h.logger.Info("relay: client left room", slog.String("room", room))
	}
	client.closeSend()
}

// broadcastToRoom sends one message to every room member, skipping exclude
// when it is non-nil. A client whose send buffer is full is skipped rather
// than blocking the hub.
func (h *Hub) broadcastToRoom(room string, exclude *Client, msgType string, payload interface{}) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	data, err := marshalMessage(msgType, payload)
	if err != nil {
		h.logger.Error("relay: marshal broadcast failed",
			slog.String("type", msgType), slog.Any("error", err))
		return
	}
	for client := range members {
		if client == exclude {
			continue
		}
		client.enqueue(data)
	}
}

func (h *Hub) sendTo(client *Client, msgType string, payload interface{}) {
	data, err := marshalMessage(msgType, payload)
	if err != nil {
		h.logger.Error("relay: marshal send failed",
			slog.String("type", msgType), slog.Any("error", err))
		return
	}
	client.enqueue(data)
}
