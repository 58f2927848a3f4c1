// Package realtime delivers bracket updates to connected spectators over
// websockets. Clients join a room per tournament; every score submission
// broadcasts the updated match so open bracket views stay current.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event types sent to tournament rooms.
const (
	EventMatchUpdated        = "MATCH_UPDATED"
	EventBracketUpdated      = "BRACKET_UPDATED"
	EventTournamentCompleted = "TOURNAMENT_COMPLETED"
)

// Event is the wire envelope for room broadcasts.
type Event struct {
	Type    string      `json:"type"`
	Room    string      `json:"room,omitempty"`
	Payload interface{} `json:"payload"`
}

// Hub tracks connected clients grouped into rooms and fans events out to
// them. Register/Unregister/Broadcast are serialized through Run's loop.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan roomMessage

	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	logger *slog.Logger
}

type roomMessage struct {
	room string
	data []byte
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan roomMessage, 64),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until the process exits.
// Start it once in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.logger.Debug("realtime client joined", slog.String("room", client.room), slog.Int("clients", len(h.rooms[client.room])))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if clients[client] {
					delete(clients, client)
					client.closeSend()
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.rooms[msg.room] {
				client.trySend(msg.data)
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastToRoom marshals the event and queues it for every client in the
// room. Slow clients are skipped rather than blocking the hub.
func (h *Hub) BroadcastToRoom(room string, event Event) {
	event.Room = room
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal realtime event", slog.String("room", room), slog.Any("error", err))
		return
	}
	h.broadcast <- roomMessage{room: room, data: data}
}

// RoomSize reports the number of clients currently in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
