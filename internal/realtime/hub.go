package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"realtime-service/internal/metrics"
)

// Hub owns every live connection and the room membership maps. Emits
// are fanned out with non-blocking sends; a client whose buffer is full
// is dropped rather than allowed to stall the room.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	clientsMu  sync.RWMutex
	unregister chan *Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

func NewHub(logger *zap.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	hub := &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		unregister: make(chan *Client),
		logger:     logger,
		metrics:    m,
	}

	go hub.run()

	return hub
}

func (h *Hub) run() {
	for client := range h.unregister {
		h.clientsMu.Lock()
		if _, ok := h.clients[client]; ok {
			for name := range client.rooms {
				h.removeFromRoom(client, name)
			}
			delete(h.clients, client)
			close(client.send)
			h.metrics.ConnectionClosed()
		}
		h.clientsMu.Unlock()

		h.logger.Info("client unregistered",
			zap.String("request_id", client.requestID.String()))
	}
}

// addClient registers synchronously: once it returns the client is in
// the map and a join cannot race the registration.
func (h *Hub) addClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client] = true
	h.clientsMu.Unlock()

	h.metrics.ConnectionOpened()
	h.logger.Info("client registered",
		zap.String("request_id", client.requestID.String()))
}

// removeFromRoom must be called with clientsMu held
func (h *Hub) removeFromRoom(client *Client, name string) {
	if members, ok := h.rooms[name]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, name)
		}
	}
	delete(client.rooms, name)
}

// JoinRoom adds the client to a room. Joins from clients that already
// unregistered are ignored.
func (h *Hub) JoinRoom(client *Client, room Room) {
	name := room.Name()

	h.clientsMu.Lock()
	if !h.clients[client] {
		h.clientsMu.Unlock()
		return
	}
	if h.rooms[name] == nil {
		h.rooms[name] = make(map[*Client]bool)
	}
	h.rooms[name][client] = true
	client.rooms[name] = true
	h.clientsMu.Unlock()

	h.metrics.RoomJoined(string(room.Kind))
	h.logger.Debug("client joined room",
		zap.String("room", name),
		zap.String("request_id", client.requestID.String()))
}

// LeaveRoom removes the client from a room. Idempotent.
func (h *Hub) LeaveRoom(client *Client, room Room) {
	name := room.Name()

	h.clientsMu.Lock()
	h.removeFromRoom(client, name)
	h.clientsMu.Unlock()

	h.logger.Debug("client left room",
		zap.String("room", name),
		zap.String("request_id", client.requestID.String()))
}

// EmitToRoom is the single low-level delivery primitive. The payload is
// wrapped in the standard envelope and sent to every connection
// currently in the room; there is no queueing or replay.
func (h *Hub) EmitToRoom(room Room, eventType string, payload interface{}) {
	data, err := json.Marshal(Envelope{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Error("failed to marshal event",
			zap.String("event_type", eventType),
			zap.Error(err))
		return
	}

	var slow []*Client

	// Sends happen under the read lock so the hub cannot close a send
	// channel mid-fanout.
	h.clientsMu.RLock()
	members := h.rooms[room.Name()]
	for client := range members {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.clientsMu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("dropping slow client",
			zap.String("room", room.Name()),
			zap.String("request_id", client.requestID.String()))
		h.unregister <- client
	}

	h.metrics.EventEmitted(eventType)
}

// EmitToUser delivers to the user's personal room, the per-user
// delivery primitive used by notification pushes.
func (h *Hub) EmitToUser(userID uuid.UUID, eventType string, payload interface{}) {
	h.EmitToRoom(UserRoom(userID), eventType, payload)
}

// ConnectionCount reports the number of live connections
func (h *Hub) ConnectionCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// RoomCount reports the number of occupied rooms
func (h *Hub) RoomCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.rooms)
}

// RoomOccupancy reports how many connections are in the given room
func (h *Hub) RoomOccupancy(room Room) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.rooms[room.Name()])
}
