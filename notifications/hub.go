package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

// TeamRoom is the hub room that receives events of one team.
func TeamRoom(teamID uuid.UUID) string {
	return "team_" + teamID.String()
}

// Hub groups websocket clients into rooms. Run owns registration; the send
// channel of a client is closed only by the hub.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	done       chan struct{}
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for room, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.logger.Debug("Client registered", slog.String("room", client.room), slog.Int("clients", len(h.rooms[client.room])))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok && clients[client] {
				close(client.send)
				delete(clients, client)
				if len(clients) == 0 {
					delete(h.rooms, client.room)
				}
				h.logger.Debug("Client unregistered", slog.String("room", client.room))
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Register(ctx context.Context, client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return fmt.Errorf("hub stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RoomSize returns the number of clients currently in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// BroadcastToRoom sends message to every client of room. Slow clients whose
// buffer is full miss the message.
func (h *Hub) BroadcastToRoom(room string, message interface{}) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message for room %s: %w", room, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		select {
		case client.send <- messageBytes:
		default:
			h.logger.Warn("Client send buffer full, dropping message", slog.String("room", room))
		}
	}
	return nil
}

// HubSink pushes trade events to the rooms of both teams of the trade.
type HubSink struct {
	Hub *Hub
}

func (s HubSink) Publish(_ context.Context, event TradeEvent) error {
	for _, teamID := range event.TeamIDs() {
		room := TeamRoom(teamID)
		msg := WebSocketMessage{Type: string(event.Type), Payload: event, RoomID: room}
		if err := s.Hub.BroadcastToRoom(room, msg); err != nil {
			return err
		}
	}
	return nil
}
