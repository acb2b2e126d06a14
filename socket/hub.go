package socket

import (
	"encoding/json"
	"sync"

	"learn2learn/pkg/logger"
)

const (
	NoteCreatedType = "NOTE_CREATED" // A note was created
	NoteUpdatedType = "NOTE_UPDATED" // Note fields or tag set changed
	NoteDeletedType = "NOTE_DELETED" // A note was deleted
	TagCreatedType  = "TAG_CREATED"  // Shared vocabulary grew
	TagUpdatedType  = "TAG_UPDATED"  // A tag was renamed
	TagDeletedType  = "TAG_DELETED"  // A tag was removed (notes keep their other tags)
)

// Event is a change notification pushed to connected clients. UserID scopes
// delivery to one user's room; an empty UserID fans out to every client,
// which is how shared-tag changes travel.
type Event struct {
	Type    string          `json:"type"`
	UserID  string          `json:"user_id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages websocket clients grouped into per-user rooms. A user's open
// tabs and devices share one room and all receive that user's note events.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan Event
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan Event),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.UserID] == nil {
				h.Rooms[client.UserID] = make(map[*Client]bool)
			}
			h.Rooms[client.UserID][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()

		case evt := <-h.Broadcast:
			payload, err := json.Marshal(evt)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast event: %v", err)
				continue
			}

			// Collect recipients under the lock, send outside of it.
			h.mu.Lock()
			var clientsToSend []*Client
			if evt.UserID == "" {
				for _, room := range h.Rooms {
					for client := range room {
						clientsToSend = append(clientsToSend, client)
					}
				}
			} else {
				for client := range h.Rooms[evt.UserID] {
					clientsToSend = append(clientsToSend, client)
				}
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// The client is lagging; drop it rather than block the hub.
					logger.Sugar.Warnf("Client %s's send buffer is full. Dropping.", client.UserID)
					h.mu.Lock()
					h.drop(client)
					h.mu.Unlock()
				}
			}
		}
	}
}

// drop removes a client from its room. Caller holds h.mu.
func (h *Hub) drop(client *Client) {
	if room, ok := h.Rooms[client.UserID]; ok {
		if _, ok := room[client]; ok {
			delete(room, client)
			close(client.Send)
			if len(room) == 0 {
				delete(h.Rooms, client.UserID)
			}
		}
	}
}

// Publish sends an event to one user's room. Payload is marshalled here so
// services can hand over plain structs.
func (h *Hub) Publish(eventType, userID string, payload any) {
	h.publish(eventType, userID, payload)
}

// PublishAll sends an event to every connected client.
func (h *Hub) PublishAll(eventType string, payload any) {
	h.publish(eventType, "", payload)
}

func (h *Hub) publish(eventType, userID string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s payload: %v", eventType, err)
		return
	}
	h.Broadcast <- Event{Type: eventType, UserID: userID, Payload: raw}
}
