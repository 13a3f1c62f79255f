package ws

import (
	"context"
	"log/slog"

	"polls-service/internal/ports/models"
)

// Hub fans out result tallies to the clients watching a question
type Hub struct {
	rooms      map[uint]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *models.QuestionResults
	done       chan struct{}
	// latest is the highest tally seq sent per question
	latest map[uint]uint64
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *models.QuestionResults, 64),
		done:       make(chan struct{}),
		latest:     make(map[uint]uint64),
	}
}

// Run owns the room map until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, room := range h.rooms {
				for client := range room {
					close(client.send)
				}
			}
			h.rooms = make(map[uint]map[*Client]struct{})
			return

		case client := <-h.register:
			room, ok := h.rooms[client.questionID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.questionID] = room
			}
			room[client] = struct{}{}

		case client := <-h.unregister:
			h.remove(client)

		case results := <-h.broadcast:
			if h.stale(results) {
				continue
			}
			for client := range h.rooms[results.QuestionID] {
				select {
				case client.send <- results:
				default:
					// slow consumer
					h.remove(client)
				}
			}
		}
	}
}

// Register adds client to its question's room. It reports false once the
// hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	room, ok := h.rooms[client.questionID]
	if !ok {
		return
	}
	if _, ok := room[client]; !ok {
		return
	}
	delete(room, client)
	close(client.send)
	if len(room) == 0 {
		delete(h.rooms, client.questionID)
	}
}

// stale reports whether a newer tally of the same question was already sent.
// Tallies without a seq are always sent.
func (h *Hub) stale(results *models.QuestionResults) bool {
	if results.Seq == 0 {
		return false
	}
	if results.Seq <= h.latest[results.QuestionID] {
		return true
	}
	h.latest[results.QuestionID] = results.Seq
	return false
}

// BroadcastResults queues a tally without blocking the caller
func (h *Hub) BroadcastResults(results *models.QuestionResults) {
	select {
	case h.broadcast <- results:
	default:
		slog.Warn("Results broadcast dropped", "question_id", results.QuestionID)
	}
}
