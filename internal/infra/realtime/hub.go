package realtime

import (
	"sync"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

const subscriberBuffer = 16

// Hub keeps one room per user. Every open stream of that user is a subscriber.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[chan *entity.Notification]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[chan *entity.Notification]struct{})}
}

// Subscribe joins userID's room. The returned func leaves it and closes the channel.
func (h *Hub) Subscribe(userID string) (<-chan *entity.Notification, func()) {
	ch := make(chan *entity.Notification, subscriberBuffer)

	h.mu.Lock()
	room, ok := h.rooms[userID]
	if !ok {
		room = make(map[chan *entity.Notification]struct{})
		h.rooms[userID] = room
	}
	room[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.rooms[userID], ch)
			if len(h.rooms[userID]) == 0 {
				delete(h.rooms, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish never blocks: a subscriber whose buffer is full misses the event.
func (h *Hub) Publish(userID string, n *entity.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.rooms[userID] {
		select {
		case ch <- n:
		default:
		}
	}
}

func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}
