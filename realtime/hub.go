package realtime

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// MembershipSource answers which users belong to a conversation, so a
// conversation-channel event only reaches its participants.
type MembershipSource interface {
	ActiveMemberIDs(conversationID uuid.UUID) ([]uint, error)
}

// Event is a payload to fan out to locally connected clients.
type Event struct {
	Channel string
	Payload []byte
}

// Hub holds websocket connections and subscribes to Redis channels so events
// published by any instance reach the clients connected to this one.
type Hub struct {
	rdb        *redis.Client
	members    MembershipSource
	clients    map[uint]map[*Client]bool // userID -> set of connections
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event
}

func NewHub(rdb *redis.Client, members MembershipSource) *Hub {
	h := &Hub{
		rdb:        rdb,
		members:    members,
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	if h.rdb != nil {
		pubsub := h.rdb.PSubscribe(context.Background(), "chat.*", "notifications.*")
		ch := pubsub.Channel()
		go func() {
			for msg := range ch {
				h.broadcast <- &Event{Channel: msg.Channel, Payload: []byte(msg.Payload)}
			}
		}()
	}

	for {
		select {
		case c := <-h.register:
			if _, ok := h.clients[c.userID]; !ok {
				h.clients[c.userID] = make(map[*Client]bool)
			}
			h.clients[c.userID][c] = true
		case c := <-h.unregister:
			if conns, ok := h.clients[c.userID]; ok {
				if _, exists := conns[c]; exists {
					delete(conns, c)
					close(c.send)
				}
				if len(conns) == 0 {
					delete(h.clients, c.userID)
				}
			}
		case ev := <-h.broadcast:
			h.route(ev)
		}
	}
}

func (h *Hub) route(ev *Event) {
	switch {
	case strings.HasPrefix(ev.Channel, "chat."):
		conversationID, err := uuid.Parse(strings.TrimPrefix(ev.Channel, "chat."))
		if err != nil {
			log.Printf("bad conversation channel %q: %v", ev.Channel, err)
			return
		}
		memberIDs, err := h.members.ActiveMemberIDs(conversationID)
		if err != nil {
			log.Printf("member lookup for %s failed: %v", ev.Channel, err)
			return
		}
		for _, userID := range memberIDs {
			h.sendToUser(userID, ev.Payload)
		}
	case strings.HasPrefix(ev.Channel, "notifications."):
		userID, err := strconv.ParseUint(strings.TrimPrefix(ev.Channel, "notifications."), 10, 64)
		if err != nil {
			log.Printf("bad notification channel %q: %v", ev.Channel, err)
			return
		}
		h.sendToUser(uint(userID), ev.Payload)
	}
}

func (h *Hub) sendToUser(userID uint, payload []byte) {
	conns, ok := h.clients[userID]
	if !ok {
		return
	}
	for c := range conns {
		select {
		case c.send <- payload:
		default:
			close(c.send)
			delete(conns, c)
		}
	}
}

func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Broadcast injects an event directly, bypassing Redis. Used by tests and by
// single-instance deployments without a Redis fabric.
func (h *Hub) Broadcast(ev *Event) {
	h.broadcast <- ev
}
