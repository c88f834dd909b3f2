package stream

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans activity events out to websocket subscribers. Channels are plain
// strings: "session:{id}" carries live samples for followers of one session,
// "user:{id}" carries completion and award envelopes for one user's devices.
// Redis pub/sub bridges hubs across instances; delivery is fire-and-forget.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Channel string
	Send    chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(channel string) *Client {
	client := &Client{
		Channel: channel,
		Send:    make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[channel] == nil {
		h.clients[channel] = map[*Client]struct{}{}
	}
	h.clients[channel][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if channelClients, ok := h.clients[client.Channel]; ok {
		delete(channelClients, client)
		if len(channelClients) == 0 {
			delete(h.clients, client.Channel)
		}
	}
	close(client.Send)
}

// Broadcast delivers to local subscribers and publishes for remote hubs.
// Slow subscribers are dropped-from, never blocked-on.
func (h *Hub) Broadcast(channel string, payload []byte) {
	h.deliverLocal(channel, payload)

	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(channel), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

func (h *Hub) deliverLocal(channel string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[channel]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "events:*")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliverLocal(channelFromRedis(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(channel string) string {
	return "events:" + channel
}

func channelFromRedis(ch string) string {
	return strings.TrimPrefix(ch, "events:")
}
