package stream

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Topic names shared by publishers and websocket subscribers.
const (
	TopicEvents = "events"
)

// DraftTopic is the per-user topic carrying draft change notices.
func DraftTopic(userID string) string {
	return "drafts:" + userID
}

// Message is the envelope written to every subscriber.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Publisher is what services depend on to emit notices.
type Publisher interface {
	Publish(topic string, msg Message)
}

type Hub struct {
	redis   *redis.Client
	pubsub  *redis.PubSub
	log     *zap.Logger
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Topic string
	Send  chan []byte
}

// NewHub fans out locally, and through redis when a client is given so that
// every api instance sees every message. The redis subscription is confirmed
// before NewHub returns.
func NewHub(redisClient *redis.Client, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		redis:   redisClient,
		log:     log,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		ctx := context.Background()
		pubsub := redisClient.PSubscribe(ctx, redisChannel("*"))
		if _, err := pubsub.Receive(ctx); err != nil {
			log.Warn("redis subscribe failed, falling back to local fan-out", zap.Error(err))
			_ = pubsub.Close()
			h.redis = nil
			return h
		}
		h.pubsub = pubsub
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(topic string) *Client {
	client := &Client{
		Topic: topic,
		Send:  make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[topic] == nil {
		h.clients[topic] = map[*Client]struct{}{}
	}
	h.clients[topic][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if topicClients, ok := h.clients[client.Topic]; ok {
		if _, registered := topicClients[client]; !registered {
			return
		}
		delete(topicClients, client)
		if len(topicClients) == 0 {
			delete(h.clients, client.Topic)
		}
		close(client.Send)
	}
}

// Broadcast delivers payload to every subscriber of topic. With redis the
// payload goes through the channel only, so local subscribers get it once.
func (h *Hub) Broadcast(topic string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(topic), payload).Err()
		if err == nil {
			return
		}
		h.log.Warn("redis publish failed", zap.String("topic", topic), zap.Error(err))
	}
	h.deliver(topic, payload)
}

func (h *Hub) Publish(topic string, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("encode stream message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	h.Broadcast(topic, payload)
}

func (h *Hub) Close() error {
	if h.pubsub == nil {
		return nil
	}
	return h.pubsub.Close()
}

func (h *Hub) deliver(topic string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[topic] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	for msg := range h.pubsub.Channel() {
		topic := topicFromChannel(msg.Channel)
		if topic == "" {
			continue
		}
		h.deliver(topic, []byte(msg.Payload))
	}
}

func redisChannel(topic string) string {
	return "trailmates:" + topic + ":broadcast"
}

func topicFromChannel(ch string) string {
	// trailmates:{topic}:broadcast
	const prefix = "trailmates:"
	const suffix = ":broadcast"
	if len(ch) <= len(prefix)+len(suffix) || !strings.HasPrefix(ch, prefix) || !strings.HasSuffix(ch, suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
