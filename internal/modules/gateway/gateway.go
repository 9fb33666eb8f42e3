package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	pkgredis "github.com/pdfsummarizer/core/internal/pkg/redis"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

// NewHub creates the hub. rc may be nil for single-instance deployments.
func NewHub(rc *pkgredis.Client, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	sio := socketio.NewServer(nil, nil)
	h := &Hub{
		clients:    make(map[string]struct{}),
		notify:     make(chan Message, defaultBufferSize),
		register:   make(chan clientMeta, defaultBufferSize),
		unregister: make(chan clientMeta, defaultBufferSize),
		instanceID: uuid.NewString(),
		rc:         rc,
		logger:     logger,
		sio:        sio,
	}
	h.emit = func(room, event string, payload interface{}) {
		sio.Of(namespaceDefault, nil).To(socketio.Room(room)).Emit(event, payload)
	}
	h.registerNamespaces()
	return h
}

// Run starts the hub loop and the Redis subscriber. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rc != nil {
		go h.subscribeRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.sio.Close(nil)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.sid] = struct{}{}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, c.sid)
			h.mu.Unlock()

		case msg := <-h.notify:
			h.deliver(msg)
			h.publish(ctx, msg)
		}
	}
}

// Notify queues event for the sockets subscribed to topic. It never blocks: an empty topic
// is ignored and a full buffer drops the event.
func (h *Hub) Notify(topic, event string, payload interface{}) {
	if topic == "" {
		return
	}
	select {
	case h.notify <- Message{Event: event, Payload: payload, Topic: topic}:
	default:
		h.dropped.Add(1)
		h.logger.Warn("gateway buffer full, dropping event",
			zap.String("topic", topic),
			zap.String("event", event),
		)
	}
}

func (h *Hub) deliver(msg Message) {
	h.emit(msg.Topic, msg.Event, msg.Payload)
	h.delivered.Add(1)
}

func (h *Hub) publish(ctx context.Context, msg Message) {
	if h.rc == nil {
		return
	}
	msg.Origin = h.instanceID
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := h.rc.Publish(ctx, redisChanNotify, string(data)); err != nil {
		h.logger.Warn("gateway publish failed", zap.String("channel", redisChanNotify), zap.Error(err))
	}
}

// subscribeRedis delivers events published by other instances.
func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rc.Subscribe(ctx, redisChanNotify)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return

		case redisMsg, ok := <-ch:
			if !ok {
				return
			}
			h.handleRemote(redisMsg.Payload)
		}
	}
}

func (h *Hub) handleRemote(raw string) {
	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return
	}
	if msg.Origin == h.instanceID || msg.Topic == "" {
		return
	}
	h.deliver(msg)
}

// ClientCount returns the number of connected sockets on this instance.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Stats() Stats {
	return Stats{
		Clients:   h.ClientCount(),
		Delivered: h.delivered.Load(),
		Dropped:   h.dropped.Load(),
	}
}

// Handler returns the socket.io HTTP handler mounted at /socket.io.
func (h *Hub) Handler() http.Handler {
	return h.sio.ServeHandler(nil)
}
