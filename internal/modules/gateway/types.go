package gateway

import (
	"sync"
	"sync/atomic"

	pkgredis "github.com/pdfsummarizer/core/internal/pkg/redis"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

const (
	namespaceDefault = "/"
	redisChanNotify  = "docsum:gateway:notify"

	EventConnected          = "connected"
	EventProcessStatus      = "process_status"
	EventExtractionProgress = "extraction_progress"
	EventProcessComplete    = "process_complete"
	EventProcessError       = "process_error"

	eventSubscribe   = "subscribe"
	eventUnsubscribe = "unsubscribe"

	defaultBufferSize = 256
)

// Message is the envelope passed through the hub loop and Redis fan-out.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	Topic   string      `json:"topic"`
	Origin  string      `json:"origin,omitempty"`
}

type clientMeta struct {
	sid string
}

// emitFunc delivers one event to every local socket in room.
type emitFunc func(room, event string, payload interface{})

// Hub owns the socket.io server and delivers per-topic notifications.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]struct{}

	notify     chan Message
	register   chan clientMeta
	unregister chan clientMeta

	delivered atomic.Int64
	dropped   atomic.Int64

	instanceID string
	rc         *pkgredis.Client
	logger     *zap.Logger
	sio        *socketio.Server
	emit       emitFunc
}

// Stats is the /gateway/stats payload.
type Stats struct {
	Clients   int   `json:"clients"`
	Delivered int64 `json:"delivered"`
	Dropped   int64 `json:"dropped"`
}
