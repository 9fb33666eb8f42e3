package gateway

import (
	"encoding/json"
	"strings"

	socketio "github.com/zishang520/socket.io/v2/socket"
)

func (h *Hub) registerNamespaces() {
	nsp := h.sio.Of(namespaceDefault, nil)
	_ = nsp.On("connection", func(args ...any) {
		if len(args) == 0 {
			return
		}
		client, ok := args[0].(*socketio.Socket)
		if !ok {
			return
		}
		sid := string(client.Id())
		h.register <- clientMeta{sid: sid}
		_ = client.Emit(EventConnected, map[string]interface{}{
			"data": "Connected to server",
			"sid":  sid,
		})

		// A client that generates its request id up front joins that topic before uploading.
		_ = client.On(eventSubscribe, func(eventArgs ...any) {
			if topic := topicFromArgs(eventArgs...); topic != "" {
				client.Join(socketio.Room(topic))
			}
		})
		_ = client.On(eventUnsubscribe, func(eventArgs ...any) {
			if topic := topicFromArgs(eventArgs...); topic != "" && topic != sid {
				client.Leave(socketio.Room(topic))
			}
		})

		_ = client.On("disconnect", func(_ ...any) {
			h.unregister <- clientMeta{sid: sid}
		})
	})
}

// topicFromArgs reads request_id from {"request_id": "..."}, a JSON string, or a bare string.
func topicFromArgs(args ...any) string {
	if len(args) == 0 || args[0] == nil {
		return ""
	}
	switch raw := args[0].(type) {
	case map[string]interface{}:
		return firstNonEmptyString(strFromAny(raw["request_id"]), strFromAny(raw["requestId"]))
	case string:
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "{") {
			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
				return ""
			}
			return topicFromArgs(payload)
		}
		return trimmed
	default:
		return ""
	}
}

func strFromAny(v interface{}) string {
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed)
	default:
		return ""
	}
}

func firstNonEmptyString(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}
