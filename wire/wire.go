// Package wire defines the frames exchanged between the bridge and a host.
package wire

import (
	"encoding/json"
	"strconv"
)

// Message is an outbound method invocation. RequestID is zero for
// request-only methods that expect no reply.
type Message struct {
	Method    string          `json:"method"`
	Props     json.RawMessage `json:"props,omitempty"`
	RequestID int64           `json:"request_id,omitempty"`
}

// Envelope is a raw inbound event: a result, a failure, or a push event.
// For result and failure events Data carries the echoed request_id when the
// host supplied one.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ResultEvent returns the conventional success event name for a method.
func ResultEvent(method string) string { return method + "Result" }

// FailedEvent returns the conventional failure event name for a method.
func FailedEvent(method string) string { return method + "Failed" }

// EchoedID extracts the request_id correlation field from an event payload.
// Hosts echo the id either as a JSON number or as a string; both are
// accepted. Returns false when the payload carries no usable id.
func EchoedID(data json.RawMessage) (int64, bool) {
	if len(data) == 0 {
		return 0, false
	}
	var probe struct {
		RequestID any `json:"request_id"`
	}
	if json.Unmarshal(data, &probe) != nil {
		return 0, false
	}
	switch v := probe.RequestID.(type) {
	case float64:
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
