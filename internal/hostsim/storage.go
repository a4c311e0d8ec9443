package hostsim

import (
	"context"
	"encoding/json"

	"github.com/webviewkit/bridge/wire"
)

// Storage methods are backed by redis, namespaced per client so concurrent
// clients cannot see each other's keys.

func (s *Server) storageKey(sess *session, key string) string {
	return "hostsim:storage:" + sess.id + ":" + key
}

func (s *Server) storageGet(ctx context.Context, sess *session, msg wire.Message) wire.Envelope {
	if s.rdb == nil {
		return s.failed(msg, wire.NewAPIError(codeInternal, "storage unavailable"))
	}
	var props struct {
		Keys []string `json:"keys"`
	}
	if err := json.Unmarshal(msg.Props, &props); err != nil || len(props.Keys) == 0 {
		return s.failed(msg, wire.NewClientError(codeInvalidParams, "keys is required"))
	}
	namespaced := make([]string, len(props.Keys))
	for i, k := range props.Keys {
		namespaced[i] = s.storageKey(sess, k)
	}
	values, err := s.rdb.MGet(ctx, namespaced...).Result()
	if err != nil {
		return s.failed(msg, wire.NewAPIError(codeInternal, "storage read failed"))
	}
	type entry struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	entries := make([]entry, len(props.Keys))
	for i, k := range props.Keys {
		e := entry{Key: k}
		if sv, ok := values[i].(string); ok {
			e.Value = sv
		}
		entries[i] = e
	}
	return s.resolved(msg, map[string]any{"keys": entries})
}

func (s *Server) storageSet(ctx context.Context, sess *session, msg wire.Message) wire.Envelope {
	if s.rdb == nil {
		return s.failed(msg, wire.NewAPIError(codeInternal, "storage unavailable"))
	}
	var props struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(msg.Props, &props); err != nil || props.Key == "" {
		return s.failed(msg, wire.NewClientError(codeInvalidParams, "key is required"))
	}
	if err := s.rdb.Set(ctx, s.storageKey(sess, props.Key), props.Value, 0).Err(); err != nil {
		return s.failed(msg, wire.NewAPIError(codeInternal, "storage write failed"))
	}
	return s.resolved(msg, map[string]any{"result": true})
}
