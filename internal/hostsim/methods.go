package hostsim

import (
	"context"
	"encoding/json"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/webviewkit/bridge/wire"
)

// Host-side error codes.
const (
	codeInternal       = 1
	codeMethodNotFound = 3
	codeInvalidParams  = 4
	codeUnsupported    = 6
)

// invoke runs one method call and builds the reply envelope. reply is false
// for request-only methods, which get no event at all.
func (s *Server) invoke(ctx context.Context, sess *session, msg wire.Message) (env wire.Envelope, reply bool) {
	m, known := s.cat.Lookup(msg.Method)
	if known && !m.Receive {
		s.log.Debug().Str("method", msg.Method).Msg("request-only method accepted")
		return wire.Envelope{}, false
	}
	if !known {
		return s.failed(msg, wire.NewAPIError(codeMethodNotFound, "method not found", msg.Method)), true
	}
	if !m.Request {
		return s.failed(msg, wire.NewAPIError(codeUnsupported, "event is not callable", msg.Method)), true
	}
	if !s.cat.IsSupported(msg.Method, s.cfg.Platform) {
		return s.failed(msg, wire.NewClientError(codeUnsupported, "Unsupported platform")), true
	}
	if err := validateProps(m, msg.Props); err != nil {
		return s.failed(msg, wire.NewClientError(codeInvalidParams, err.Error())), true
	}

	switch msg.Method {
	case "VKWebAppGetUserInfo":
		return s.resolved(msg, map[string]any{
			"id":         s.cfg.User.ID,
			"first_name": s.cfg.User.FirstName,
			"last_name":  s.cfg.User.LastName,
		}), true
	case "VKWebAppGetClientVersion":
		return s.clientVersion(ctx, msg), true
	case "VKWebAppGetSystemInfo":
		return s.systemInfo(ctx, msg), true
	case "VKWebAppStorageGet":
		return s.storageGet(ctx, sess, msg), true
	case "VKWebAppStorageSet":
		return s.storageSet(ctx, sess, msg), true
	default:
		return s.resolved(msg, map[string]any{"result": true}), true
	}
}

func (s *Server) clientVersion(ctx context.Context, msg wire.Message) wire.Envelope {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return s.failed(msg, wire.NewAPIError(codeInternal, "host info unavailable"))
	}
	return s.resolved(msg, map[string]any{
		"platform": s.cfg.Platform,
		"version":  info.PlatformVersion,
	})
}

func (s *Server) systemInfo(ctx context.Context, msg wire.Message) wire.Envelope {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return s.failed(msg, wire.NewAPIError(codeInternal, "host info unavailable"))
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return s.failed(msg, wire.NewAPIError(codeInternal, "memory info unavailable"))
	}
	return s.resolved(msg, map[string]any{
		"os":             info.OS,
		"os_version":     info.PlatformVersion,
		"kernel_version": info.KernelVersion,
		"total_memory":   vm.Total,
	})
}

func (s *Server) resolved(msg wire.Message, data map[string]any) wire.Envelope {
	resultEvent := wire.ResultEvent(msg.Method)
	if m, ok := s.cat.Lookup(msg.Method); ok {
		resultEvent, _ = m.Events()
	}
	if msg.RequestID != 0 {
		data["request_id"] = msg.RequestID
	}
	b, _ := json.Marshal(data)
	return wire.Envelope{Type: resultEvent, Data: b}
}

func (s *Server) failed(msg wire.Message, ep *wire.ErrorPayload) wire.Envelope {
	failedEvent := wire.FailedEvent(msg.Method)
	if m, ok := s.cat.Lookup(msg.Method); ok {
		_, failedEvent = m.Events()
	}
	ep.RequestID = msg.RequestID
	b, _ := json.Marshal(ep)
	return wire.Envelope{Type: failedEvent, Data: b}
}
