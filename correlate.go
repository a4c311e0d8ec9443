package bridge

import (
	"encoding/json"

	"github.com/webviewkit/bridge/wire"
)

// pendingCall is one outstanding correlated invocation. Entries live in the
// Bridge.pending table keyed by request id and are removed the instant they
// are settled, which is what makes settlement at-most-once.
type pendingCall struct {
	call        *Call
	method      string
	resultEvent string
	failedEvent string
}

// handleEvent is the single entry point for inbound events. The transport
// invokes it from one goroutine in arrival order. Broadcast happens first
// and unconditionally; correlation is an additional, independent pass.
func (b *Bridge) handleEvent(env wire.Envelope) {
	eventsTotal.WithLabelValues(env.Type).Inc()
	b.broadcast(env)
	b.correlate(env)
}

func (b *Bridge) correlate(env wire.Envelope) {
	id, hasID := wire.EchoedID(env.Data)

	b.mu.Lock()
	pc, failed := b.match(env.Type, id, hasID)
	if pc != nil {
		delete(b.pending, pc.call.id)
	}
	b.mu.Unlock()

	if pc == nil {
		// Not ours, or an anomaly. Listeners already saw it.
		return
	}

	if !failed {
		settledTotal.WithLabelValues(pc.method, "resolved").Inc()
		b.log.Debug().Str("event", env.Type).Int64("request_id", pc.call.id).Msg("resolved")
		pc.call.settle(env.Data, nil)
		return
	}

	ep := &wire.ErrorPayload{}
	if err := json.Unmarshal(env.Data, ep); err != nil {
		// Failure event with an undecodable body. The call cannot be
		// left dangling once its failure event arrived, so reject with
		// a synthetic client_error.
		ep = wire.NewClientError(0, "malformed failure event")
		ep.RequestID = pc.call.id
		droppedTotal.WithLabelValues("malformed").Inc()
	}
	settledTotal.WithLabelValues(pc.method, "rejected").Inc()
	b.log.Debug().Str("event", env.Type).Int64("request_id", pc.call.id).Msg("rejected")
	pc.call.settle(nil, ep)
}

// match finds the pending call an event settles, holding b.mu.
//
// An event is attributed to a call when the event name equals the call's
// expected success or failure event name and the echoed request_id, if any,
// equals the call's id. Events without an id match the oldest outstanding
// call for the event name; ids are allocated monotonically, so oldest means
// smallest. That fallback is a best-effort heuristic for hosts that omit
// correlation ids, not a guarantee.
func (b *Bridge) match(event string, id int64, hasID bool) (*pendingCall, bool) {
	if hasID {
		pc, ok := b.pending[id]
		if !ok {
			droppedTotal.WithLabelValues("no_pending").Inc()
			return nil, false
		}
		switch event {
		case pc.resultEvent:
			return pc, false
		case pc.failedEvent:
			return pc, true
		default:
			// The id points at a call this event does not answer.
			droppedTotal.WithLabelValues("event_mismatch").Inc()
			return nil, false
		}
	}

	var oldest *pendingCall
	var isFailure bool
	for _, pc := range b.pending {
		var failed bool
		switch event {
		case pc.resultEvent:
			failed = false
		case pc.failedEvent:
			failed = true
		default:
			continue
		}
		if oldest == nil || pc.call.id < oldest.call.id {
			oldest = pc
			isFailure = failed
		}
	}
	return oldest, isFailure
}

// PendingCount reports the number of outstanding correlated calls.
func (b *Bridge) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
