// Package bridge implements the client side of the webview host protocol:
// it sends named method invocations over a transport, correlates the host's
// asynchronous result events back to the originating call, and fans every
// inbound event out to subscribed listeners.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/webviewkit/bridge/catalog"
	"github.com/webviewkit/bridge/wire"
)

// Options configure a Bridge. The zero value is usable: the default
// catalogue applies and logging is disabled.
type Options struct {
	// Catalog describes the host methods. Defaults to catalog.Default().
	Catalog *catalog.Catalog
	// Logger receives debug-level protocol traces. Defaults to a no-op
	// logger; the engine prescribes no logging.
	Logger *zerolog.Logger
}

// Bridge is the public facade over the correlation engine and the event
// dispatcher. One Bridge serves one transport; a single shared instance per
// process is the expected deployment shape.
type Bridge struct {
	transport Transport
	catalog   *catalog.Catalog
	info      Info
	log       zerolog.Logger

	mu        sync.Mutex
	nextID    int64
	pending   map[int64]*pendingCall
	listeners []Listener
}

// New builds a Bridge over the given transport and registers for its event
// feed. The transport's identity (kind, platform) is captured here, once.
func New(t Transport, opts Options) *Bridge {
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	b := &Bridge{
		transport: t,
		catalog:   cat,
		info:      t.Info(),
		log:       log,
		pending:   map[int64]*pendingCall{},
	}
	t.OnEvent(b.handleEvent)
	return b
}

// Send invokes a host method and waits for its result event. The returned
// payload is the full event data, echoed request_id included. On a failure
// event the error is a *wire.ErrorPayload. The engine applies no timeout of
// its own; cancel ctx to stop waiting.
func (b *Bridge) Send(ctx context.Context, method string, props any) (json.RawMessage, error) {
	return b.SendAsync(ctx, method, props).Result(ctx)
}

// SendAsync invokes a host method and returns the pending call immediately.
// ctx bounds only the outbound delivery, never the wait for the result.
//
// Unknown methods are forwarded as-is and correlated through the
// <method>Result / <method>Failed naming convention, so hosts newer than
// this build keep working. Methods the catalogue marks as having no receive
// counterpart settle with no payload as soon as the transport accepts them.
func (b *Bridge) SendAsync(ctx context.Context, method string, props any) *Call {
	raw, err := encodeProps(props)
	if err != nil {
		return settledCall(method, nil, fmt.Errorf("bridge: encode props: %w", err))
	}

	m, known := b.catalog.Lookup(method)
	if known && !m.Receive {
		// Fire and forget: no correlation bookkeeping.
		if err := b.transport.Deliver(ctx, wire.Message{Method: method, Props: raw}); err != nil {
			sendsTotal.WithLabelValues(method, "transport_error").Inc()
			return settledCall(method, nil, fmt.Errorf("bridge: deliver %s: %w", method, err))
		}
		sendsTotal.WithLabelValues(method, "ok").Inc()
		return settledCall(method, nil, nil)
	}

	resultEvent, failedEvent := wire.ResultEvent(method), wire.FailedEvent(method)
	if known {
		resultEvent, failedEvent = m.Events()
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	call := newCall(id, method)
	b.pending[id] = &pendingCall{
		call:        call,
		method:      method,
		resultEvent: resultEvent,
		failedEvent: failedEvent,
	}
	b.mu.Unlock()

	if err := b.transport.Deliver(ctx, wire.Message{Method: method, Props: raw, RequestID: id}); err != nil {
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
		sendsTotal.WithLabelValues(method, "transport_error").Inc()
		call.settle(nil, fmt.Errorf("bridge: deliver %s: %w", method, err))
		return call
	}
	sendsTotal.WithLabelValues(method, "ok").Inc()
	b.log.Debug().Str("method", method).Int64("request_id", id).Msg("sent")
	return call
}

// Supports reports whether the host platform carries the named method.
// Unknown names are unsupported.
func (b *Bridge) Supports(method string) bool {
	return b.catalog.IsSupported(method, b.info.Platform)
}

// IsWebView reports whether the bridge talks to a native webview shell
// rather than a parent frame.
func (b *Bridge) IsWebView() bool {
	return b.info.Kind == KindNative
}

// Platform returns the host platform identity captured at construction.
func (b *Bridge) Platform() string { return b.info.Platform }

func encodeProps(props any) (json.RawMessage, error) {
	switch v := props.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return v, nil
	default:
		return json.Marshal(props)
	}
}
