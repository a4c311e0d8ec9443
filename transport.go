package bridge

import (
	"context"

	"github.com/webviewkit/bridge/wire"
)

// Kind tells how the connection to the host was established.
type Kind string

const (
	// KindNative means a native bridge object (mobile shell, desktop
	// wrapper) carries the messages.
	KindNative Kind = "native"
	// KindWeb means messages travel to a parent frame.
	KindWeb Kind = "web"
)

// Info is the host identity a transport determines once at initialization.
type Info struct {
	Kind     Kind
	Platform string
}

// Transport carries messages to the host and feeds inbound events back.
// Implementations live outside the engine; see transport/memtransport and
// transport/wstransport.
type Transport interface {
	// Deliver hands an outbound message to the host. Best effort: a nil
	// return means the message was accepted for delivery, not that the
	// host will answer.
	Deliver(ctx context.Context, msg wire.Message) error

	// OnEvent registers the sole feed of inbound events. The transport
	// must invoke the callback from a single goroutine, one event at a
	// time, in arrival order.
	OnEvent(fn func(wire.Envelope))

	// Info reports how the transport was established.
	Info() Info
}
