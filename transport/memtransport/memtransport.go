// Package memtransport provides an in-memory loopback transport. Tests and
// examples script the host side directly: Sent exposes delivered messages
// and Emit injects inbound events.
package memtransport

import (
	"context"
	"sync"

	"github.com/webviewkit/bridge"
	"github.com/webviewkit/bridge/wire"
)

// Transport implements bridge.Transport entirely in memory.
type Transport struct {
	info bridge.Info

	mu         sync.Mutex
	fn         func(wire.Envelope)
	sent       []wire.Message
	deliverErr error
	script     func(wire.Message)
}

// New builds a loopback transport reporting the given identity.
func New(info bridge.Info) *Transport {
	return &Transport{info: info}
}

func (t *Transport) Deliver(_ context.Context, msg wire.Message) error {
	t.mu.Lock()
	if err := t.deliverErr; err != nil {
		t.mu.Unlock()
		return err
	}
	t.sent = append(t.sent, msg)
	script := t.script
	t.mu.Unlock()
	if script != nil {
		script(msg)
	}
	return nil
}

func (t *Transport) OnEvent(fn func(wire.Envelope)) {
	t.mu.Lock()
	t.fn = fn
	t.mu.Unlock()
}

func (t *Transport) Info() bridge.Info { return t.info }

// Emit injects an inbound event, as if the host had pushed it.
func (t *Transport) Emit(env wire.Envelope) {
	t.mu.Lock()
	fn := t.fn
	t.mu.Unlock()
	if fn != nil {
		fn(env)
	}
}

// Sent returns a copy of every message delivered so far.
func (t *Transport) Sent() []wire.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]wire.Message, len(t.sent))
	copy(out, t.sent)
	return out
}

// Last returns the most recently delivered message.
func (t *Transport) Last() (wire.Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sent) == 0 {
		return wire.Message{}, false
	}
	return t.sent[len(t.sent)-1], true
}

// FailDeliveries makes subsequent Deliver calls return err. Pass nil to
// restore normal delivery.
func (t *Transport) FailDeliveries(err error) {
	t.mu.Lock()
	t.deliverErr = err
	t.mu.Unlock()
}

// Script installs a host-side hook invoked synchronously for every
// delivered message.
func (t *Transport) Script(fn func(wire.Message)) {
	t.mu.Lock()
	t.script = fn
	t.mu.Unlock()
}
