package bridge

import "github.com/webviewkit/bridge/wire"

// Listener receives every inbound event, correlated or not. Listener values
// are compared by identity for Unsubscribe, so use pointer-backed
// implementations.
type Listener interface {
	HandleEvent(wire.Envelope)
}

// ListenerFunc adapts a function to the Listener interface. Take its address
// when subscribing so the value stays comparable:
//
//	l := bridge.ListenerFunc(func(e wire.Envelope) { ... })
//	b.Subscribe(&l)
//	defer b.Unsubscribe(&l)
type ListenerFunc func(wire.Envelope)

func (f *ListenerFunc) HandleEvent(e wire.Envelope) { (*f)(e) }

// Subscribe adds a listener. Subscribing the same listener twice produces
// duplicate deliveries; the dispatcher does not de-duplicate.
func (b *Bridge) Subscribe(l Listener) {
	b.mu.Lock()
	b.listeners = append(b.listeners, l)
	b.mu.Unlock()
}

// Unsubscribe removes the first occurrence of the listener. Removing a
// listener that is not subscribed is a no-op.
func (b *Bridge) Unsubscribe(l Listener) {
	b.mu.Lock()
	for i, cur := range b.listeners {
		if cur == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
}

// broadcast delivers an event to every listener subscribed at the moment of
// arrival, in subscription order. The snapshot keeps listeners that
// subscribe or unsubscribe during dispatch from affecting this delivery
// round, and a panicking listener never blocks the rest.
func (b *Bridge) broadcast(env wire.Envelope) {
	b.mu.Lock()
	snapshot := make([]Listener, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()

	for _, l := range snapshot {
		b.deliver(l, env)
	}
}

func (b *Bridge) deliver(l Listener, env wire.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			listenerPanicsTotal.Inc()
			b.log.Debug().Str("event", env.Type).Interface("panic", r).Msg("listener panic")
		}
	}()
	l.HandleEvent(env)
}
