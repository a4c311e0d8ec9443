package bridge

import (
	"context"
	"encoding/json"
)

// Call is a pending method invocation. It settles at most once, when the
// host's result or failure event is matched back to it. A call whose event
// never arrives stays pending forever; waiting with a context is how callers
// apply their own timeout policy.
type Call struct {
	id     int64
	method string

	done chan struct{}
	data json.RawMessage
	err  error
}

func newCall(id int64, method string) *Call {
	return &Call{id: id, method: method, done: make(chan struct{})}
}

func settledCall(method string, data json.RawMessage, err error) *Call {
	c := &Call{method: method, data: data, err: err, done: make(chan struct{})}
	close(c.done)
	return c
}

// settle publishes the outcome. The correlation engine guarantees it is
// invoked at most once per call: the pending entry is removed before settle
// runs.
func (c *Call) settle(data json.RawMessage, err error) {
	c.data = data
	c.err = err
	close(c.done)
}

// Method returns the method name this call invoked.
func (c *Call) Method() string { return c.method }

// RequestID returns the correlation id, or zero for uncorrelated calls.
func (c *Call) RequestID() int64 { return c.id }

// Done is closed when the call settles.
func (c *Call) Done() <-chan struct{} { return c.done }

// Result waits for settlement. On a failure event the error is a
// *wire.ErrorPayload. A cancelled context abandons the wait but leaves the
// call outstanding; a later matching event still settles it.
func (c *Call) Result(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-c.done:
		return c.data, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
