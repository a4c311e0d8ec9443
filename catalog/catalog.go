// Package catalog describes the methods a host exposes: which direction they
// flow, which events answer them, which platforms carry them, and the shape
// of their props.
package catalog

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/webviewkit/bridge/wire"
)

// Method describes one entry of the host method catalogue.
//
// A method may be sendable (Request), may produce result events (Receive),
// or both. Receive-only entries with no request counterpart are push events:
// they arrive under their own name and correlate with nothing.
type Method struct {
	Name    string
	Request bool
	Receive bool

	// Event name overrides. When empty the <Name>Result / <Name>Failed
	// convention applies. Push events arrive under Name itself.
	ResultEvent string
	FailedEvent string

	// Platforms that carry the method. Empty means all platforms.
	Platforms []string

	// PropsSchema optionally constrains the props object. Enforced by
	// hosts, not by the sending side.
	PropsSchema *openapi3.Schema
}

// Events returns the success and failure event names answering this method.
func (m Method) Events() (result, failed string) {
	result = m.ResultEvent
	if result == "" {
		result = wire.ResultEvent(m.Name)
	}
	failed = m.FailedEvent
	if failed == "" {
		failed = wire.FailedEvent(m.Name)
	}
	return result, failed
}

// availableOn reports whether the method exists on the given platform.
func (m Method) availableOn(platform string) bool {
	if len(m.Platforms) == 0 {
		return true
	}
	for _, p := range m.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// Catalog is an immutable method catalogue built once at startup.
type Catalog struct {
	methods map[string]Method
}

// New builds a catalogue from the given methods. Later duplicates win.
func New(methods ...Method) *Catalog {
	c := &Catalog{methods: make(map[string]Method, len(methods))}
	for _, m := range methods {
		c.methods[m.Name] = m
	}
	return c
}

// Lookup returns the descriptor for a method name.
func (c *Catalog) Lookup(name string) (Method, bool) {
	m, ok := c.methods[name]
	return m, ok
}

// IsSupported reports whether the named method is available on the given
// platform. Unknown names are unsupported.
func (c *Catalog) IsSupported(name, platform string) bool {
	m, ok := c.methods[name]
	if !ok {
		return false
	}
	return m.availableOn(platform)
}

// Names returns all catalogued method names in unspecified order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.methods))
	for name := range c.methods {
		out = append(out, name)
	}
	return out
}
