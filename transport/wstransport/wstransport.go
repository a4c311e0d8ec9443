// Package wstransport connects a bridge to a host endpoint over a
// websocket. The client opens the socket, sends a register frame, and the
// host answers with an ack declaring its identity; after that the socket
// carries outbound wire.Message frames and inbound wire.Envelope frames.
//
// A dropped socket reconnects in the background with backoff. Pending calls
// on the bridge are unaffected: they stay pending until their events arrive.
package wstransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/webviewkit/bridge"
	"github.com/webviewkit/bridge/internal/reconnect"
	"github.com/webviewkit/bridge/wire"
)

const writeTimeout = 2 * time.Second

// Config configures a websocket transport.
type Config struct {
	// URL of the host endpoint, ws:// or wss://.
	URL string
	// ClientName is reported to the host during the handshake.
	ClientName string
	// ClientKey authenticates against hosts that require one.
	ClientKey string
	// Logger receives connection traces. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Transport implements bridge.Transport over a websocket connection.
type Transport struct {
	cfg      Config
	log      zerolog.Logger
	clientID string
	info     bridge.Info

	mu     sync.Mutex
	conn   *websocket.Conn
	fn     func(wire.Envelope)
	closed bool

	done chan struct{}
}

// Dial connects, performs the register handshake, and starts the read pump.
func Dial(ctx context.Context, cfg Config) (*Transport, error) {
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	t := &Transport{
		cfg:      cfg,
		log:      log,
		clientID: uuid.NewString(),
		done:     make(chan struct{}),
	}
	conn, ack, err := t.connect(ctx)
	if err != nil {
		return nil, err
	}
	t.conn = conn
	t.info = infoFromAck(ack)
	go t.readPump()
	return t, nil
}

func infoFromAck(ack wire.Ack) bridge.Info {
	info := bridge.Info{Kind: bridge.KindWeb, Platform: "web"}
	if ack.Kind == string(bridge.KindNative) {
		info.Kind = bridge.KindNative
	}
	if ack.Platform != "" {
		info.Platform = ack.Platform
	}
	return info
}

func (t *Transport) connect(ctx context.Context) (*websocket.Conn, wire.Ack, error) {
	conn, _, err := websocket.Dial(ctx, t.cfg.URL, nil)
	if err != nil {
		return nil, wire.Ack{}, fmt.Errorf("wstransport: dial %s: %w", t.cfg.URL, err)
	}
	reg, _ := json.Marshal(wire.Register{ID: t.clientID, ClientName: t.cfg.ClientName, ClientKey: t.cfg.ClientKey})
	if err := conn.Write(ctx, websocket.MessageText, reg); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "register failed")
		return nil, wire.Ack{}, fmt.Errorf("wstransport: register: %w", err)
	}
	_, data, err := conn.Read(ctx)
	if err != nil {
		_ = conn.Close(websocket.StatusInternalError, "ack failed")
		return nil, wire.Ack{}, fmt.Errorf("wstransport: read ack: %w", err)
	}
	var ack wire.Ack
	if err := json.Unmarshal(data, &ack); err != nil {
		_ = conn.Close(websocket.StatusPolicyViolation, "invalid ack")
		return nil, wire.Ack{}, fmt.Errorf("wstransport: decode ack: %w", err)
	}
	return conn, ack, nil
}

// Deliver sends one outbound message. Fails when the transport is closed or
// currently between reconnect attempts.
func (t *Transport) Deliver(ctx context.Context, msg wire.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	t.mu.Lock()
	conn := t.conn
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return errors.New("wstransport: closed")
	}
	if conn == nil {
		return errors.New("wstransport: not connected")
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, b)
}

// OnEvent registers the inbound event feed. Events read before a callback
// is registered are discarded.
func (t *Transport) OnEvent(fn func(wire.Envelope)) {
	t.mu.Lock()
	t.fn = fn
	t.mu.Unlock()
}

// Info reports the identity the host declared in its ack.
func (t *Transport) Info() bridge.Info { return t.info }

// Close shuts the connection down and stops reconnecting.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()
	close(t.done)
	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "closing")
	}
	return nil
}

// readPump reads envelopes off the socket and hands them to the bridge one
// at a time, reconnecting with backoff when the socket drops.
func (t *Transport) readPump() {
	for {
		t.mu.Lock()
		conn := t.conn
		t.mu.Unlock()
		if conn == nil {
			return
		}
		if !t.readLoop(conn) {
			return
		}
		if !t.redial() {
			return
		}
	}
}

// readLoop consumes one connection until it fails. Returns false when the
// transport is closed for good.
func (t *Transport) readLoop(conn *websocket.Conn) bool {
	for {
		_, data, err := conn.Read(context.Background())
		if err != nil {
			t.mu.Lock()
			closed := t.closed
			t.mu.Unlock()
			if closed {
				return false
			}
			t.log.Warn().Err(err).Msg("connection lost")
			return true
		}
		var env wire.Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
			continue
		}
		t.mu.Lock()
		fn := t.fn
		t.mu.Unlock()
		if fn != nil {
			fn(env)
		}
	}
}

func (t *Transport) redial() bool {
	for attempt := 0; ; attempt++ {
		select {
		case <-t.done:
			return false
		case <-time.After(reconnect.Delay(attempt)):
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		conn, _, err := t.connect(ctx)
		cancel()
		if err != nil {
			t.log.Warn().Err(err).Int("attempt", attempt).Msg("reconnect failed")
			continue
		}
		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			_ = conn.Close(websocket.StatusNormalClosure, "closing")
			return false
		}
		t.conn = conn
		t.mu.Unlock()
		t.log.Info().Int("attempt", attempt).Msg("reconnected")
		return true
	}
}
