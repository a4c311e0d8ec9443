// Package hostsim is a development stand-in for a real webview host. It
// accepts bridge connections over websocket, answers a small set of methods,
// and can push method-like events to every connected client.
package hostsim

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/webviewkit/bridge/catalog"
	"github.com/webviewkit/bridge/wire"
)

// Profile is the canned user the simulator reports for user info requests.
type Profile struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Config configures the simulator.
type Config struct {
	// ClientKey, when set, must be presented in the register frame.
	ClientKey string
	// Kind and Platform are the identity announced in the ack.
	Kind     string
	Platform string
	// User answers VKWebAppGetUserInfo.
	User Profile
}

// Server simulates a host. Storage methods are backed by redis.
type Server struct {
	cfg Config
	cat *catalog.Catalog
	rdb *redis.Client
	log zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// New builds a simulator over the given catalogue and redis client.
func New(cfg Config, cat *catalog.Catalog, rdb *redis.Client, log zerolog.Logger) *Server {
	if cfg.Kind == "" {
		cfg.Kind = "native"
	}
	if cfg.Platform == "" {
		cfg.Platform = catalog.PlatformIOS
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &Server{cfg: cfg, cat: cat, rdb: rdb, log: log, sessions: map[string]*session{}}
}

// Router returns the HTTP surface: the bridge endpoint, a push-event admin
// hook, metrics and health.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))
	r.Get("/bridge/connect", s.handleConnect)
	r.Post("/push", s.handlePush)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

type session struct {
	id   string
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *session) write(ctx context.Context, env wire.Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Write(ctx, websocket.MessageText, b)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	ctx := r.Context()
	_, data, err := conn.Read(ctx)
	if err != nil {
		_ = conn.Close(websocket.StatusPolicyViolation, "expected register")
		return
	}
	var reg wire.Register
	if err := json.Unmarshal(data, &reg); err != nil {
		_ = conn.Close(websocket.StatusPolicyViolation, "invalid register")
		return
	}
	if s.cfg.ClientKey != "" && reg.ClientKey != s.cfg.ClientKey {
		_ = conn.Close(websocket.StatusPolicyViolation, "unauthorized")
		return
	}
	clientID := reg.ID
	if clientID == "" {
		clientID = uuid.NewString()
	}
	ack, _ := json.Marshal(wire.Ack{ID: clientID, Kind: s.cfg.Kind, Platform: s.cfg.Platform})
	if err := conn.Write(ctx, websocket.MessageText, ack); err != nil {
		return
	}
	sess := &session{id: clientID, conn: conn}
	s.mu.Lock()
	s.sessions[clientID] = sess
	s.mu.Unlock()
	s.log.Info().Str("client_id", clientID).Str("client_name", reg.ClientName).Msg("bridge client connected")

	defer func() {
		s.mu.Lock()
		delete(s.sessions, clientID)
		s.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "closing")
		s.log.Info().Str("client_id", clientID).Msg("bridge client disconnected")
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var msg wire.Message
		if json.Unmarshal(data, &msg) != nil || msg.Method == "" {
			continue
		}
		env, reply := s.invoke(ctx, sess, msg)
		if !reply {
			continue
		}
		if err := sess.write(ctx, env); err != nil {
			return
		}
	}
}

// handlePush broadcasts a method-like event to every connected client. The
// body is the envelope to deliver.
func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	var env wire.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil || env.Type == "" {
		http.Error(w, "invalid event", http.StatusBadRequest)
		return
	}
	n := s.Broadcast(r.Context(), env)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"delivered": n})
}

// Broadcast pushes an event to all connected clients and returns how many
// received it.
func (s *Server) Broadcast(ctx context.Context, env wire.Envelope) int {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, c := range s.sessions {
		sessions = append(sessions, c)
	}
	s.mu.Unlock()
	n := 0
	for _, c := range sessions {
		if c.write(ctx, env) == nil {
			n++
		}
	}
	return n
}
