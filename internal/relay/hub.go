package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Viewer sessions are unauthenticated; the hub never trusts
	// client-sent data, it only pushes commands out.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub is the command channel: the set of open viewer sessions plus a
// broadcast primitive. One hub binds one listening endpoint per process.
type Hub struct {
	addr string

	mu       sync.RWMutex
	sessions map[*Session]bool

	startMu sync.Mutex
	started bool
	server  *http.Server
}

func NewHub(addr string) *Hub {
	return &Hub{
		addr:     addr,
		sessions: make(map[*Session]bool),
	}
}

// Start binds the WebSocket endpoint. It is idempotent: a second call, or
// a bind conflict with an already-running listener in this process, reuses
// the existing instance and only logs.
func (h *Hub) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	if h.started {
		log.Debug().Str("addr", h.addr).Msg("relay already started, reusing listener")
		return nil
	}

	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			log.Warn().Str("addr", h.addr).Msg("relay port already in use, assuming listener is running")
			h.started = true
			return nil
		}
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.serveWS)

	h.server = &http.Server{Handler: mux}
	h.started = true

	srv := h.server
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("relay server error")
		}
	}()

	log.Info().Str("addr", h.addr).Msg("relay listening")
	return nil
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	session := newSession(conn)
	h.Register(session)

	go h.writeLoop(session)
	go h.readLoop(session)
}

// Register adds a session to the open set.
func (h *Hub) Register(session *Session) {
	h.mu.Lock()
	h.sessions[session] = true
	count := len(h.sessions)
	h.mu.Unlock()

	log.Info().Int("clientCount", count).Msg("viewer connected")
}

// Unregister removes a session on close or error. Safe to call repeatedly.
func (h *Hub) Unregister(session *Session) {
	h.mu.Lock()
	_, present := h.sessions[session]
	if present {
		delete(h.sessions, session)
	}
	count := len(h.sessions)
	h.mu.Unlock()

	if present {
		session.close()
		log.Info().Int("clientCount", count).Msg("viewer disconnected")
	}
}

// Broadcast serializes message once and sends it to every open session.
// Sessions that fail or are mid-close are skipped; there is no retry and
// no delivery confirmation.
func (h *Hub) Broadcast(message any) {
	payload, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal broadcast message")
		return
	}

	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for session := range h.sessions {
		sessions = append(sessions, session)
	}
	h.mu.RUnlock()

	sent := 0
	for _, session := range sessions {
		if !session.Open() {
			continue
		}
		if err := session.Send(payload); err != nil {
			log.Debug().Err(err).Msg("dropping stale session from broadcast")
			h.Unregister(session)
			continue
		}
		sent++
	}

	log.Info().Int("clientCount", len(sessions)).Int("sent", sent).Msg("broadcast")
}

// ClientCount returns the number of open sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// readLoop drains inbound frames so pongs and close frames are processed.
// Viewers never send application data; anything received is discarded.
func (h *Hub) readLoop(session *Session) {
	defer h.Unregister(session)

	session.conn.SetReadLimit(1024)
	session.conn.SetReadDeadline(time.Now().Add(pongWait))
	session.conn.SetPongHandler(func(string) error {
		return session.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := session.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(session *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.Unregister(session)
	}()

	for range ticker.C {
		if err := session.ping(); err != nil {
			return
		}
	}
}

// Close shuts the listener down and drops every session.
func (h *Hub) Close() {
	h.startMu.Lock()
	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		h.server.Shutdown(ctx)
		cancel()
		h.server = nil
	}
	h.started = false
	h.startMu.Unlock()

	h.mu.Lock()
	for session := range h.sessions {
		session.close()
	}
	h.sessions = make(map[*Session]bool)
	h.mu.Unlock()
}
