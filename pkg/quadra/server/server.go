// Package server exposes the integration engine over WebSocket and HTTP.
// It is a thin transport adapter: every inbound request is decoded into a
// quadra.Request, handed to quadra.Handle, and answered with the result or
// error envelope. The adapter owns connection lifecycle and broadcasting;
// the engine stays stateless.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/quadra-io/quadra/internal"
	"github.com/quadra-io/quadra/pkg/quadra"
)

// Config holds the transport settings.
type Config struct {
	Port          int
	AllowedOrigin string // UI origin permitted by CORS and the upgrader
	MaxClients    int    // Limit on concurrent WebSocket connections
}

// Server serves the WebSocket endpoint, the REST fallback, and the
// operational endpoints (/health, /stats).
type Server struct {
	cfg      Config
	server   *http.Server
	upgrader websocket.Upgrader

	clients      map[*client]bool
	clientsMutex sync.RWMutex

	metrics *RequestMetrics
	stop    chan struct{}
	log     *internal.Logger
}

// client wraps one WebSocket connection. The mutex serializes writes:
// gorilla/websocket supports at most one concurrent writer per connection.
type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(v)
}

// envelope is the outbound wire frame: {"type":"result","data":...},
// {"type":"update","data":...}, or {"type":"error","message":...}.
type envelope struct {
	Type    string      `json:"type"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// NewServer creates a server with the given configuration.
func NewServer(cfg Config, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = 100
	}

	s := &Server{
		cfg:     cfg,
		clients: make(map[*client]bool),
		metrics: NewRequestMetrics(),
		stop:    make(chan struct{}),
		log:     logger,
	}

	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // Allow requests without Origin header
			}
			return origin == cfg.AllowedOrigin ||
				origin == fmt.Sprintf("http://localhost:%d", cfg.Port) ||
				origin == fmt.Sprintf("http://127.0.0.1:%d", cfg.Port)
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	return s
}

// Handler builds the HTTP routing table. Exposed separately from Start so
// tests can mount it on an httptest server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.metrics.Middleware)
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Post("/integrate", s.handleIntegrate)
	r.Get("/ws", s.handleWebSocket)

	return r
}

// Start begins serving and blocks until the listener fails or the server
// is stopped.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Info("quadra server listening on :%d", s.cfg.Port)
	return s.server.ListenAndServe()
}

// Stop shuts the server down, closing open WebSocket connections.
func (s *Server) Stop() error {
	close(s.stop)
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin == s.cfg.AllowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "numerical-integration",
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.GetStats())
}

// handleIntegrate is the REST fallback for clients without a WebSocket.
func (s *Server) handleIntegrate(w http.ResponseWriter, r *http.Request) {
	var req quadra.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Type: "error", Message: "invalid request body"})
		return
	}

	result, err := quadra.Handle(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Type: "error", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Check client limit before upgrading
	s.clientsMutex.RLock()
	clientCount := len(s.clients)
	s.clientsMutex.RUnlock()

	if clientCount >= s.cfg.MaxClients {
		http.Error(w, "Maximum clients reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &client{id: uuid.NewString(), conn: conn}

	s.clientsMutex.Lock()
	s.clients[c] = true
	total := len(s.clients)
	s.clientsMutex.Unlock()
	s.log.Info("client %s connected (%d total)", c.id, total)

	defer func() {
		s.clientsMutex.Lock()
		delete(s.clients, c)
		total := len(s.clients)
		s.clientsMutex.Unlock()
		s.log.Info("client %s disconnected (%d total)", c.id, total)
	}()

	// Set connection timeouts and handlers
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Keep connection alive with ping messages until the reader returns
	// or the server shuts down.
	readDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.mu.Lock()
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				c.mu.Unlock()
				if err != nil {
					return
				}
			case <-readDone:
				return
			case <-s.stop:
				c.mu.Lock()
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				c.mu.Unlock()
				conn.Close()
				return
			}
		}
	}()
	defer close(readDone)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				s.log.Warn("client %s read error: %v", c.id, err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		s.handleMessage(c, data)
	}
}

// handleMessage processes one inbound frame. Frames that do not look like
// an integration request are ignored without a response; requests that
// fail validation or evaluation get an error envelope, and the connection
// stays open either way.
func (s *Server) handleMessage(c *client, data []byte) {
	var req quadra.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return // not a request shape: ignore
	}
	if strings.TrimSpace(req.Function) == "" && req.Method == "" {
		return // unknown message shape: ignore
	}

	start := time.Now()
	result, err := quadra.Handle(req)
	s.metrics.Observe(time.Since(start), err != nil)

	if err != nil {
		if werr := c.writeJSON(envelope{Type: "error", Message: err.Error()}); werr != nil {
			s.log.Warn("client %s write error: %v", c.id, werr)
		}
		return
	}

	if werr := c.writeJSON(envelope{Type: "result", Data: result}); werr != nil {
		s.log.Warn("client %s write error: %v", c.id, werr)
		return
	}

	// Every connected client sees parameter changes as they happen.
	s.broadcast(envelope{Type: "update", Data: result})
}

// broadcast sends a message to all connected clients, dropping the ones
// whose writes fail.
func (s *Server) broadcast(message envelope) {
	s.clientsMutex.RLock()
	if len(s.clients) == 0 {
		s.clientsMutex.RUnlock()
		return
	}

	clientsCopy := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clientsCopy = append(clientsCopy, c)
	}
	s.clientsMutex.RUnlock()

	var failed []*client
	for _, c := range clientsCopy {
		if err := c.writeJSON(message); err != nil {
			c.conn.Close()
			failed = append(failed, c)
		}
	}

	if len(failed) > 0 {
		s.clientsMutex.Lock()
		for _, c := range failed {
			delete(s.clients, c)
		}
		s.clientsMutex.Unlock()
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
