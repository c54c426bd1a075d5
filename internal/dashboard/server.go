// Package dashboard serves the read-side HTTP API and a WebSocket feed
// of record snapshots. Reads go through the layered reader, so the
// dashboard keeps working when the remote store is unreachable: the
// response says which source actually served it.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mvaghela/bizbook/internal/model"
	"github.com/mvaghela/bizbook/internal/reader"
)

// MessageType tags a WebSocket broadcast.
type MessageType string

const (
	// MessageTypeSnapshot carries a full record snapshot after the
	// underlying data changed.
	MessageTypeSnapshot MessageType = "snapshot"

	// MessageTypeHello is sent once on connect.
	MessageTypeHello MessageType = "hello"
)

// Message is a WebSocket broadcast envelope.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// SnapshotPayload is the /api/snapshot response and the snapshot
// broadcast body: the record set plus the source each collection was
// served from and the remote failure reason, if any.
type SnapshotPayload struct {
	Sales     []model.Sale      `json:"sales"`
	Customers []model.Customer  `json:"customers"`
	Vehicles  []model.Vehicle   `json:"vehicles"`
	Expenses  []model.Expense   `json:"expenses"`
	Reminders []model.Reminder  `json:"reminders"`
	Profile   *model.Profile    `json:"profile,omitempty"`
	Sources   map[string]string `json:"sources"`
	RemoteErr string            `json:"remoteError,omitempty"`
}

// Config holds server configuration.
type Config struct {
	Port   int
	Logger *slog.Logger
}

// Server owns the HTTP listener, the WebSocket clients, and the
// broadcast loop.
type Server struct {
	addr     string
	listener net.Listener
	server   *http.Server
	reader   *reader.Reader

	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex

	broadcast chan Message

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *slog.Logger
}

// NewServer creates a dashboard server backed by the given reader.
func NewServer(r *reader.Reader, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      fmt.Sprintf(":%d", cfg.Port),
		reader:    r,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Message, 100),
		ctx:       ctx,
		cancel:    cancel,
		logger:    cfg.Logger,
	}
}

// Start begins serving. Non-blocking; use Stop to shut down.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/snapshot", s.handleSnapshot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", s.handleRoot)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go s.broadcastLoop()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("dashboard listening", "addr", s.addr)
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("dashboard server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts the server down, closing every client.
func (s *Server) Stop() error {
	s.cancel()

	s.clientsMu.Lock()
	for conn := range s.clients {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(s.clients, conn)
	}
	s.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("dashboard shutdown error: %w", err)
	}

	s.wg.Wait()
	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// BroadcastSnapshot composes the current snapshot through the layered
// reader and pushes it to every connected client.
func (s *Server) BroadcastSnapshot(ctx context.Context) {
	payload := s.composeSnapshot(ctx)
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal snapshot payload", "error", err)
		return
	}
	s.send(Message{Type: MessageTypeSnapshot, Timestamp: time.Now(), Data: data})
}

func (s *Server) send(msg Message) {
	select {
	case s.broadcast <- msg:
	case <-s.ctx.Done():
	default:
		s.logger.Warn("broadcast channel full, dropping message")
	}
}

func (s *Server) broadcastLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Error("failed to marshal broadcast", "error", err)
				continue
			}

			s.clientsMu.RLock()
			clients := make([]*websocket.Conn, 0, len(s.clients))
			for conn := range s.clients {
				clients = append(clients, conn)
			}
			s.clientsMu.RUnlock()

			for _, conn := range clients {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				err := conn.Write(ctx, websocket.MessageText, data)
				cancel()
				if err != nil {
					s.removeClient(conn)
				}
			}
		}
	}
}

// composeSnapshot runs every collection through the layered reader and
// records where each one was served from. The last remote failure seen
// is reported for observability.
func (s *Server) composeSnapshot(ctx context.Context) *SnapshotPayload {
	payload := &SnapshotPayload{Sources: make(map[string]string)}

	var lastErr error
	note := func(name string, info reader.Info) {
		payload.Sources[name] = info.Source.String()
		if info.RemoteErr != nil {
			lastErr = info.RemoteErr
		}
	}

	var info reader.Info
	payload.Sales, info = s.reader.Sales(ctx)
	note(model.KindSale.Collection(), info)
	payload.Customers, info = s.reader.Customers(ctx)
	note(model.KindCustomer.Collection(), info)
	payload.Vehicles, info = s.reader.Vehicles(ctx)
	note(model.KindVehicle.Collection(), info)
	payload.Expenses, info = s.reader.Expenses(ctx)
	note(model.KindExpense.Collection(), info)
	payload.Reminders, info = s.reader.Reminders(ctx)
	note(model.KindReminder.Collection(), info)
	payload.Profile, info = s.reader.Profile(ctx)
	note(model.ProfileCollection, info)

	if lastErr != nil {
		payload.RemoteErr = lastErr.Error()
	}
	return payload
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	payload := s.composeSnapshot(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to write snapshot response", "error", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	total := len(s.clients)
	s.clientsMu.Unlock()
	s.logger.Info("dashboard client connected", "total", total)

	hello, _ := json.Marshal(Message{Type: MessageTypeHello, Timestamp: time.Now()})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = conn.Write(ctx, websocket.MessageText, hello)
	cancel()

	go s.readLoop(conn)
}

// readLoop keeps the connection alive; client messages are ignored.
func (s *Server) readLoop(conn *websocket.Conn) {
	defer s.removeClient(conn)
	for {
		if _, _, err := conn.Read(s.ctx); err != nil {
			return
		}
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	if _, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		total := len(s.clients)
		s.clientsMu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "")
		s.logger.Info("dashboard client disconnected", "total", total)
		return
	}
	s.clientsMu.Unlock()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.ClientCount(),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>Bizbook Dashboard</title>
</head>
<body>
    <h1>Bizbook Dashboard</h1>
    <p>Snapshot API: <a href="/api/snapshot">/api/snapshot</a></p>
    <p>WebSocket feed: <code>ws://%s/ws</code></p>
    <p>Health: <a href="/health">/health</a> &middot; Metrics: <a href="/metrics">/metrics</a></p>
</body>
</html>`, r.Host)
}
