package preview

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"site-builder-backend/internal/builder"
	"site-builder-backend/internal/models"
	"site-builder-backend/pkg/logger"
)

const (
	defaultWriteTimeout = 5 * time.Second
	defaultPingInterval = 30 * time.Second
	maxMessageSize      = 4096
)

// Frame is what a preview client receives on connect and after every state
// change of the session it watches.
type Frame struct {
	SessionID         string             `json:"sessionId"`
	Mode              builder.Mode       `json:"mode"`
	PreviewMode       bool               `json:"previewMode"`
	IsDirty           bool               `json:"isDirty"`
	SelectedSectionID string             `json:"selectedSectionId,omitempty"`
	Page              *models.PageConfig `json:"page"`
}

// NewFrame projects a builder state for viewers: hidden sections are left
// out while previewing.
func NewFrame(sessionID string, state builder.State) Frame {
	return Frame{
		SessionID:         sessionID,
		Mode:              state.Mode(),
		PreviewMode:       state.PreviewMode,
		IsDirty:           state.IsDirty,
		SelectedSectionID: state.SelectedSectionID,
		Page:              state.Projection(),
	}
}

// Source is the state a preview connection follows. *builder.Store
// implements it.
type Source interface {
	ID() string
	State() builder.State
	Subscribe(listener builder.Listener) func()
}

var (
	metricsOnce       sync.Once
	activeConnections prometheus.Gauge
)

func initMetrics() {
	metricsOnce.Do(func() {
		activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "site_builder",
			Subsystem: "preview",
			Name:      "connections",
			Help:      "Open live preview websocket connections",
		})
	})
}

// Hub serves live preview websockets.
type Hub struct {
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	pingInterval time.Duration

	mu      sync.Mutex
	clients map[*client]struct{}
}

// Option configures a Hub.
type Option func(*Hub)

// WithAllowedOrigins restricts upgrades to the given origins. Without it
// every origin is accepted.
func WithAllowedOrigins(origins []string) Option {
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		allowed[origin] = struct{}{}
	}
	return func(h *Hub) {
		if len(allowed) == 0 {
			return
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		}
	}
}

// WithPingInterval sets how often idle connections are pinged.
func WithPingInterval(interval time.Duration) Option {
	return func(h *Hub) {
		if interval > 0 {
			h.pingInterval = interval
		}
	}
}

func NewHub(opts ...Option) *Hub {
	initMetrics()

	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		writeTimeout: defaultWriteTimeout,
		pingInterval: defaultPingInterval,
		clients:      make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type client struct {
	conn    *websocket.Conn
	updates chan Frame
	done    chan struct{}
	once    sync.Once
}

// push queues frame, replacing a frame the writer has not sent yet. Only
// the latest state matters to a viewer and the store must never block on a
// slow connection.
func (c *client) push(frame Frame) {
	for {
		select {
		case <-c.done:
			return
		case c.updates <- frame:
			return
		default:
		}
		select {
		case <-c.updates:
		default:
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Serve upgrades the request and streams frames of source until the client
// disconnects or the hub closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, source Source) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		conn:    conn,
		updates: make(chan Frame, 1),
		done:    make(chan struct{}),
	}
	h.register(c)
	defer h.unregister(c)

	sessionID := source.ID()
	c.push(NewFrame(sessionID, source.State()))
	unsubscribe := source.Subscribe(func(state builder.State) {
		c.push(NewFrame(sessionID, state))
	})
	defer unsubscribe()

	logger.Debug("Preview client connected", map[string]interface{}{"session_id": sessionID})

	go h.writeLoop(c)
	h.readLoop(c)

	logger.Debug("Preview client disconnected", map[string]interface{}{"session_id": sessionID})
	return nil
}

// readLoop discards client messages; it only exists to notice the close.
func (h *Hub) readLoop(c *client) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.close()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.updates:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	activeConnections.Inc()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		activeConnections.Dec()
	}
	h.mu.Unlock()
}

// Connections returns the number of open preview connections.
func (h *Hub) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.close()
	}
}
