package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/mpsfluid/internal/mps"
	"github.com/san-kum/mpsfluid/internal/sim"
)

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 1024
)

// Controller receives control messages from clients. *sim.Runner satisfies it.
type Controller interface {
	Apply(c sim.Control)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshots out to every connected websocket client.
type Hub struct {
	view     mps.Bounds
	ctrl     Controller
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func NewHub(view mps.Bounds, ctrl Controller) *Hub {
	return &Hub{
		view:   view,
		ctrl:   ctrl,
		logger: slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) SetLogger(l *slog.Logger) { h.logger = l }

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// OnTick encodes the snapshot once and queues it for every client. A client
// still busy with the previous frame gets this one in its place.
func (h *Hub) OnTick(snap *mps.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}
	msg, err := json.Marshal(NewFrame(snap, h.view))
	if err != nil {
		h.logger.Error("encoding frame", "step", snap.Step, "err", err)
		return
	}
	for c := range h.clients {
		select {
		case c.send <- msg:
			continue
		default:
		}
		select {
		case <-c.send:
		default:
		}
		select {
		case c.send <- msg:
		default:
		}
	}
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		var hs websocket.HandshakeError
		if !errors.As(err, &hs) {
			h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		}
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 1)}
	if !h.register(c) {
		conn.Close()
		return
	}
	h.logger.Info("client connected", "remote", r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)
	h.logger.Info("client disconnected", "remote", r.RemoteAddr)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump turns inbound messages into control values. Malformed messages
// are logged and dropped.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read", "err", err)
			}
			return
		}
		var ctl sim.Control
		if err := json.Unmarshal(data, &ctl); err != nil {
			h.logger.Warn("dropping control message", "err", err)
			continue
		}
		if h.ctrl != nil {
			h.ctrl.Apply(ctl)
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Warn("websocket write", "err", err)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// Handler mounts the hub on /ws. When root is non-empty the directory is
// served as static files at /.
func Handler(h *Hub, root string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	if root != "" {
		mux.Handle("/", http.FileServer(http.Dir(root)))
	}
	return mux
}

// ListenAndServe serves handler on addr until ctx is done, then shuts the
// server down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr: addr,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("request", "remote", r.RemoteAddr, "method", r.Method, "url", r.URL.String())
			handler.ServeHTTP(w, r)
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("serving", "addr", addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
