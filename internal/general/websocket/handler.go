package websocket

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"fleet-tracker/internal/domain/user"
	"fleet-tracker/internal/general/jwt"
	"fleet-tracker/internal/general/logger"
)

// Handler serves the dashboard broadcast endpoint.
type Handler struct {
	registry *Registry
	logger   *logger.Logger
	jwtMgr   *jwt.Manager // nil disables the handshake token check
	upgrader websocket.Upgrader
}

// NewHandler builds the upgrade handler. An empty allowedOrigins accepts any Origin.
func NewHandler(registry *Registry, log *logger.Logger, jwtMgr *jwt.Manager, allowedOrigins []string) *Handler {
	return &Handler{
		registry: registry,
		logger:   log,
		jwtMgr:   jwtMgr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// Connect upgrades the request, registers the connection and blocks until the
// client goes away. Inbound frames are read only to notice disconnects.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// 1) Token check happens before the upgrade so a plain 401/403 can be returned
	if h.jwtMgr != nil {
		if _, err := jwt.Authorize(r, h.jwtMgr, user.RoleDashboard, user.RoleAdmin); err != nil {
			h.logger.Error(ctx, "ws_auth_failed", "Rejected dashboard handshake", err, nil)
			http.Error(w, err.Error(), jwt.StatusFor(err))
			return
		}
	}

	// 2) Upgrade HTTP -> WS
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(ctx, "websocket_upgrade_failed", "Failed to upgrade to WebSocket", err, nil)
		return
	}

	sub := newConnSubscriber(conn)
	// Teardown order (LIFO on return): unregister first, then close the socket
	defer sub.Close()
	defer h.registry.Unregister(sub)

	if !h.registry.Register(sub) {
		h.logger.Warn(ctx, "ws_rejected_shutdown", "Dropped a handshake that finished during shutdown", map[string]any{
			"subscriber_id": sub.ID(),
		})
		return
	}
	h.logger.Info(ctx, "ws_connected", "Dashboard subscriber connected", map[string]any{
		"subscriber_id": sub.ID(),
		"remote_addr":   r.RemoteAddr,
		"subscribers":   h.registry.Len(),
	})

	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(_ string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// 3) Ping loop shares the subscriber's writer lock
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := sub.ping(); err != nil {
					// closing the socket unblocks the reader below
					_ = sub.Close()
					return
				}
			}
		}
	}()

	// 4) Read loop: discard everything, exit on disconnect
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				h.logger.Error(ctx, "ws_unexpected_close", "Subscriber connection closed unexpectedly", err, map[string]any{
					"subscriber_id": sub.ID(),
				})
			} else {
				h.logger.Info(ctx, "ws_connection_closed", "Subscriber connection closed", map[string]any{
					"subscriber_id": sub.ID(),
				})
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
