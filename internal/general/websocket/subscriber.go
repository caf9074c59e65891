package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout   = 5 * time.Second
	wsCloseAckWindow = 2 * time.Second
	ctrlTimeout      = 5 * time.Second
	pingPeriod       = 30 * time.Second
	pongWait         = 60 * time.Second
)

// Subscriber is one live broadcast recipient.
type Subscriber interface {
	ID() string
	Send(ctx context.Context, payload []byte) error
	Close() error
}

// connSubscriber wraps a gorilla connection. gorilla allows one concurrent
// writer, so data frames and pings share mu.
type connSubscriber struct {
	id        string
	conn      *websocket.Conn
	mu        sync.Mutex
	closeOnce sync.Once
}

func newConnSubscriber(conn *websocket.Conn) *connSubscriber {
	return &connSubscriber{id: uuid.NewString(), conn: conn}
}

func (s *connSubscriber) ID() string { return s.id }

// Send writes one text frame. The write deadline is the shorter of
// wsWriteTimeout and the ctx deadline.
func (s *connSubscriber) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline := time.Now().Add(wsWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(deadline)
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *connSubscriber) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctrlTimeout))
}

// Close sends a best-effort close frame and closes the socket. Safe to call
// more than once and concurrently with Send.
func (s *connSubscriber) Close() error {
	var err error
	s.closeOnce.Do(func() {
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye"),
			time.Now().Add(wsCloseAckWindow),
		)
		err = s.conn.Close()
	})
	return err
}
