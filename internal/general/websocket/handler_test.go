package websocket

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-tracker/internal/domain/user"
	"fleet-tracker/internal/general/jwt"
	"fleet-tracker/internal/general/logger"
)

const (
	timeout = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func newTestServer(t *testing.T, mgr *jwt.Manager, origins []string) (*Registry, *httptest.Server) {
	t.Helper()
	log := logger.NewWithWriter("test", io.Discard, "debug")
	reg := NewRegistry(log, 4)
	h := NewHandler(reg, log, mgr, origins)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", h.Connect)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		reg.CloseAll()
		srv.Close()
	})
	return reg, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHandler_RoundTrip(t *testing.T) {
	reg, srv := newTestServer(t, nil, nil)

	conn, _, err := gorilla.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return reg.Len() == 1 }, timeout, tick)

	// inbound frames are ignored
	require.NoError(t, conn.WriteMessage(gorilla.TextMessage, []byte(`{"hello":"server"}`)))

	payload := []byte(`{"type":"truck_positions","data":[]}`)
	res := reg.Broadcast(context.Background(), payload)
	assert.Equal(t, 1, res.Delivered)

	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	mt, got, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, gorilla.TextMessage, mt)
	assert.Equal(t, payload, got)

	require.NoError(t, conn.WriteMessage(gorilla.CloseMessage,
		gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, "bye")))
	require.Eventually(t, func() bool { return reg.Len() == 0 }, timeout, tick)
}

func TestHandler_DisconnectUnregisters(t *testing.T) {
	reg, srv := newTestServer(t, nil, nil)

	conn, _, err := gorilla.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return reg.Len() == 1 }, timeout, tick)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return reg.Len() == 0 }, timeout, tick)
}

func TestHandler_TokenRequiredWhenEnabled(t *testing.T) {
	mgr := jwt.NewManager("test-secret", time.Hour)
	reg, srv := newTestServer(t, mgr, nil)

	_, resp, err := gorilla.DefaultDialer.Dial(wsURL(srv), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tok, _, err := mgr.IssueUserToken("viewer-1", user.RoleDashboard)
	require.NoError(t, err)
	conn, _, err := gorilla.DefaultDialer.Dial(wsURL(srv)+"?Authorization="+tok, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return reg.Len() == 1 }, timeout, tick)
}

func TestHandler_OriginAllowList(t *testing.T) {
	_, srv := newTestServer(t, nil, []string{"http://dashboard.local"})

	hdr := http.Header{}
	hdr.Set("Origin", "http://evil.example")
	_, resp, err := gorilla.DefaultDialer.Dial(wsURL(srv), hdr)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	hdr.Set("Origin", "http://dashboard.local")
	conn, _, err := gorilla.DefaultDialer.Dial(wsURL(srv), hdr)
	require.NoError(t, err)
	_ = conn.Close()
}
