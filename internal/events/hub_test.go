package events

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Clients() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastsToAllClients(t *testing.T) {
	hub := NewHub(nil, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	a := dial(t, srv)
	defer a.Close()
	b := dial(t, srv)
	defer b.Close()
	waitClients(t, hub, 2)

	ref := domain.VideoRef{Origin: domain.OriginRepository, ID: "r1"}
	hub.Publish(Event{Type: TypeStatusChanged, Ref: ref, Status: domain.StateFinished})

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got Event
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, TypeStatusChanged, got.Type)
		assert.Equal(t, ref, got.Ref)
		assert.Equal(t, domain.StateFinished, got.Status)
		assert.False(t, got.At.IsZero())
	}
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	hub := NewHub(nil, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	waitClients(t, hub, 1)

	conn.Close()
	waitClients(t, hub, 0)
}

func TestHub_PublishWithoutClients(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.Publish(Event{Type: TypeDeleted})
	assert.Equal(t, 0, hub.Clients())
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub(&HubConfig{SendBuffer: 1, PingInterval: time.Minute, WriteTimeout: time.Second, ReadTimeout: time.Minute}, nil)

	// A registered client with no writer drains nothing.
	c := &client{send: make(chan Event, 1)}
	hub.clients[c] = struct{}{}

	hub.Publish(Event{Type: TypeApproved})
	assert.Equal(t, 1, hub.Clients())

	hub.Publish(Event{Type: TypeApproved})
	assert.Equal(t, 0, hub.Clients())
}
