package sync

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, h *Hub) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.URL.Query().Get("device_id")
		if err := h.ServeWS(w, r, deviceID); err != nil {
			t.Logf("ServeWS: %v", err)
		}
	}))
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return srv, wsURL
}

func dial(t *testing.T, wsURL, deviceID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?device_id="+deviceID, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", deviceID, err)
	}
	return conn
}

func TestHubBroadcastsToOtherClientsOnly(t *testing.T) {
	h := NewHub(zerolog.Nop())
	srv, wsURL := newTestServer(t, h)
	defer srv.Close()

	a := dial(t, wsURL, "device-a")
	defer a.Close()
	b := dial(t, wsURL, "device-b")
	defer b.Close()

	waitForClientCount(t, h, 2)

	if err := a.WriteJSON(Delta{EntityID: "e1"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	b.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Delta
	if err := b.ReadJSON(&got); err != nil {
		t.Fatalf("device-b should receive the delta from device-a: %v", err)
	}
	if got.EntityID != "e1" {
		t.Errorf("EntityID = %q, want e1", got.EntityID)
	}

	a.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if err := a.ReadJSON(&Delta{}); err == nil {
		t.Errorf("device-a should not receive its own broadcast delta")
	}
}

func TestHubDisconnectRemovesClient(t *testing.T) {
	h := NewHub(zerolog.Nop())
	srv, wsURL := newTestServer(t, h)
	defer srv.Close()

	a := dial(t, wsURL, "device-a")
	waitForClientCount(t, h, 1)

	a.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if h.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after close, want 0", h.ClientCount())
	}
}

func waitForClientCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != want && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if h.ClientCount() != want {
		t.Fatalf("ClientCount() = %d, want %d", h.ClientCount(), want)
	}
}
