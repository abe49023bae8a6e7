package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"yupp-live-quiz/internal/protocol"
)

// A frame queued right before Close must still reach the peer; the join
// rejection path depends on this ordering.
func TestConnFlushesQueuedFrameBeforeClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		conn := newConn(socket, zap.NewNop())
		_ = conn.Send(protocol.KindError, protocol.ErrorPayload{Message: "name already taken"})
		_ = conn.Close()
	}))
	defer server.Close()
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	for i := 0; i < 20; i++ {
		client, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		_, data, err := client.ReadMessage()
		if err != nil {
			t.Fatalf("connection closed before the queued frame arrived: %v", err)
		}
		env, err := protocol.Decode(data)
		if err != nil || env.Type != protocol.KindError {
			t.Fatalf("unexpected frame %q (%v)", data, err)
		}
		client.Close()
	}
}

func TestConnSendAfterClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	conns := make(chan *Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		conns <- newConn(socket, zap.NewNop())
	}))
	defer server.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	conn := <-conns
	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := conn.Send(protocol.KindRosterChanged, protocol.RosterPayload{}); err != errConnClosed {
		t.Fatalf("expected errConnClosed, got %v", err)
	}
}
