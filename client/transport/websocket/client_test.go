package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type fakeServer struct {
	*httptest.Server
	first chan []byte
}

// newFakeServer records the first message, replies with replies and then
// either holds the connection open or closes it normally.
func newFakeServer(t *testing.T, replies []string, closeAfter bool) *fakeServer {
	t.Helper()
	fs := &fakeServer{first: make(chan []byte, 1)}
	upgrader := websocket.Upgrader{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		fs.first <- msg
		for _, reply := range replies {
			if err = conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
				return
			}
		}
		if closeAfter {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
			time.Sleep(100 * time.Millisecond)
			return
		}
		// drain until the client goes away; this also answers pings
		for {
			if _, _, err = conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) wsURL() string {
	return "ws" + strings.TrimPrefix(fs.URL, "http")
}

func newTestClient(url string) *Client {
	logger := zerolog.Nop()
	return NewClient(Config{
		Logger:       &logger,
		URL:          url,
		PingInterval: 20 * time.Millisecond,
		PongWait:     time.Second,
	})
}

func TestOpenSendsConnectFirst(t *testing.T) {
	srv := newFakeServer(t, []string{`{"type":"offer"}`}, false)
	c := newTestClient(srv.wsURL())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connect := []byte(`{"role":"recvonly","channel_id":"room1"}`)
	s, err := c.Open(ctx, connect)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	select {
	case got := <-srv.first:
		if string(got) != string(connect) {
			t.Errorf("first message = %s, want %s", got, connect)
		}
	case <-ctx.Done():
		t.Fatal("server did not receive connect message")
	}

	select {
	case msg := <-s.Inbound():
		if string(msg) != `{"type":"offer"}` {
			t.Errorf("unexpected inbound message %s", msg)
		}
	case <-ctx.Done():
		t.Fatal("no inbound message")
	}

	// let a few pings go through
	time.Sleep(100 * time.Millisecond)

	s.Close()
	if err = s.Err(); err != nil {
		t.Errorf("local close must not report an error, got %v", err)
	}
	if _, ok := <-s.Inbound(); ok {
		t.Error("RX must be closed after Close")
	}
}

func TestSessionEndsWhenServerCloses(t *testing.T) {
	srv := newFakeServer(t, nil, true)
	c := newTestClient(srv.wsURL())

	s, err := c.Open(context.Background(), []byte(`{}`))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end")
	}
	if !errors.Is(s.Err(), ErrClosedByPeer) {
		t.Errorf("expected ErrClosedByPeer, got %v", s.Err())
	}
}

func TestSessionEndsWithContext(t *testing.T) {
	srv := newFakeServer(t, nil, false)
	c := newTestClient(srv.wsURL())

	ctx, cancel := context.WithCancel(context.Background())
	s, err := c.Open(ctx, []byte(`{}`))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	cancel()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end on cancel")
	}
}

func TestOpenDialError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := newTestClient("ws" + strings.TrimPrefix(srv.URL, "http"))
	if _, err := c.Open(context.Background(), []byte(`{}`)); !errors.Is(err, ErrDial) {
		t.Errorf("expected ErrDial, got %v", err)
	}
}
