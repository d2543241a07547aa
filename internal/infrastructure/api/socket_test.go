package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lectern/lectern/internal/stream"
)

var upgrader = websocket.Upgrader{}

// newSocketServer serves one websocket connection with the given
// script and returns its ws:// URL.
func newSocketServer(t *testing.T, script func(*websocket.Conn)) string {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		script(conn)
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func closeNormally(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

func TestConsumeSocketTerminal(t *testing.T) {
	url := newSocketServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte("data: {\"type\":\"chunk\",\"content\":\"Gen\"}\n\n"))
		conn.WriteMessage(websocket.TextMessage, []byte("data: {\"type\":\"complete\",\"rendered_text\":\"Gen\"}\n\n"))
	})

	var events []stream.Event
	err := ConsumeSocket(context.Background(), url, func(ev stream.Event) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if chunk, ok := events[0].(stream.Chunk); !ok || chunk.Content != "Gen" {
		t.Errorf("Expected leading chunk, got %#v", events[0])
	}
	if !events[1].Terminal() {
		t.Error("Expected the last event to be terminal")
	}
}

func TestConsumeSocketFragmentedFrames(t *testing.T) {
	// One frame split across messages; each message is one opaque
	// fragment for the shared parser.
	url := newSocketServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte("data: {\"type\":\"complete\",\"rend"))
		conn.WriteMessage(websocket.TextMessage, []byte("ered_text\":\"done\"}\n\n"))
	})

	var events []stream.Event
	err := ConsumeSocket(context.Background(), url, func(ev stream.Event) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if complete, ok := events[0].(stream.Complete); !ok || complete.RenderedText != "done" {
		t.Errorf("Expected reassembled complete event, got %#v", events[0])
	}
}

func TestConsumeSocketTruncated(t *testing.T) {
	url := newSocketServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte("data: {\"type\":\"chunk\",\"content\":\"only\"}\n\n"))
		closeNormally(conn)
	})

	var events []stream.Event
	err := ConsumeSocket(context.Background(), url, func(ev stream.Event) {
		events = append(events, ev)
	})
	if !errors.Is(err, stream.ErrTruncated) {
		t.Fatalf("Expected ErrTruncated, got %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Expected the chunk before the close to be delivered, got %d events", len(events))
	}
}

func TestConsumeSocketIgnoresBinaryMessages(t *testing.T) {
	url := newSocketServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.BinaryMessage, []byte{0x00, 0x01})
		conn.WriteMessage(websocket.TextMessage, []byte("data: {\"type\":\"complete\"}\n\n"))
	})

	var events []stream.Event
	err := ConsumeSocket(context.Background(), url, func(ev stream.Event) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected the binary message to be skipped, got %d events", len(events))
	}
}

func TestConsumeSocketContextCancelled(t *testing.T) {
	held := make(chan struct{})
	url := newSocketServer(t, func(conn *websocket.Conn) {
		// Hold the connection open without sending anything.
		<-held
	})
	defer close(held)

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(50*time.Millisecond, cancel)
	defer timer.Stop()

	err := ConsumeSocket(ctx, url, func(stream.Event) {
		t.Error("No events expected")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestConsumeSocketDialFailure(t *testing.T) {
	err := ConsumeSocket(context.Background(), "ws://127.0.0.1:1", func(stream.Event) {
		t.Error("No events expected")
	})
	if err == nil {
		t.Fatal("Expected a dial error")
	}
}
