// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketBroadcast(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0", 5*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWebSocketTransport() error = %v", err)
	}
	defer wst.Close()

	url := "ws://" + wst.Addr().String() + WebSocketPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%s) error = %v", url, err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return wst.Clients() == 1 })

	want := []float64{0, 1.5, 12}
	if err := wst.Send(want); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var msg HeightsMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("invalid JSON %q: %v", payload, err)
	}
	if msg.Seq != 1 || !slices.Equal(msg.Heights, want) {
		t.Errorf("message = %+v, want seq 1 heights %v", msg, want)
	}
}

func TestWebSocketClientDisconnect(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0", 5*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWebSocketTransport() error = %v", err)
	}
	defer wst.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+wst.Addr().String()+WebSocketPath, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	waitFor(t, func() bool { return wst.Clients() == 1 })

	conn.Close()
	waitFor(t, func() bool { return wst.Clients() == 0 })
}

func TestWebSocketConstructorErrors(t *testing.T) {
	if _, err := NewWebSocketTransport("127.0.0.1:0", 0); err == nil {
		t.Error("zero interval should be rejected")
	}

	first, err := NewWebSocketTransport("127.0.0.1:0", time.Second)
	if err != nil {
		t.Fatalf("NewWebSocketTransport() error = %v", err)
	}
	defer first.Close()
	if _, err := NewWebSocketTransport(first.Addr().String(), time.Second); err == nil {
		t.Error("binding an address in use should fail")
	}
}

func TestWebSocketCloseIsIdempotent(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0", time.Second)
	if err != nil {
		t.Fatalf("NewWebSocketTransport() error = %v", err)
	}
	if err := wst.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := wst.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
