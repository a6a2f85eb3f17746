// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"specterm/internal/log"
)

const (
	// WebSocketPath is the endpoint clients connect to.
	WebSocketPath = "/ws"

	writeWait = time.Second
)

// HeightsMessage is the JSON document broadcast to WebSocket clients.
type HeightsMessage struct {
	Seq     uint64    `json:"seq"`
	Heights []float64 `json:"heights"`
}

// WebSocketTransport serves a WebSocket endpoint and broadcasts the latest
// heights to every client at a fixed interval. Frames between ticks are
// dropped.
type WebSocketTransport struct {
	upgrader websocket.Upgrader
	server   *http.Server
	listener net.Listener
	interval time.Duration

	clients   map[*websocket.Conn]struct{}
	clientsMu sync.Mutex

	latest Snapshot

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewWebSocketTransport listens on addr and starts serving WebSocketPath.
func NewWebSocketTransport(addr string, interval time.Duration) (*WebSocketTransport, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid websocket send interval %s", interval)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on '%s': %w", addr, err)
	}

	wst := &WebSocketTransport{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		listener: ln,
		interval: interval,
		clients:  make(map[*websocket.Conn]struct{}),
		done:     make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(WebSocketPath, wst.handleWebSocket)
	wst.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	wst.wg.Add(2)
	go func() {
		defer wst.wg.Done()
		log.Infof("WebSocketTransport: Serving ws://%s%s", ln.Addr(), WebSocketPath)
		if err := wst.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("WebSocketTransport: Server error: %v", err)
		}
	}()
	go func() {
		defer wst.wg.Done()
		wst.broadcastLoop()
	}()

	return wst, nil
}

// Addr returns the address the server is listening on.
func (wst *WebSocketTransport) Addr() net.Addr {
	return wst.listener.Addr()
}

// Clients returns the number of connected clients.
func (wst *WebSocketTransport) Clients() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("WebSocketTransport: Upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = struct{}{}
	n := len(wst.clients)
	wst.clientsMu.Unlock()
	log.Debugf("WebSocketTransport: Client connected, total: %d", n)

	// Clients never send anything meaningful; reading detects disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.dropClient(conn)
				return
			}
		}
	}()
}

func (wst *WebSocketTransport) dropClient(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	_, ok := wst.clients[conn]
	delete(wst.clients, conn)
	n := len(wst.clients)
	wst.clientsMu.Unlock()
	conn.Close()
	if ok {
		log.Debugf("WebSocketTransport: Client disconnected, total: %d", n)
	}
}

func (wst *WebSocketTransport) broadcastLoop() {
	ticker := time.NewTicker(wst.interval)
	defer ticker.Stop()

	var (
		msg     HeightsMessage
		lastSeq uint64
	)
	for {
		select {
		case <-wst.done:
			return
		case <-ticker.C:
		}

		msg.Heights, msg.Seq = wst.latest.Load(msg.Heights)
		if msg.Seq == lastSeq {
			continue
		}
		lastSeq = msg.Seq

		payload, err := json.Marshal(&msg)
		if err != nil {
			log.Errorf("WebSocketTransport: Marshal error: %v", err)
			continue
		}
		wst.broadcast(payload)
	}
}

func (wst *WebSocketTransport) broadcast(payload []byte) {
	wst.clientsMu.Lock()
	var failed []*websocket.Conn
	for client := range wst.clients {
		client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Debugf("WebSocketTransport: Error sending to client: %v", err)
			failed = append(failed, client)
		}
	}
	wst.clientsMu.Unlock()

	for _, client := range failed {
		wst.dropClient(client)
	}
}

// Send records heights for the next broadcast. It never blocks.
func (wst *WebSocketTransport) Send(heights []float64) error {
	wst.latest.Store(heights)
	return nil
}

// Close disconnects every client and shuts the server down.
func (wst *WebSocketTransport) Close() error {
	var err error
	wst.closeOnce.Do(func() {
		log.Debugf("WebSocketTransport: Closing server")
		close(wst.done)

		wst.clientsMu.Lock()
		for client := range wst.clients {
			client.Close()
		}
		clear(wst.clients)
		wst.clientsMu.Unlock()

		err = wst.server.Close()
		wst.wg.Wait()
	})
	return err
}

var _ Transport = (*WebSocketTransport)(nil)
