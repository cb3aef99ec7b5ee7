package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 8
)

// client is one WebSocket connection. Only writePump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan Message
	done chan struct{}

	closeOnce sync.Once

	mu          sync.Mutex
	closed      bool
	gameID      string
	unsubscribe func()
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan Message, sendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue blocks until the message is queued or the client is closed.
func (that *client) enqueue(msg Message) bool {
	select {
	case that.send <- msg:
		return true
	case <-that.done:
		return false
	}
}

func (that *client) sendError(action, message string) {
	that.enqueue(newMessage(actionError, ResponsePayload{Action: action, Error: message}))
}

// follow makes gameID the game this client watches and drops the previous
// subscription.
func (that *client) follow(gameID string, unsubscribe func()) {
	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		unsubscribe()
		return
	}

	previous := that.unsubscribe
	that.gameID = gameID
	that.unsubscribe = unsubscribe
	that.mu.Unlock()

	if previous != nil {
		previous()
	}
}

func (that *client) game() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.gameID
}

func (that *client) close() {
	that.closeOnce.Do(func() {
		that.mu.Lock()
		that.closed = true
		unsubscribe := that.unsubscribe
		that.unsubscribe = nil
		that.mu.Unlock()

		close(that.done)
		if unsubscribe != nil {
			unsubscribe()
		}
		_ = that.conn.Close()
	})
}

func (that *client) writePump() {
	defer that.close()

	for {
		select {
		case msg := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-that.done:
			return
		}
	}
}
