package broadcast

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

var ErrConnectionNotFound = errors.New("connection not found")

// client wraps a websocket connection with a write lock, since gorilla
// connections do not support concurrent writers.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (that *client) send(v any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.conn.WriteJSON(v)
}

// Hub tracks live websocket connections by connection ID. What gets sent
// where is decided by the room coordinator; the hub only delivers.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
	}
}

// Register - adds a connection under its connection ID.
func (that *Hub) Register(connectionID string, conn *websocket.Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.clients[connectionID] = &client{conn: conn}
}

// Unregister - forgets the connection. The caller owns closing it.
func (that *Hub) Unregister(connectionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.clients, connectionID)
}

// Send - writes the value as JSON to one connection.
func (that *Hub) Send(connectionID string, v any) error {
	that.mu.RLock()
	c, ok := that.clients[connectionID]
	that.mu.RUnlock()

	if !ok {
		return ErrConnectionNotFound
	}

	return c.send(v)
}
