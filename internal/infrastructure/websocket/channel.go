package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Channel adapts one upgraded connection to the registry's MemberChannel.
// gorilla/websocket allows only one concurrent writer, so Send serializes
// writes with a mutex.
type Channel struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewChannel(conn *websocket.Conn) *Channel {
	return &Channel{conn: conn}
}

func (c *Channel) Send(message interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(message)
}

func (c *Channel) Close() error {
	return c.conn.Close()
}
