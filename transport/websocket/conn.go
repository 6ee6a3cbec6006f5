package websocket

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/shiprelay/game/room"
	"github.com/wricardo/mcp-training/shiprelay/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer. Generous because the HELLO
	// handshake carries base64 ship imagery.
	maxMessageSize = 512 * 1024

	// Outbound queue depth per connection.
	sendBufferSize = 256
)

// Conn is one live websocket connection. It owns the read and write pumps
// and carries the per-connection state the router and the liveness monitor
// need: session binding and the liveness flag.
type Conn struct {
	id       string
	ws       *websocket.Conn
	send     chan []byte
	done     chan struct{}
	router   *protocol.Router
	registry *Registry

	// alive starts true so a fresh connection survives at least one full
	// probe cycle; the pong handler sets it back after each probe.
	alive  atomic.Bool
	closed atomic.Bool

	mu       sync.Mutex
	roomCode string
	role     room.Role

	closeOnce sync.Once
}

// NewConn wraps an upgraded websocket connection. Call Start to register it
// and begin pumping messages.
func NewConn(id string, ws *websocket.Conn, router *protocol.Router, registry *Registry) *Conn {
	c := &Conn{
		id:       id,
		ws:       ws,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		router:   router,
		registry: registry,
	}
	c.alive.Store(true)
	return c
}

// ID returns the connection's opaque identity.
func (c *Conn) ID() string { return c.id }

// RoomCode returns the bound session code, or "" before binding.
func (c *Conn) RoomCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomCode
}

// Role returns the bound session role.
func (c *Conn) Role() room.Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role
}

// Bind records the session code and role assigned by the router.
func (c *Conn) Bind(code string, role room.Role) {
	c.mu.Lock()
	c.roomCode = code
	c.role = role
	c.mu.Unlock()
}

// IsOpen reports whether the connection is still usable for sends.
func (c *Conn) IsOpen() bool {
	return !c.closed.Load()
}

// Send queues data for delivery. It never blocks: when the peer cannot
// drain its queue the frame is dropped and the connection is closed, which
// funnels into the normal disconnect path.
func (c *Conn) Send(data []byte) error {
	if c.closed.Load() {
		return websocket.ErrCloseSent
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return websocket.ErrCloseSent
	default:
		log.Printf("Connection %s send queue full, closing", c.id)
		c.Close()
		return websocket.ErrCloseSent
	}
}

// Close terminates the underlying websocket. The read pump unblocks and
// runs the disconnect path exactly once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
		err = c.ws.Close()
	})
	return err
}

// Start registers the connection and launches its pumps.
func (c *Conn) Start() {
	c.registry.Add(c)
	go c.writePump()
	go c.readPump()
}

// ping sends a liveness probe. WriteControl is safe to call concurrently
// with the write pump.
func (c *Conn) ping() error {
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// readPump pumps inbound frames into the router. Its exit, whatever the
// cause, is the single place connection teardown happens.
func (c *Conn) readPump() {
	defer func() {
		c.Close()
		c.registry.Remove(c)
		c.router.HandleDisconnect(c)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Connection %s read error: %v", c.id, err)
			}
			return
		}
		c.router.Handle(c, data)
	}
}

// writePump drains the send queue onto the wire, preserving queue order.
func (c *Conn) writePump() {
	defer c.ws.Close()

	for {
		select {
		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-c.done:
			c.ws.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
			return
		}
	}
}
