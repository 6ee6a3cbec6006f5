package protocol

import (
	"encoding/json"
	"log"

	"github.com/wricardo/mcp-training/shiprelay/game/room"
)

// Conn is the router's view of one live connection. The websocket transport
// implements it; tests substitute fakes.
type Conn interface {
	room.Peer

	// RoomCode returns the session code this connection is bound to, or ""
	// before a role is assigned.
	RoomCode() string

	// Role returns the session role assigned to this connection.
	Role() room.Role

	// Bind records the session code and role once, when the connection
	// becomes a host or client.
	Bind(code string, role room.Role)
}

// Router dispatches inbound envelopes by message kind: HOST and JOIN drive
// the session lifecycle, everything else in the relay class is forwarded
// byte-for-byte to the session counterpart.
type Router struct {
	rooms *room.Manager
}

// NewRouter creates a router backed by the given session table.
func NewRouter(rooms *room.Manager) *Router {
	return &Router{rooms: rooms}
}

// Handle processes one inbound frame from c. Malformed frames and unknown
// kinds are dropped without a response; no inbound message is ever fatal.
func (r *Router) Handle(c Conn, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("Dropping malformed message from %s: %v", c.ID(), err)
		return
	}

	switch {
	case env.Type == TypeHost:
		r.handleHost(c, &env)
	case env.Type == TypeJoin:
		r.handleJoin(c, &env)
	case relayKinds[env.Type]:
		r.relay(c, data)
	default:
		log.Printf("Dropping unknown message type %q from %s", env.Type, c.ID())
	}
}

// handleHost opens a new session with c as host and acknowledges with the
// assigned room code. Creation always succeeds.
func (r *Router) handleHost(c Conn, env *Envelope) {
	session := r.rooms.Create(c, room.Screen{Width: env.ScreenW, Height: env.ScreenH})
	c.Bind(session.Code, room.RoleHost)

	log.Printf("Room %s hosted by %s (%dx%d)", session.Code, c.ID(), env.ScreenW, env.ScreenH)

	r.send(c, Hosted{Type: TypeHosted, RoomCode: session.Code, Version: Version})
}

// handleJoin matches c into an existing session, negotiates the shared
// geometry, and notifies both sides. The two failure paths answer with a
// REJECT and leave all state untouched.
func (r *Router) handleJoin(c Conn, env *Envelope) {
	session, err := r.rooms.Join(env.RoomCode, c, room.Screen{Width: env.ScreenW, Height: env.ScreenH})
	switch err {
	case nil:
	case room.ErrRoomNotFound:
		r.send(c, Reject{Type: TypeReject, Reason: ReasonRoomNotFound})
		return
	case room.ErrRoomFull:
		r.send(c, Reject{Type: TypeReject, Reason: ReasonRoomFull})
		return
	default:
		r.send(c, Reject{Type: TypeReject, Reason: err.Error()})
		return
	}

	c.Bind(session.Code, room.RoleClient)

	log.Printf("Room %s joined by %s, game size %dx%d",
		session.Code, c.ID(), session.GameWidth, session.GameHeight)

	size := ScreenSize{Type: TypeScreenSize, GameW: session.GameWidth, GameH: session.GameHeight}
	r.send(session.Host, size)
	r.send(c, size)
	r.send(session.Host, ClientJoined{Type: TypeClientJoined, Version: Version})
	r.send(c, Joined{Type: TypeJoined, Version: Version})
}

// relay forwards the raw frame unchanged to the sender's session
// counterpart. A missing session, unmatched room, or closed counterpart is
// an ordinary race (the peer already left), so the frame is dropped
// silently.
func (r *Router) relay(c Conn, data []byte) {
	code := c.RoomCode()
	if code == "" {
		return
	}

	counterpart, ok := r.rooms.CounterpartOf(code, c)
	if !ok || counterpart == nil || !counterpart.IsOpen() {
		return
	}

	counterpart.Send(data)
}

// HandleDisconnect is the single teardown funnel for every connection
// close, voluntary or liveness-triggered. It notifies the open counterpart
// and unconditionally removes the session.
func (r *Router) HandleDisconnect(c Conn) {
	code := c.RoomCode()
	if code == "" {
		return
	}

	counterpart, ok := r.rooms.CounterpartOf(code, c)
	if !ok {
		return
	}

	if counterpart != nil && counterpart.IsOpen() {
		r.send(counterpart, Disconnect{Type: TypeDisconnect})
	}

	r.rooms.Remove(code)
	log.Printf("Room %s closed (%s disconnected)", code, c.Role())
}

// send marshals and fires a server-originated message. Delivery is
// best-effort; a failed send is indistinguishable from success.
func (r *Router) send(p room.Peer, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal %T: %v", msg, err)
		return
	}
	p.Send(data)
}
