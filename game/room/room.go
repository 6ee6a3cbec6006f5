package room

import "time"

// Role identifies which side of a session a connection plays.
type Role int

const (
	RoleNone Role = iota
	RoleHost
	RoleClient
)

// String returns the wire-friendly name of the role.
func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleClient:
		return "client"
	default:
		return "none"
	}
}

// Screen is a client-reported display geometry in pixels.
type Screen struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Peer is one side of a relay session. It is implemented by the websocket
// transport; tests substitute lightweight fakes.
type Peer interface {
	ID() string
	Send(data []byte) error
	IsOpen() bool
	Close() error
}

// Session is the pairing state between one host and at most one client,
// keyed by a 4-digit numeric code. A session becomes eligible for relay
// only once both peers are present and the shared geometry is computed.
type Session struct {
	Code         string
	Host         Peer
	Client       Peer
	HostScreen   Screen
	ClientScreen Screen
	GameWidth    int
	GameHeight   int
	CreatedAt    time.Time
}

// Matched reports whether both participants are present.
func (s *Session) Matched() bool {
	return s.Host != nil && s.Client != nil
}

// Counterpart returns the other participant of the session, or nil if the
// session is not yet matched. The disconnecting or sending peer is
// identified by interface identity. Join mutates the client side under the
// manager's lock, so callers that can run concurrently with a join must go
// through Manager.CounterpartOf instead of calling this on a session they
// hold outside the lock.
func (s *Session) Counterpart(p Peer) Peer {
	if p == s.Host {
		return s.Client
	}
	return s.Host
}

// Snapshot is a value copy of a session's pairing state, taken under the
// manager's lock. The inspection surfaces read snapshots so they never
// observe a join mid-write.
type Snapshot struct {
	Code         string
	Matched      bool
	HostScreen   Screen
	ClientScreen Screen
	GameWidth    int
	GameHeight   int
	CreatedAt    time.Time
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		Code:         s.Code,
		Matched:      s.Matched(),
		HostScreen:   s.HostScreen,
		ClientScreen: s.ClientScreen,
		GameWidth:    s.GameWidth,
		GameHeight:   s.GameHeight,
		CreatedAt:    s.CreatedAt,
	}
}
