package protocol

// Version is included in creation/join acknowledgments so clients can run
// forward-compatibility checks. It is not enforced server-side.
const Version = 1

// Message kinds carried in the envelope's "type" field.
//
// HOST and JOIN are the control kinds that mutate session state. HELLO and
// the game-state kinds below it are relayed verbatim to the session
// counterpart without inspection.
const (
	TypeHost         = "HOST"
	TypeHosted       = "HOSTED"
	TypeJoin         = "JOIN"
	TypeReject       = "REJECT"
	TypeScreenSize   = "SCREEN_SIZE"
	TypeClientJoined = "CLIENT_JOINED"
	TypeJoined       = "JOINED"
	TypeHello        = "HELLO"
	TypeShipImages   = "SHIP_IMAGES"
	TypeWelcome      = "WELCOME"
	TypeMove         = "MOVE"
	TypeSpawn        = "SPAWN"
	TypeDelete       = "DELETE"
	TypeFire         = "FIRE"
	TypeDamage       = "DAMAGE"
	TypeCollision    = "COLLISION"
	TypeDisconnect   = "DISCONNECT"
)

// Rejection reasons returned to a joiner.
const (
	ReasonRoomNotFound = "Room not found"
	ReasonRoomFull     = "Room full"
)

// relayKinds are forwarded unchanged to the counterpart. The router never
// inspects their payloads.
var relayKinds = map[string]bool{
	TypeHello:      true,
	TypeShipImages: true,
	TypeWelcome:    true,
	TypeMove:       true,
	TypeSpawn:      true,
	TypeDelete:     true,
	TypeFire:       true,
	TypeDamage:     true,
	TypeCollision:  true,
	TypeScreenSize: true,
}

// Envelope is the decoded view of an inbound client message. Only the
// routing fields are decoded; relay-kind payloads travel as the original
// raw bytes and are never re-encoded.
type Envelope struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode,omitempty"`
	ScreenW  int    `json:"screenW,omitempty"`
	ScreenH  int    `json:"screenH,omitempty"`
}

// Hosted acknowledges room creation to the host.
type Hosted struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
	Version  int    `json:"version"`
}

// Reject tells a joiner why its JOIN was refused.
type Reject struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// ScreenSize carries the negotiated game geometry to both peers.
type ScreenSize struct {
	Type  string `json:"type"`
	GameW int    `json:"gameW"`
	GameH int    `json:"gameH"`
}

// ClientJoined notifies the host that a client joined its room.
type ClientJoined struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
}

// Joined confirms to the joining client that it is now connected.
type Joined struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
}

// Disconnect notifies the remaining peer that its counterpart left.
type Disconnect struct {
	Type string `json:"type"`
}
