// Package room provides session management for the Ship Duel Relay Server.
//
// The room package implements:
//   - Thread-safe session (room) storage and retrieval
//   - 4-digit numeric room code generation
//   - Host/client pairing and screen-size negotiation
//   - Session teardown on disconnect
//
// Core Types:
//
// Manager is the authoritative in-memory table of live sessions. Session
// represents the pairing state between exactly one host and at most one
// client, together with the negotiated game geometry.
//
// Room Codes:
//
// Rooms use 4-digit decimal codes drawn uniformly from [1000, 9999] using
// cryptographic randomness. Codes are intentionally not checked for
// collisions; a colliding create replaces the earlier session, left
// unhandled pending a product decision on a collision strategy.
//
// Geometry Negotiation:
//
// When a client joins, the shared game dimensions are computed as the
// component-wise minimum of the host's and client's reported screens, so
// both peers render the same playfield.
//
// Concurrency:
//
// The manager is thread-safe. All session table access is serialized behind
// one mutex, preserving the single-writer property of the design: relay
// lookups, joins, and teardown never observe a half-mutated session.
//
// Usage:
//
//	manager := room.NewManager()
//
//	// Host opens a room
//	sess := manager.Create(hostConn, room.Screen{Width: 1920, Height: 1080})
//
//	// Client joins by code
//	sess, err := manager.Join(sess.Code, clientConn, room.Screen{Width: 1280, Height: 800})
//	if err != nil {
//		// room.ErrRoomNotFound or room.ErrRoomFull
//	}
//
// Lifecycle:
//
// A session is created by a host request and destroyed the moment either
// participant disconnects. There is no reconnection or resume; a room that
// loses either side is permanently gone and its code becomes reusable.
package room
