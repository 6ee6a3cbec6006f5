// Package websocket provides the websocket transport for the Ship Duel
// Relay Server.
//
// The websocket package implements:
//   - One Conn per upgraded connection with dedicated read/write pumps
//   - A Registry of all open connections
//   - A periodic liveness monitor built on websocket ping/pong
//   - Connection teardown funneled through one disconnect path
//
// Architecture:
//
// Each connection gets a read pump and a write pump goroutine. The read
// pump feeds every inbound frame to the protocol router; the write pump
// drains a buffered send channel so outbound messages keep their emission
// order without blocking senders.
//
// Liveness:
//
// The Registry probes every open connection on a fixed period. A pong from
// the peer raises the connection's liveness flag; a connection whose flag
// is still down when the next cycle arrives is force-closed. New
// connections start alive, so a peer has at least one full cycle to answer
// before it can be reaped. Termination runs the same disconnect path as a
// voluntary close: the session counterpart is notified and the room is
// removed.
//
// Connection Lifecycle:
//
// 1. HTTP request upgraded, Conn created and registered
// 2. Client sends HOST or JOIN, router binds the room code and role
// 3. Relay traffic flows through the send channels
// 4. Read pump exit (close, error, or reaping) tears everything down once
package websocket
