// Package protocol defines the wire protocol and message routing for the
// Ship Duel Relay Server.
//
// Every frame is a JSON envelope with a "type" discriminator. The kinds
// partition into three classes:
//
//   - Control: HOST creates a session, JOIN matches a client into one.
//     These mutate session state and receive acknowledgments (HOSTED,
//     REJECT, SCREEN_SIZE, CLIENT_JOINED, JOINED).
//   - Relay: HELLO, SHIP_IMAGES, WELCOME, MOVE, SPAWN, DELETE, FIRE,
//     DAMAGE, COLLISION, SCREEN_SIZE. The router forwards the original
//     bytes unchanged to the session counterpart and never inspects the
//     payload.
//   - Server-originated: DISCONNECT, sent to the remaining peer when its
//     counterpart leaves.
//
// Error Handling:
//
// Malformed frames and unknown kinds are dropped without a response. A
// relay with no session or a closed counterpart is an ordinary race, not an
// error. JOIN against a missing or full room is the only user-visible
// failure and answers with REJECT plus a human-readable reason.
//
// All server sends are fire-and-forget: delivery failure to a broken peer
// is not distinguished from success.
package protocol
