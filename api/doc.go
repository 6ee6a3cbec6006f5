// Package api provides the HTTP surface of the Ship Duel Relay Server.
//
// Endpoints:
//
//	GET /ws               - websocket upgrade; all game traffic flows here
//	GET /health           - liveness probe for process supervisors
//	GET /api/rooms        - list live rooms, newest first
//	GET /api/rooms/{code} - inspect a single room
//	GET /api/stats        - room and connection counts
//
// The HTTP API is strictly read-only: rooms are created and joined over
// the websocket protocol, never via REST. The inspection endpoints exist
// for operators and for the MCP transport, which reads the same data.
//
// Response Format:
//
// All responses are JSON. Errors use the shape {"error": "message"} with
// an appropriate status code.
package api
