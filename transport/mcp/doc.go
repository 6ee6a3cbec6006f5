// Package mcp exposes read-only inspection of the relay server over the
// Model Context Protocol.
//
// The MCP server wraps the live session table and connection registry and
// offers three tools: list_rooms, room_info, and server_stats. It is
// served either on stdio (the "mcp" run mode) or mounted as an HTTP
// endpoint next to the REST API.
//
// MCP deliberately cannot create, join, or tear down rooms; the websocket
// protocol is the only mutation surface.
package mcp
