package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/shiprelay/game/room"
	"github.com/wricardo/mcp-training/shiprelay/transport/websocket"
)

// Server exposes read-only room inspection over MCP. It reads the live
// session table directly; it never mutates sessions, which belong to the
// websocket protocol alone.
type Server struct {
	rooms     *room.Manager
	registry  *websocket.Registry
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server over the given session table and
// connection registry.
func NewServer(rooms *room.Manager, registry *websocket.Registry) *Server {
	s := &Server{
		rooms:    rooms,
		registry: registry,
	}

	s.initMCPServer()
	return s
}

// GetMCPServer returns the wrapped MCP server for stdio or HTTP serving.
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// initMCPServer initializes the MCP server with all tools
func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"Ship Duel Relay",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Ship Duel Relay Server - MCP Interface

Read-only inspection of the relay server's live state. Rooms pair exactly
two game clients (a host and a joiner) and forward their traffic.

AVAILABLE TOOLS:
- list_rooms: List all live rooms with their match state
- room_info: Get details of a single room by its 4-digit code
- server_stats: Room and connection counts

Rooms cannot be created or modified through MCP; all game traffic flows
over the websocket protocol.`),
	)

	s.registerTools()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all live rooms with their pairing state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListRooms)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "room_info",
		Description: "Get details of a specific room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code": map[string]interface{}{
					"type":        "string",
					"description": "4-digit room code",
				},
			},
			Required: []string{"code"},
		},
	}, s.handleRoomInfo)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get room and connection counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleServerStats)
}

func (s *Server) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions := s.rooms.Snapshots()

	var b strings.Builder
	fmt.Fprintf(&b, "Live Rooms (%d):\n\n", len(sessions))
	for _, sess := range sessions {
		fmt.Fprintf(&b, "- %s (%s, created %s)\n",
			sess.Code, matchState(sess), sess.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleRoomInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Arguments may be absent entirely; a missing code falls through to the
	// not-found answer below.
	args, _ := request.Params.Arguments.(map[string]interface{})
	code, _ := args["code"].(string)

	sess, err := s.rooms.Snapshot(code)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Room %s\nState: %s\nHost screen: %dx%d\n",
		sess.Code, matchState(sess), sess.HostScreen.Width, sess.HostScreen.Height)
	if sess.Matched {
		result += fmt.Sprintf("Client screen: %dx%d\nGame size: %dx%d\n",
			sess.ClientScreen.Width, sess.ClientScreen.Height, sess.GameWidth, sess.GameHeight)
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := fmt.Sprintf("Rooms: %d\nOpen connections: %d\n",
		s.rooms.Count(), s.registry.Count())
	return mcp.NewToolResultText(result), nil
}

func matchState(s room.Snapshot) string {
	if s.Matched {
		return "matched"
	}
	return "waiting for client"
}
