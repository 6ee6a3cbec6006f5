package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/shiprelay/game/room"
	"github.com/wricardo/mcp-training/shiprelay/protocol"
	"github.com/wricardo/mcp-training/shiprelay/transport/websocket"
)

type stubPeer struct{ id string }

func (p *stubPeer) ID() string             { return p.id }
func (p *stubPeer) Send(data []byte) error { return nil }
func (p *stubPeer) IsOpen() bool           { return true }
func (p *stubPeer) Close() error           { return nil }

func newTestServer() (*Server, *room.Manager) {
	rooms := room.NewManager()
	registry := websocket.NewRegistry()
	relay := protocol.NewRouter(rooms)
	return NewServer(rooms, registry, relay), rooms
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer()

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestStatsEndpoint(t *testing.T) {
	server, rooms := newTestServer()

	rooms.Create(&stubPeer{id: "host"}, room.Screen{Width: 800, Height: 600})

	req := httptest.NewRequest("GET", "/api/stats", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body["rooms"])
	assert.Equal(t, 0, body["connections"])
}

func TestListRooms(t *testing.T) {
	server, rooms := newTestServer()

	sess := rooms.Create(&stubPeer{id: "host"}, room.Screen{Width: 1920, Height: 1080})
	_, err := rooms.Join(sess.Code, &stubPeer{id: "client"}, room.Screen{Width: 1280, Height: 800})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/rooms", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int        `json:"count"`
		Rooms []RoomInfo `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, sess.Code, body.Rooms[0].Code)
	assert.True(t, body.Rooms[0].Matched)
	assert.Equal(t, 1280, body.Rooms[0].GameWidth)
	assert.Equal(t, 800, body.Rooms[0].GameHeight)
}

func TestGetRoom(t *testing.T) {
	server, rooms := newTestServer()
	sess := rooms.Create(&stubPeer{id: "host"}, room.Screen{Width: 800, Height: 600})

	req := httptest.NewRequest("GET", "/api/rooms/"+sess.Code, nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var info RoomInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, sess.Code, info.Code)
	assert.False(t, info.Matched)
}

func TestGetRoomNotFound(t *testing.T) {
	server, _ := newTestServer()

	req := httptest.NewRequest("GET", "/api/rooms/0000", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "room not found", body["error"])
}

func TestWebSocketEndpoint(t *testing.T) {
	server, rooms := newTestServer()

	httpServer := httptest.NewServer(server)
	defer httpServer.Close()

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "HOST", "screenW": 1920, "screenH": 1080,
	}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var hosted map[string]interface{}
	require.NoError(t, conn.ReadJSON(&hosted))
	assert.Equal(t, "HOSTED", hosted["type"])

	code := hosted["roomCode"].(string)
	_, err = rooms.Get(code)
	assert.NoError(t, err)
}
