package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/shiprelay/game/room"
	"github.com/wricardo/mcp-training/shiprelay/protocol"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type testServer struct {
	rooms    *room.Manager
	registry *Registry
	server   *httptest.Server
	url      string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	rooms := room.NewManager()
	registry := NewRegistry()
	router := protocol.NewRouter(rooms)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewConn(uuid.New().String(), ws, router, registry).Start()
	}))
	t.Cleanup(server.Close)

	return &testServer{
		rooms:    rooms,
		registry: registry,
		server:   server,
		url:      "ws" + strings.TrimPrefix(server.URL, "http"),
	}
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestFullSessionScenario(t *testing.T) {
	ts := newTestServer(t)

	// Host opens a room.
	host := dial(t, ts.url)
	require.NoError(t, host.WriteJSON(map[string]interface{}{
		"type": "HOST", "screenW": 1920, "screenH": 1080,
	}))

	hosted := readEnvelope(t, host)
	require.Equal(t, "HOSTED", hosted["type"])
	assert.Equal(t, float64(1), hosted["version"])
	code := hosted["roomCode"].(string)
	assert.Len(t, code, 4)

	snap, err := ts.rooms.Snapshot(code)
	require.NoError(t, err)
	assert.False(t, snap.Matched)

	// Client joins with a smaller screen.
	client := dial(t, ts.url)
	require.NoError(t, client.WriteJSON(map[string]interface{}{
		"type": "JOIN", "roomCode": code, "screenW": 1280, "screenH": 800,
	}))

	clientSize := readEnvelope(t, client)
	require.Equal(t, "SCREEN_SIZE", clientSize["type"])
	assert.Equal(t, float64(1280), clientSize["gameW"])
	assert.Equal(t, float64(800), clientSize["gameH"])

	joined := readEnvelope(t, client)
	assert.Equal(t, "JOINED", joined["type"])
	assert.Equal(t, float64(1), joined["version"])

	hostSize := readEnvelope(t, host)
	require.Equal(t, "SCREEN_SIZE", hostSize["type"])
	assert.Equal(t, clientSize["gameW"], hostSize["gameW"])
	assert.Equal(t, clientSize["gameH"], hostSize["gameH"])

	clientJoined := readEnvelope(t, host)
	assert.Equal(t, "CLIENT_JOINED", clientJoined["type"])

	// Relay traffic flows verbatim in both directions.
	frame := []byte(`{"type":"MOVE","x":42,"y":17,"angle":0.5}`)
	require.NoError(t, host.WriteMessage(websocket.TextMessage, frame))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, frame, data)

	back := []byte(`{"type":"DAMAGE","amount":10}`)
	require.NoError(t, client.WriteMessage(websocket.TextMessage, back))

	host.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err = host.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, back, data)

	// Client disconnects; host gets exactly one DISCONNECT and the room
	// is gone.
	client.Close()

	disconnect := readEnvelope(t, host)
	assert.Equal(t, "DISCONNECT", disconnect["type"])

	require.Eventually(t, func() bool {
		_, err := ts.rooms.Get(code)
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestJoinRejectedOverWire(t *testing.T) {
	ts := newTestServer(t)

	client := dial(t, ts.url)
	require.NoError(t, client.WriteJSON(map[string]interface{}{
		"type": "JOIN", "roomCode": "0000", "screenW": 800, "screenH": 600,
	}))

	reject := readEnvelope(t, client)
	assert.Equal(t, "REJECT", reject["type"])
	assert.Equal(t, "Room not found", reject["reason"])
}

func TestRegistryTracksConnections(t *testing.T) {
	ts := newTestServer(t)

	conn := dial(t, ts.url)
	require.Eventually(t, func() bool { return ts.registry.Count() == 1 },
		2*time.Second, 10*time.Millisecond)

	second := dial(t, ts.url)
	require.Eventually(t, func() bool { return ts.registry.Count() == 2 },
		2*time.Second, 10*time.Millisecond)

	conn.Close()
	second.Close()
	require.Eventually(t, func() bool { return ts.registry.Count() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestHostDisconnectTearsDownRoom(t *testing.T) {
	ts := newTestServer(t)

	host := dial(t, ts.url)
	require.NoError(t, host.WriteJSON(map[string]interface{}{
		"type": "HOST", "screenW": 1024, "screenH": 768,
	}))
	hosted := readEnvelope(t, host)
	code := hosted["roomCode"].(string)

	client := dial(t, ts.url)
	require.NoError(t, client.WriteJSON(map[string]interface{}{
		"type": "JOIN", "roomCode": code, "screenW": 800, "screenH": 600,
	}))
	readEnvelope(t, client) // SCREEN_SIZE
	readEnvelope(t, client) // JOINED

	host.Close()

	// The remaining peer is told, then nothing else arrives.
	disconnect := readEnvelope(t, client)
	assert.Equal(t, "DISCONNECT", disconnect["type"])

	require.Eventually(t, func() bool { return ts.rooms.Count() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestSendOrderingPreserved(t *testing.T) {
	ts := newTestServer(t)

	host := dial(t, ts.url)
	require.NoError(t, host.WriteJSON(map[string]interface{}{
		"type": "HOST", "screenW": 800, "screenH": 600,
	}))
	code := readEnvelope(t, host)["roomCode"].(string)

	client := dial(t, ts.url)
	require.NoError(t, client.WriteJSON(map[string]interface{}{
		"type": "JOIN", "roomCode": code, "screenW": 800, "screenH": 600,
	}))
	readEnvelope(t, client) // SCREEN_SIZE
	readEnvelope(t, client) // JOINED
	readEnvelope(t, host)   // SCREEN_SIZE
	readEnvelope(t, host)   // CLIENT_JOINED

	const total = 50
	for i := 0; i < total; i++ {
		frame := fmt.Sprintf(`{"type":"MOVE","seq":%d}`, i)
		require.NoError(t, host.WriteMessage(websocket.TextMessage, []byte(frame)))
	}

	for i := 0; i < total; i++ {
		msg := readEnvelope(t, client)
		require.Equal(t, "MOVE", msg["type"])
		require.Equal(t, float64(i), msg["seq"], "messages must arrive in emission order")
	}
}
