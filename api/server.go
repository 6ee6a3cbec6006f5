package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/shiprelay/game/room"
	"github.com/wricardo/mcp-training/shiprelay/protocol"
	"github.com/wricardo/mcp-training/shiprelay/transport/websocket"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Game clients connect from arbitrary origins.
		return true
	},
}

// Server exposes the websocket endpoint plus a read-only HTTP surface for
// inspecting rooms and connections.
type Server struct {
	rooms    *room.Manager
	registry *websocket.Registry
	relay    *protocol.Router
	router   *mux.Router
}

// NewServer creates a new API server.
func NewServer(rooms *room.Manager, registry *websocket.Registry, relay *protocol.Router) *Server {
	s := &Server{
		rooms:    rooms,
		registry: registry,
		relay:    relay,
		router:   mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Room inspection (read-only; rooms are created over the websocket)
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{code}", s.handleGetRoom).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")

	// Game traffic
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// RoomInfo is the JSON view of a session for the inspection endpoints.
type RoomInfo struct {
	Code       string    `json:"code"`
	Matched    bool      `json:"matched"`
	GameWidth  int       `json:"game_width,omitempty"`
	GameHeight int       `json:"game_height,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func roomInfo(s room.Snapshot) RoomInfo {
	return RoomInfo{
		Code:       s.Code,
		Matched:    s.Matched,
		GameWidth:  s.GameWidth,
		GameHeight: s.GameHeight,
		CreatedAt:  s.CreatedAt,
	}
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	sessions := s.rooms.Snapshots()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	rooms := make([]RoomInfo, 0, len(sessions))
	for _, session := range sessions {
		rooms = append(rooms, roomInfo(session))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(rooms),
		"rooms": rooms,
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	code := vars["code"]

	snap, err := s.rooms.Snapshot(code)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, roomInfo(snap))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]int{
		"rooms":       s.rooms.Count(),
		"connections": s.registry.Count(),
	})
}

// handleWebSocket upgrades the request and hands the connection to the
// transport. Role assignment happens later, when the client sends HOST or
// JOIN.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	websocket.NewConn(uuid.New().String(), conn, s.relay, s.registry).Start()
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
