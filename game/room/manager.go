package room

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"sync"
	"time"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room full")
)

// Manager is the single authoritative table of live sessions. All session
// mutation funnels through it behind one mutex, so relay decisions and
// teardown never race each other.
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewManager creates an empty session table.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// Create opens a new session for the given host and returns it. The room
// code is drawn uniformly from [1000, 9999]. Codes are not checked against
// existing sessions; a colliding create replaces the earlier session,
// left unhandled pending a product decision on a collision strategy.
func (m *Manager) Create(host Peer, screen Screen) *Session {
	session := &Session{
		Code:       generateRoomCode(),
		Host:       host,
		HostScreen: screen,
		CreatedAt:  time.Now(),
	}

	m.mu.Lock()
	m.sessions[session.Code] = session
	m.mu.Unlock()

	return session
}

// Join attaches a client to the session with the given code and negotiates
// the shared game geometry as the minimum of both reported screens.
// Returns ErrRoomNotFound or ErrRoomFull without mutating anything on the
// two rejection paths.
func (m *Manager) Join(code string, client Peer, screen Screen) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[code]
	if !exists {
		return nil, ErrRoomNotFound
	}
	if session.Client != nil {
		return nil, ErrRoomFull
	}

	session.Client = client
	session.ClientScreen = screen
	session.GameWidth = min(session.HostScreen.Width, screen.Width)
	session.GameHeight = min(session.HostScreen.Height, screen.Height)

	return session, nil
}

// Get retrieves a session by code. The returned session's client-side
// fields may still be written by a concurrent Join; anything that can run
// alongside a join reads through CounterpartOf or Snapshot instead.
func (m *Manager) Get(code string) (*Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[code]
	m.mu.RUnlock()

	if !exists {
		return nil, ErrRoomNotFound
	}
	return session, nil
}

// CounterpartOf resolves, under the table lock, the peer on the other side
// of p's session. The bool is false when no session has the code; the peer
// is nil when the session is not yet matched.
func (m *Manager) CounterpartOf(code string, p Peer) (Peer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[code]
	if !exists {
		return nil, false
	}
	return session.Counterpart(p), true
}

// Snapshot returns a value copy of one session's state.
func (m *Manager) Snapshot(code string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[code]
	if !exists {
		return Snapshot{}, ErrRoomNotFound
	}
	return session.snapshot(), nil
}

// Snapshots returns value copies of all live sessions.
func (m *Manager) Snapshots() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Snapshot, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session.snapshot())
	}
	return result
}

// Remove deletes a session. Removing an unknown code is a no-op; teardown
// is unconditional and may race a concurrent close of the other side.
func (m *Manager) Remove(code string) {
	m.mu.Lock()
	delete(m.sessions, code)
	m.mu.Unlock()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateRoomCode returns a random 4-digit decimal code.
func generateRoomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		// crypto/rand only fails when the platform source is broken;
		// nothing sensible to do but give back a fixed code.
		return "1000"
	}
	return strconv.FormatInt(n.Int64()+1000, 10)
}
