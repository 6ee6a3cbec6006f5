package websocket

import (
	"context"
	"log"
	"sync"
	"time"
)

// probePeriod is how often the liveness monitor walks the registry. A
// connection that answers no probe for two consecutive periods is dropped.
const probePeriod = 30 * time.Second

// Registry tracks every open connection independent of session existence
// and runs the periodic liveness monitor over them.
type Registry struct {
	conns  map[*Conn]struct{}
	mu     sync.Mutex
	period time.Duration
}

// NewRegistry creates an empty registry probing at the default period.
func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[*Conn]struct{}),
		period: probePeriod,
	}
}

// Add registers a live connection.
func (r *Registry) Add(c *Conn) {
	r.mu.Lock()
	r.conns[c] = struct{}{}
	count := len(r.conns)
	r.mu.Unlock()

	log.Printf("Connection %s registered (open connections: %d)", c.ID(), count)
}

// Remove deregisters a connection.
func (r *Registry) Remove(c *Conn) {
	r.mu.Lock()
	if _, ok := r.conns[c]; ok {
		delete(r.conns, c)
	}
	count := len(r.conns)
	r.mu.Unlock()

	log.Printf("Connection %s deregistered (open connections: %d)", c.ID(), count)
}

// Count returns the number of open connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Run blocks, probing all connections on every period until ctx is
// canceled. A connection whose flag is still down from the previous cycle
// is force-closed, which triggers the same disconnect path as a voluntary
// close; otherwise its flag is reset and a fresh ping goes out.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.probe()
		case <-ctx.Done():
			return
		}
	}
}

// probe runs one liveness cycle over a snapshot of the registry.
func (r *Registry) probe() {
	r.mu.Lock()
	conns := make([]*Conn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	for _, c := range conns {
		if !c.alive.Load() {
			log.Printf("Connection %s missed liveness probe, terminating", c.ID())
			c.Close()
			continue
		}
		c.alive.Store(false)
		if err := c.ping(); err != nil {
			c.Close()
		}
	}
}
