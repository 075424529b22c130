package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/rolodex/internal/record"
)

var ErrNoPending = errors.New("no pending record for session")

// Pending is an extracted record the user has not saved yet.
type Pending struct {
	Source    string        `json:"source"`
	Record    record.Record `json:"record"`
	CreatedAt time.Time     `json:"created_at"`
}

// Cache holds at most one pending record per session. A new extraction
// replaces whatever was pending; saving takes it out.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	pending map[string]Pending
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[string]Pending),
	}
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Put stores r as the session's pending record, replacing any previous one.
func (c *Cache) Put(sessionID, source string, r record.Record) Pending {
	p := Pending{Source: source, Record: r, CreatedAt: c.now()}

	c.mu.Lock()
	c.pending[sessionID] = p
	c.mu.Unlock()
	return p
}

// Peek returns the pending record without removing it.
func (c *Cache) Peek(sessionID string) (Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.lookup(sessionID)
	if !ok {
		return Pending{}, ErrNoPending
	}
	return p, nil
}

// Take removes and returns the pending record.
func (c *Cache) Take(sessionID string) (Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.lookup(sessionID)
	if !ok {
		return Pending{}, ErrNoPending
	}
	delete(c.pending, sessionID)
	return p, nil
}

// Sweep drops expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for id, p := range c.pending {
		if c.expired(p) {
			delete(c.pending, id)
			n++
		}
	}
	return n
}

// lookup must be called with mu held.
func (c *Cache) lookup(sessionID string) (Pending, bool) {
	p, ok := c.pending[sessionID]
	if !ok {
		return Pending{}, false
	}
	if c.expired(p) {
		delete(c.pending, sessionID)
		return Pending{}, false
	}
	return p, true
}

func (c *Cache) expired(p Pending) bool {
	return c.ttl > 0 && c.now().Sub(p.CreatedAt) > c.ttl
}
