package synthesis

import (
	"sort"
	"sync"

	"github.com/aura-webinar/qna/internal/models"
)

// Cache memoizes one synthesis entry per session, keyed by its fingerprint.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]models.SynthesisCacheEntry

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewCache creates an empty synthesis cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]models.SynthesisCacheEntry),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Get returns the entry for a session.
func (c *Cache) Get(sessionID string) (models.SynthesisCacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[sessionID]
	return e, ok
}

// Lookup returns the entry only when its fingerprint equals fingerprint.
func (c *Cache) Lookup(sessionID string, fingerprint []string) (models.SynthesisCacheEntry, bool) {
	e, ok := c.Get(sessionID)
	if !ok || !sameIDs(e.ApprovedIDs, fingerprint) {
		return models.SynthesisCacheEntry{}, false
	}
	return e, true
}

// Put replaces the entry for the entry's session.
func (c *Cache) Put(e models.SynthesisCacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[e.SessionID] = e
}

// Drop removes the entry for a session.
func (c *Cache) Drop(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sessionID)
}

// Sessions lists sessions with a cached entry, sorted.
func (c *Cache) Sessions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.entries))
	for id := range c.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// lockSession serializes regeneration for one session and returns the unlock func.
func (c *Cache) lockSession(sessionID string) func() {
	c.locksMu.Lock()
	l, ok := c.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[sessionID] = l
	}
	c.locksMu.Unlock()
	l.Lock()
	return l.Unlock
}

// Fingerprint returns the ordered ids of the synthesis input.
func Fingerprint(questions []models.Question) []string {
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID.String())
	}
	return ids
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
