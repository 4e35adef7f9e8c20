package profile

import (
	"sort"
	"sync"
)

// Contacts is an in-memory chum list, safe for concurrent use
type Contacts struct {
	mu      sync.RWMutex
	handles map[string]struct{}
}

// NewContacts creates a contact set holding handles
func NewContacts(handles ...string) *Contacts {
	c := &Contacts{handles: make(map[string]struct{}, len(handles))}
	for _, h := range handles {
		if h != "" {
			c.handles[h] = struct{}{}
		}
	}
	return c
}

// Add puts handle on the list
func (c *Contacts) Add(handle string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handles[handle] = struct{}{}
}

// Remove takes handle off the list
func (c *Contacts) Remove(handle string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handles, handle)
}

// IsContact reports whether handle is on the list
func (c *Contacts) IsContact(handle string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.handles[handle]
	return ok
}

// Handles returns the list sorted
func (c *Contacts) Handles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.handles))
	for h := range c.handles {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}
