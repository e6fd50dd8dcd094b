package ws

import "sync"

// Group key namespaces. Rooms and user IDs share the registry, so the keys
// carry a prefix to keep a room named "alice" apart from user "alice".
func roomGroup(roomID string) string { return "room:" + roomID }
func userGroup(userID string) string { return "user:" + userID }

// Groups is the delivery-group registry: a named set of connections per
// group key plus the reverse index used to drop a connection from every
// group at teardown. The hub only ever calls Subscribe, Unsubscribe, Emit,
// EmitExcept, and Drop, which keeps the relay logic transport-agnostic.
type Groups struct {
	mu      sync.RWMutex
	members map[string]map[*Conn]struct{}
	byConn  map[*Conn]map[string]struct{}
}

func NewGroups() *Groups {
	return &Groups{
		members: make(map[string]map[*Conn]struct{}),
		byConn:  make(map[*Conn]map[string]struct{}),
	}
}

// Subscribe adds c to the named group, creating the group on first use.
func (g *Groups) Subscribe(c *Conn, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	set := g.members[key]
	if set == nil {
		set = make(map[*Conn]struct{})
		g.members[key] = set
	}
	set[c] = struct{}{}

	keys := g.byConn[c]
	if keys == nil {
		keys = make(map[string]struct{})
		g.byConn[c] = keys
	}
	keys[key] = struct{}{}
}

// Unsubscribe removes c from the named group; empty groups are reclaimed.
func (g *Groups) Unsubscribe(c *Conn, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unsubscribeLocked(c, key)
}

func (g *Groups) unsubscribeLocked(c *Conn, key string) {
	if set := g.members[key]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(g.members, key)
		}
	}
	if keys := g.byConn[c]; keys != nil {
		delete(keys, key)
		if len(keys) == 0 {
			delete(g.byConn, c)
		}
	}
}

// Drop removes c from every group it is subscribed to. Called by the
// transport layer when the connection goes away.
func (g *Groups) Drop(c *Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key := range g.byConn[c] {
		g.unsubscribeLocked(c, key)
	}
}

// Emit queues frame to every member of the group.
func (g *Groups) Emit(key string, frame []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for c := range g.members[key] {
		c.enqueue(frame)
	}
}

// EmitExcept queues frame to every member of the group but skip.
func (g *Groups) EmitExcept(key string, frame []byte, skip *Conn) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for c := range g.members[key] {
		if c == skip {
			continue
		}
		c.enqueue(frame)
	}
}

// Size reports the member count of a group.
func (g *Groups) Size(key string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members[key])
}
