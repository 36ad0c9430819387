package hub

import "sync"

// Sink delivers encoded frames to one transport connection. Send must not
// block; it reports false when the frame was dropped.
type Sink interface {
	Send(payload []byte) bool
}

// Binding ties a transient connection to a player seat in a room.
type Binding struct {
	ConnID   string
	Code     string
	PlayerID string
}

// Connections is the only place connection ids are stored. Rooms and game
// sessions address players by logical id.
type Connections struct {
	mu       sync.Mutex
	sinks    map[string]Sink
	bindings map[string]Binding
	members  map[string]map[string]string
}

func NewConnections() *Connections {
	return &Connections{
		sinks:    map[string]Sink{},
		bindings: map[string]Binding{},
		members:  map[string]map[string]string{},
	}
}

func (c *Connections) Attach(connID string, sink Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks[connID] = sink
}

// Detach forgets the connection and returns the binding it held, if any.
func (c *Connections) Detach(connID string) (Binding, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sinks, connID)
	b, ok := c.bindings[connID]
	if ok {
		c.unbindLocked(b)
	}
	return b, ok
}

// Bind attaches connID to a player seat. A different connection already
// holding that seat is unbound and returned.
func (c *Connections) Bind(connID, code, playerID string) (replaced string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.bindings[connID]; ok {
		c.unbindLocked(prev)
	}
	seats := c.members[code]
	if seats == nil {
		seats = map[string]string{}
		c.members[code] = seats
	}
	if old, ok := seats[playerID]; ok && old != connID {
		delete(c.bindings, old)
		replaced = old
	}
	seats[playerID] = connID
	c.bindings[connID] = Binding{ConnID: connID, Code: code, PlayerID: playerID}
	return replaced
}

func (c *Connections) Unbind(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.bindings[connID]; ok {
		c.unbindLocked(b)
	}
}

func (c *Connections) unbindLocked(b Binding) {
	delete(c.bindings, b.ConnID)
	seats := c.members[b.Code]
	if seats[b.PlayerID] == b.ConnID {
		delete(seats, b.PlayerID)
	}
	if len(seats) == 0 {
		delete(c.members, b.Code)
	}
}

func (c *Connections) Lookup(connID string) (Binding, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bindings[connID]
	return b, ok
}

func (c *Connections) ConnFor(code, playerID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	connID, ok := c.members[code][playerID]
	return connID, ok
}

func (c *Connections) Send(connID string, payload []byte) bool {
	c.mu.Lock()
	sink := c.sinks[connID]
	c.mu.Unlock()
	if sink == nil {
		return false
	}
	if !sink.Send(payload) {
		metricDroppedSends.Add(1)
		return false
	}
	return true
}

func (c *Connections) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sinks)
}
