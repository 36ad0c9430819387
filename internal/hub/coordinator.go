package hub

import (
	"context"
	"sort"
	"sync"
	"time"

	"partyhub/internal/game"
	"partyhub/internal/store"
	"partyhub/internal/stream"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultMaxPlayers     = 8
	defaultReconnectGrace = 60 * time.Second
	maxCodeAttempts       = 64
)

type Options struct {
	Games          *game.Registry
	MaxPlayers     int
	ReconnectGrace time.Duration
	DefaultKind    game.Kind
	Now            func() time.Time
	NewCode        func() string
	NewPlayerID    func() string
}

// Coordinator owns the room store and connection registry. Lock order is
// room, then coordinator, then connections.
type Coordinator struct {
	games       *game.Registry
	conns       *Connections
	maxPlayers  int
	grace       time.Duration
	defaultKind game.Kind
	now         func() time.Time
	newCode     func() string
	newPlayerID func() string
	tracer      trace.Tracer

	mu       sync.Mutex
	rooms    map[string]*Room
	observer LifecycleObserver
}

func NewCoordinator(opts Options) *Coordinator {
	c := &Coordinator{
		games:       opts.Games,
		conns:       NewConnections(),
		maxPlayers:  opts.MaxPlayers,
		grace:       opts.ReconnectGrace,
		defaultKind: opts.DefaultKind,
		now:         opts.Now,
		newCode:     opts.NewCode,
		newPlayerID: opts.NewPlayerID,
		tracer:      otel.Tracer("partyhub/internal/hub"),
		rooms:       map[string]*Room{},
	}
	if c.maxPlayers <= 0 {
		c.maxPlayers = defaultMaxPlayers
	}
	if c.grace <= 0 {
		c.grace = defaultReconnectGrace
	}
	if c.defaultKind == "" {
		c.defaultKind = game.KindNightDay
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newCode == nil {
		c.newCode = randomCode
	}
	if c.newPlayerID == nil {
		c.newPlayerID = store.NewID
	}
	return c
}

func (c *Coordinator) SetLifecycleObserver(obs LifecycleObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = obs
}

func (c *Coordinator) lifecycle() LifecycleObserver {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.observer == nil {
		return nopObserver{}
	}
	return c.observer
}

func (c *Coordinator) Connections() *Connections { return c.conns }

func (c *Coordinator) Games() *game.Registry { return c.games }

func (c *Coordinator) MaxPlayers() int { return c.maxPlayers }

// Connect registers a transport connection before it joins any room.
func (c *Coordinator) Connect(connID string, sink Sink) {
	c.conns.Attach(connID, sink)
}

func (c *Coordinator) room(code string) *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms[code]
}

func (c *Coordinator) snapshotRooms() []*Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		out = append(out, r)
	}
	return out
}

func (c *Coordinator) insertRoom(build func(code string) *Room) (*Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for range maxCodeAttempts {
		code := c.newCode()
		if _, taken := c.rooms[code]; taken {
			continue
		}
		room := build(code)
		c.rooms[code] = room
		return room, nil
	}
	return nil, errCodeSpaceExhausted
}

func (c *Coordinator) dropRoom(room *Room) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rooms[room.code] == room {
		delete(c.rooms, room.code)
	}
}

// withBoundRoom runs fn under the lock of the room connID is bound to.
func (c *Coordinator) withBoundRoom(connID string, fn func(room *Room, p *Player) error) error {
	b, ok := c.conns.Lookup(connID)
	if !ok {
		return ErrNotInRoom
	}
	room := c.room(b.Code)
	if room == nil {
		return ErrRoomNotFound
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return ErrRoomNotFound
	}
	if cur, ok := c.conns.Lookup(connID); !ok || cur.Code != room.code {
		return ErrNotInRoom
	}
	p := room.player(b.PlayerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	return fn(room, p)
}

func (c *Coordinator) startSpan(ctx context.Context, name, connID string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("conn.id", connID)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, ErrorCode(err))
	}
	span.End()
}

// Outbound fan-out. Callers hold room.mu.

func (c *Coordinator) reply(connID, msgType string, data any) {
	payload, err := encode(msgType, data)
	if err != nil {
		log.Error().Err(err).Str("type", msgType).Msg("encode_message_failed")
		return
	}
	c.conns.Send(connID, payload)
}

func (c *Coordinator) broadcast(room *Room, msgType string, data any) {
	payload, err := encode(msgType, data)
	if err != nil {
		log.Error().Err(err).Str("room", room.code).Str("type", msgType).Msg("encode_message_failed")
		return
	}
	for _, p := range room.players {
		if connID, ok := c.conns.ConnFor(room.code, p.ID); ok {
			c.conns.Send(connID, payload)
		}
	}
}

func (c *Coordinator) broadcastRoom(room *Room) {
	c.broadcast(room, MsgRoomUpdated, RoomPayload{Room: room.view(c.maxPlayers)})
	room.feed.Append("room_updated", room.publicView(c.maxPlayers))
}

// Public read side.

func (c *Coordinator) PublicRooms() []PublicRoomView {
	rooms := c.snapshotRooms()
	out := make([]PublicRoomView, 0, len(rooms))
	for _, room := range rooms {
		room.mu.Lock()
		if !room.closed {
			out = append(out, room.publicView(c.maxPlayers))
		}
		room.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Code < out[j].Code
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (c *Coordinator) PublicRoom(code string) (PublicRoomView, error) {
	room := c.room(normalizeCode(code))
	if room == nil {
		return PublicRoomView{}, ErrRoomNotFound
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return PublicRoomView{}, ErrRoomNotFound
	}
	return room.publicView(c.maxPlayers), nil
}

// RoomFeed returns the public event buffer of a live room.
func (c *Coordinator) RoomFeed(code string) (*stream.Buffer, error) {
	room := c.room(normalizeCode(code))
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room.feed, nil
}

// Shutdown closes every live room.
func (c *Coordinator) Shutdown() {
	for _, room := range c.snapshotRooms() {
		room.mu.Lock()
		if !room.closed {
			c.closeRoomLocked(room, ClosedPayload{Reason: CloseShutdown})
		}
		room.mu.Unlock()
	}
}
