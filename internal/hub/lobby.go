package hub

import (
	"context"

	"partyhub/internal/game"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

func (c *Coordinator) CreateRoom(ctx context.Context, connID string, req CreateRoomRequest) (view RoomView, err error) {
	_, span := c.startSpan(ctx, "hub.create_room", connID)
	defer func() { endSpan(span, err) }()

	name := cleanName(req.PlayerName)
	if name == "" {
		return RoomView{}, ErrInvalidRequest
	}
	kind := game.NormalizeKind(req.GameKind)
	if kind == "" {
		kind = c.defaultKind
	}
	def, err := c.games.Lookup(kind)
	if err != nil {
		return RoomView{}, err
	}
	if _, bound := c.conns.Lookup(connID); bound {
		return RoomView{}, ErrAlreadyInRoom
	}

	host := &Player{
		ID:        c.newPlayerID(),
		Name:      name,
		Avatar:    req.Avatar,
		IsHost:    true,
		Connected: true,
	}
	now := c.now()
	room, err := c.insertRoom(func(code string) *Room {
		return newRoom(code, def, host, now)
	})
	if err != nil {
		return RoomView{}, err
	}
	span.SetAttributes(attribute.String("room.code", room.code))

	room.mu.Lock()
	defer room.mu.Unlock()
	c.conns.Bind(connID, room.code, host.ID)
	view = room.view(c.maxPlayers)
	c.reply(connID, MsgRoomCreated, RoomPayload{Room: view, PlayerID: host.ID})
	room.feed.Append("room_created", room.publicView(c.maxPlayers))

	metricRoomsCreated.Add(1)
	metricRoomsActive.Add(1)
	c.lifecycle().OnRoomOpened(room.meta())
	log.Info().
		Str("room", room.code).
		Str("game_kind", string(def.Kind)).
		Str("player_id", host.ID).
		Msg("room_created")
	return view, nil
}

func (c *Coordinator) JoinRoom(ctx context.Context, connID string, req JoinRoomRequest) (view RoomView, err error) {
	_, span := c.startSpan(ctx, "hub.join_room", connID)
	defer func() { endSpan(span, err) }()

	code := normalizeCode(req.Code)
	name := cleanName(req.PlayerName)
	if code == "" || name == "" {
		return RoomView{}, ErrInvalidRequest
	}
	span.SetAttributes(attribute.String("room.code", code))
	if _, bound := c.conns.Lookup(connID); bound {
		return RoomView{}, ErrAlreadyInRoom
	}
	room := c.room(code)
	if room == nil {
		return RoomView{}, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	switch {
	case room.closed:
		return RoomView{}, ErrRoomNotFound
	case room.status != StatusLobby:
		return RoomView{}, ErrGameAlreadyStarted
	case len(room.players) >= c.maxPlayers:
		return RoomView{}, ErrRoomFull
	case room.nameTaken(name):
		return RoomView{}, ErrNameTaken
	}

	p := &Player{ID: c.newPlayerID(), Name: name, Avatar: req.Avatar, Connected: true}
	room.players = append(room.players, p)
	c.conns.Bind(connID, room.code, p.ID)
	view = room.view(c.maxPlayers)
	c.reply(connID, MsgRoomJoined, RoomPayload{Room: view, PlayerID: p.ID})
	c.broadcastRoom(room)
	log.Info().Str("room", room.code).Str("player_id", p.ID).Msg("room_joined")
	return view, nil
}

func (c *Coordinator) ToggleReady(ctx context.Context, connID string) (err error) {
	_, span := c.startSpan(ctx, "hub.toggle_ready", connID)
	defer func() { endSpan(span, err) }()

	return c.withBoundRoom(connID, func(room *Room, p *Player) error {
		if room.status != StatusLobby {
			return ErrGameAlreadyStarted
		}
		p.IsReady = !p.IsReady
		c.broadcastRoom(room)
		if room.allReady() && room.def.Accepts(len(room.players)) {
			c.broadcast(room, MsgReadyToStart, ReadyPayload{CanStart: true})
		}
		return nil
	})
}

func (c *Coordinator) StartGame(ctx context.Context, connID string) (err error) {
	_, span := c.startSpan(ctx, "hub.start_game", connID)
	defer func() { endSpan(span, err) }()

	return c.withBoundRoom(connID, func(room *Room, p *Player) error {
		span.SetAttributes(attribute.String("room.code", room.code))
		if room.status != StatusLobby {
			return ErrGameAlreadyStarted
		}
		if !p.IsHost {
			return ErrNotHost
		}
		if !room.allReady() {
			return ErrPlayersNotReady
		}
		if !room.def.Accepts(len(room.players)) {
			return game.ErrInvalidRoster
		}
		return c.startSessionLocked(room)
	})
}

// startSessionLocked builds a fresh engine for the room's frozen roster.
func (c *Coordinator) startSessionLocked(room *Room) error {
	room.cancelPrefix(gameSlotPrefix)
	session := room.def.New(&roomHost{c: c, room: room})
	room.session = session
	room.status = StatusPlaying
	room.restart = false
	room.startedAt = c.now()
	for _, p := range room.players {
		p.IsReady = false
	}

	c.broadcast(room, MsgGameStarted, RoomPayload{Room: room.view(c.maxPlayers)})
	seats := room.seats()
	if err := c.invoke(room, "init", func() error { return session.Init(seats) }); err != nil {
		room.cancelPrefix(gameSlotPrefix)
		room.session = nil
		room.status = StatusLobby
		c.broadcastRoom(room)
		return err
	}
	room.feed.Append("game_started", room.publicView(c.maxPlayers))
	metricGamesStarted.Add(1)
	c.lifecycle().OnGameStarted(room.meta())
	log.Info().
		Str("room", room.code).
		Str("game_kind", string(room.def.Kind)).
		Int("players", len(room.players)).
		Msg("game_started")
	return nil
}

// ResetToLobby abandons the running game and returns everyone to the lobby.
func (c *Coordinator) ResetToLobby(ctx context.Context, connID string) (err error) {
	_, span := c.startSpan(ctx, "hub.reset_to_lobby", connID)
	defer func() { endSpan(span, err) }()

	return c.withBoundRoom(connID, func(room *Room, p *Player) error {
		if room.session == nil {
			return ErrNoActiveGame
		}
		if !p.IsHost {
			return ErrNotHost
		}
		room.cancelPrefix(gameSlotPrefix)
		room.session = nil
		room.restart = false
		room.status = StatusLobby
		for _, pl := range room.players {
			pl.IsReady = false
		}
		c.broadcastRoom(room)
		log.Info().Str("room", room.code).Msg("room_reset_to_lobby")
		return nil
	})
}

// LeaveRoom removes the caller. Leaving a running game closes the room for
// everyone.
func (c *Coordinator) LeaveRoom(ctx context.Context, connID string) (err error) {
	_, span := c.startSpan(ctx, "hub.leave_room", connID)
	defer func() { endSpan(span, err) }()

	return c.withBoundRoom(connID, func(room *Room, p *Player) error {
		c.conns.Unbind(connID)
		c.reply(connID, MsgLeftRoom, nil)
		if room.status != StatusLobby {
			c.closeRoomLocked(room, ClosedPayload{Reason: ClosePlayerLeft, ByName: p.Name})
			return nil
		}
		c.removePlayerLocked(room, p)
		return nil
	})
}

func (c *Coordinator) removePlayerLocked(room *Room, p *Player) {
	room.cancel(graceSlot(p.ID))
	if connID, ok := c.conns.ConnFor(room.code, p.ID); ok {
		c.conns.Unbind(connID)
	}
	room.removePlayer(p.ID)
	log.Info().Str("room", room.code).Str("player_id", p.ID).Msg("player_removed")
	if len(room.players) == 0 {
		c.closeRoomLocked(room, ClosedPayload{Reason: CloseEmpty})
		return
	}
	c.broadcastRoom(room)
}

// closeRoomLocked tears the room down. Every still-bound connection gets one
// roomClosed.
func (c *Coordinator) closeRoomLocked(room *Room, reason ClosedPayload) {
	if room.closed {
		return
	}
	room.closed = true
	room.tasks = map[string]roomTask{}
	room.session = nil

	payload, err := encode(MsgRoomClosed, reason)
	for _, p := range room.players {
		connID, ok := c.conns.ConnFor(room.code, p.ID)
		if !ok {
			continue
		}
		if err == nil {
			c.conns.Send(connID, payload)
		}
		c.conns.Unbind(connID)
	}
	room.feed.Append("room_closed", reason)
	room.feed.Close()
	c.dropRoom(room)

	metricRoomsClosed.Add(1)
	metricRoomsActive.Add(-1)
	c.lifecycle().OnRoomClosed(room.meta(), reason.Reason)
	log.Info().Str("room", room.code).Str("reason", reason.Reason).Msg("room_closed")
}
