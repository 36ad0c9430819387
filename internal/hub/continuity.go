package hub

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// Disconnect handles a dropped transport connection. The player keeps their
// seat for the grace period; a running game pauses until they return.
func (c *Coordinator) Disconnect(ctx context.Context, connID string) {
	_, span := c.startSpan(ctx, "hub.disconnect", connID)
	defer span.End()

	b, bound := c.conns.Detach(connID)
	if !bound {
		return
	}
	room := c.room(b.Code)
	if room == nil {
		return
	}
	span.SetAttributes(attribute.String("room.code", room.code))

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return
	}
	p := room.player(b.PlayerID)
	if p == nil {
		return
	}
	p.Connected = false
	metricDisconnects.Add(1)

	if room.status == StatusPlaying {
		room.status = StatusPaused
		c.broadcast(room, MsgGamePaused, PausedPayload{ByName: p.Name})
		room.feed.Append("game_paused", PausedPayload{ByName: p.Name})
	}
	playerID := p.ID
	room.schedule(graceSlot(playerID), c.now().Add(c.grace), func() {
		c.expireGraceLocked(room, playerID)
	})
	c.broadcastRoom(room)
	log.Info().
		Str("room", room.code).
		Str("player_id", playerID).
		Str("status", string(room.status)).
		Dur("grace", c.grace).
		Msg("player_disconnected")
}

func (c *Coordinator) expireGraceLocked(room *Room, playerID string) {
	p := room.player(playerID)
	if p == nil || p.Connected {
		return
	}
	metricGraceExpiries.Add(1)
	log.Info().Str("room", room.code).Str("player_id", playerID).Msg("reconnect_grace_expired")
	if room.status == StatusLobby {
		c.removePlayerLocked(room, p)
		return
	}
	c.closeRoomLocked(room, ClosedPayload{Reason: CloseReconnectTimeout, ByName: p.Name})
}

// Rejoin rebinds a returning player's logical id to a new connection.
func (c *Coordinator) Rejoin(ctx context.Context, connID string, req RejoinRequest) (view RoomView, err error) {
	_, span := c.startSpan(ctx, "hub.rejoin", connID)
	defer func() { endSpan(span, err) }()

	code := normalizeCode(req.Code)
	if code == "" || req.PlayerID == "" {
		return RoomView{}, ErrInvalidRequest
	}
	span.SetAttributes(attribute.String("room.code", code))
	if b, bound := c.conns.Lookup(connID); bound && (b.Code != code || b.PlayerID != req.PlayerID) {
		return RoomView{}, ErrAlreadyInRoom
	}
	room := c.room(code)
	if room == nil {
		return RoomView{}, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return RoomView{}, ErrRoomNotFound
	}
	p := room.player(req.PlayerID)
	if p == nil {
		return RoomView{}, ErrPlayerNotFound
	}

	room.cancel(graceSlot(p.ID))
	if replaced := c.conns.Bind(connID, room.code, p.ID); replaced != "" {
		c.reply(replaced, MsgError, ErrorPayload{Code: "session_replaced", Message: "Signed in from another connection."})
	}
	p.Connected = true
	metricRejoins.Add(1)
	if room.session != nil {
		session := room.session
		_ = c.invoke(room, "migrate_identity", func() error {
			session.MigrateIdentity(p.ID)
			return nil
		})
	}
	resumed := room.status == StatusPaused && room.allConnected()
	if resumed {
		room.status = StatusPlaying
	}

	// The rejoiner learns its seat and snapshot before any room-wide frame.
	view = room.view(c.maxPlayers)
	c.reply(connID, MsgRejoinSucceeded, RoomPayload{Room: view, PlayerID: p.ID})
	c.sendStateLocked(room, p.ID)
	if resumed {
		c.broadcast(room, MsgGameResumed, struct{}{})
		room.feed.Append("game_resumed", nil)
	}
	c.broadcastRoom(room)
	log.Info().Str("room", room.code).Str("player_id", p.ID).Msg("player_rejoined")
	return view, nil
}
