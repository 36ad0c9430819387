package hub

import (
	"context"
	"encoding/json"
	"runtime/debug"
	"time"

	"partyhub/internal/game"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// SubmitAction forwards a gameAction payload to the room's engine.
func (c *Coordinator) SubmitAction(ctx context.Context, connID string, payload json.RawMessage) (err error) {
	_, span := c.startSpan(ctx, "hub.game_action", connID)
	defer func() { endSpan(span, err) }()

	metricActionsTotal.Add(1)
	err = c.withBoundRoom(connID, func(room *Room, p *Player) error {
		span.SetAttributes(attribute.String("room.code", room.code))
		if room.session == nil {
			return ErrNoActiveGame
		}
		if room.status == StatusPaused {
			return ErrGamePaused
		}
		action, err := game.ParseAction(payload)
		if err != nil {
			return err
		}
		span.SetAttributes(attribute.String("game.action", action.Type))
		session := room.session
		err = c.invoke(room, "handle_action", func() error {
			return session.HandleAction(p.ID, action)
		})
		c.applyRestart(room)
		return err
	})
	if err != nil {
		metricActionErrors.Add(1)
	}
	return err
}

// GetState re-sends the caller's snapshot: the game view while a game runs,
// the room otherwise.
func (c *Coordinator) GetState(ctx context.Context, connID string) (err error) {
	_, span := c.startSpan(ctx, "hub.get_state", connID)
	defer func() { endSpan(span, err) }()

	return c.withBoundRoom(connID, func(room *Room, p *Player) error {
		if room.session == nil {
			c.reply(connID, MsgRoomUpdated, RoomPayload{Room: room.view(c.maxPlayers)})
			return nil
		}
		c.sendStateLocked(room, p.ID)
		return nil
	})
}

// invoke runs an engine call, converting a panic into a logged no-op.
func (c *Coordinator) invoke(room *Room, op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			metricSessionPanics.Add(1)
			log.Error().
				Str("room", room.code).
				Str("op", op).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("game_session_panic")
			err = nil
		}
	}()
	return fn()
}

func (c *Coordinator) sendStateLocked(room *Room, playerID string) {
	if room.session == nil {
		return
	}
	connID, ok := c.conns.ConnFor(room.code, playerID)
	if !ok {
		return
	}
	var state any
	session := room.session
	err := c.invoke(room, "state_for", func() error {
		var err error
		state, err = session.StateFor(playerID)
		return err
	})
	if err != nil || state == nil {
		log.Warn().Err(err).Str("room", room.code).Str("player_id", playerID).Msg("state_for_failed")
		return
	}
	c.reply(connID, MsgGameState, StatePayload{
		ProtocolVersion: game.ProtocolVersion,
		GameKind:        room.def.Kind,
		State:           state,
	})
}

// applyRestart swaps in a fresh engine when the current one asked for it.
func (c *Coordinator) applyRestart(room *Room) {
	if !room.restart || room.closed || room.session == nil {
		return
	}
	room.restart = false
	if err := c.startSessionLocked(room); err != nil {
		log.Error().Err(err).Str("room", room.code).Msg("game_restart_failed")
	}
}

// roomHost is the game.Host handed to engines. Engines only call it from
// inside session methods or room tasks, so room.mu is always held.
type roomHost struct {
	c    *Coordinator
	room *Room
}

func (h *roomHost) Schedule(slot string, d time.Duration, fn func()) {
	h.room.schedule(gameSlotPrefix+slot, h.c.now().Add(d), fn)
}

func (h *roomHost) Cancel(slot string) {
	h.room.cancel(gameSlotPrefix + slot)
}

func (h *roomHost) Broadcast() {
	for _, p := range h.room.players {
		h.c.sendStateLocked(h.room, p.ID)
	}
}

func (h *roomHost) SendState(playerID string) {
	h.c.sendStateLocked(h.room, playerID)
}

func (h *roomHost) Log(message string) {
	h.c.broadcast(h.room, MsgGameLog, LogPayload{Message: message})
	h.room.feed.Append("game_log", LogPayload{Message: message})
}

func (h *roomHost) Finish(result game.Result) {
	metricGamesFinished.Add(1)
	result = h.room.publicResult(result)
	h.room.feed.Append("game_finished", result)
	h.c.lifecycle().OnGameFinished(h.room.meta(), result)
	log.Info().
		Str("room", h.room.code).
		Str("game_kind", string(h.room.def.Kind)).
		Str("winner", result.Winner).
		Msg("game_finished")
}

func (h *roomHost) Restart() {
	h.room.restart = true
}

// publicResult swaps every logical player id in result for the seat name.
// Results leave the room through the public feed, NATS and match history.
func (r *Room) publicResult(result game.Result) game.Result {
	names := make(map[string]string, len(r.players))
	for _, p := range r.players {
		names[p.ID] = p.Name
	}
	result.Winner = redactID(result.Winner, names)
	if result.Summary == nil {
		return result
	}
	var generic map[string]any
	raw, err := json.Marshal(result.Summary)
	if err == nil {
		err = json.Unmarshal(raw, &generic)
	}
	if err != nil {
		log.Warn().Err(err).Str("room", r.code).Msg("result_summary_dropped")
		result.Summary = nil
		return result
	}
	result.Summary = redactValue(generic, names).(map[string]any)
	return result
}

func redactID(s string, names map[string]string) string {
	if name, ok := names[s]; ok {
		return name
	}
	return s
}

// redactValue walks a decoded JSON value.
func redactValue(v any, names map[string]string) any {
	switch t := v.(type) {
	case string:
		return redactID(t, names)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = redactValue(e, names)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[redactID(k, names)] = redactValue(e, names)
		}
		return out
	}
	return v
}
