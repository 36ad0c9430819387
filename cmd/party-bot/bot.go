package main

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"time"

	"partyhub/internal/config"
	"partyhub/internal/game"
	"partyhub/internal/game/nightday"
	"partyhub/internal/hub"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// frameConn is the subset of *websocket.Conn the bot needs.
type frameConn interface {
	ReadMessage() (int, []byte, error)
	WriteJSON(v any) error
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// fatalCodes are rejections that leave the bot outside any room.
var fatalCodes = map[string]bool{
	"room_not_found":       true,
	"room_full":            true,
	"game_already_started": true,
	"name_taken":           true,
}

type bot struct {
	conn  frameConn
	cfg   config.BotConfig
	rnd   *rand.Rand
	think time.Duration

	playerID string
	isHost   bool
	readied  bool
}

func newBot(conn frameConn, cfg config.BotConfig, rnd *rand.Rand, think time.Duration) *bot {
	return &bot{conn: conn, cfg: cfg, rnd: rnd, think: think}
}

func (b *bot) run(ctx context.Context) error {
	if err := b.enter(); err != nil {
		return err
	}
	for {
		_, data, err := b.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			continue
		}
		done, err := b.handle(f)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (b *bot) enter() error {
	if b.cfg.RoomCode != "" {
		return b.conn.WriteJSON(map[string]any{
			"type":        "joinRoom",
			"code":        b.cfg.RoomCode,
			"player_name": b.cfg.PlayerName,
		})
	}
	return b.conn.WriteJSON(map[string]any{
		"type":        "createRoom",
		"player_name": b.cfg.PlayerName,
		"game_kind":   b.cfg.GameKind,
	})
}

// handle reacts to one server frame. It reports true once the room is gone.
func (b *bot) handle(f frame) (bool, error) {
	switch f.Type {
	case hub.MsgRoomCreated, hub.MsgRoomJoined, hub.MsgRoomUpdated:
		var p hub.RoomPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return false, err
		}
		if p.PlayerID != "" {
			b.playerID = p.PlayerID
			log.Info().Str("room", p.Room.Code).Msg("bot_in_room")
		}
		b.trackRoom(p.Room)
		if p.Room.Status == hub.StatusLobby && !b.readied {
			b.readied = true
			return false, b.conn.WriteJSON(map[string]any{"type": "toggleReady"})
		}
	case hub.MsgReadyToStart:
		var p hub.ReadyPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return false, err
		}
		if p.CanStart && b.isHost {
			return false, b.conn.WriteJSON(map[string]any{"type": "startGame"})
		}
	case hub.MsgGameState:
		return false, b.play(f.Data)
	case hub.MsgGameLog:
		var p hub.LogPayload
		if err := json.Unmarshal(f.Data, &p); err == nil {
			log.Info().Str("message", p.Message).Msg("game_log")
		}
	case hub.MsgError:
		var p hub.ErrorPayload
		_ = json.Unmarshal(f.Data, &p)
		log.Warn().Str("code", p.Code).Str("message", p.Message).Msg("server_rejected")
		if fatalCodes[p.Code] {
			return true, errors.New(p.Code)
		}
	case hub.MsgRoomClosed:
		var p hub.ClosedPayload
		_ = json.Unmarshal(f.Data, &p)
		log.Info().Str("reason", p.Reason).Msg("room_closed")
		return true, nil
	}
	return false, nil
}

// trackRoom follows host handover and re-arms readying once a finished game
// returns the room to the lobby.
func (b *bot) trackRoom(room hub.RoomView) {
	if room.Status != hub.StatusLobby {
		b.readied = false
	}
	for _, p := range room.Players {
		if p.ID == b.playerID {
			b.isHost = p.IsHost
		}
	}
}

func (b *bot) play(data json.RawMessage) error {
	var st struct {
		GameKind game.Kind       `json:"game_kind"`
		State    json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if st.GameKind != game.KindNightDay {
		return nil
	}
	var view nightday.View
	if err := json.Unmarshal(st.State, &view); err != nil {
		return err
	}
	action, ok := decideNightDay(b.rnd, view)
	if !ok {
		return nil
	}
	if b.think > 0 {
		time.Sleep(b.think)
	}
	return b.conn.WriteJSON(map[string]any{"type": "gameAction", "payload": action})
}

// decideNightDay picks a random legal move for the viewer, or none when the
// viewer has nothing left to do this phase.
func decideNightDay(rnd *rand.Rand, v nightday.View) (map[string]any, bool) {
	me := v.Me
	if me.Submitted {
		return nil, false
	}
	if !me.Alive && v.Public.Phase != nightday.PhaseEnd {
		return nil, false
	}
	switch v.Public.Phase {
	case nightday.PhaseRoleReveal:
		return map[string]any{"type": nightday.ActionReady}, true
	case nightday.PhaseDay:
		return map[string]any{"type": nightday.ActionDayReady}, true
	case nightday.PhaseVoting:
		target, ok := pickTarget(rnd, v.Public.Players, func(id string) bool { return id != me.PlayerID })
		if !ok {
			return nil, false
		}
		return map[string]any{"type": nightday.ActionVote, "target_id": target}, true
	case nightday.PhaseNight:
		var allowed func(string) bool
		switch me.Role {
		case nightday.RoleVampire:
			allies := map[string]bool{me.PlayerID: true}
			for _, id := range me.Allies {
				allies[id] = true
			}
			allowed = func(id string) bool { return !allies[id] }
		case nightday.RoleDoctor:
			allowed = func(id string) bool { return id != me.LastProtected }
		default:
			return map[string]any{"type": nightday.ActionNightReady}, true
		}
		target, ok := pickTarget(rnd, v.Public.Players, allowed)
		if !ok {
			return nil, false
		}
		return map[string]any{"type": nightday.ActionNightAction, "target_id": target}, true
	case nightday.PhaseEnd:
		return map[string]any{"type": nightday.ActionPlayAgain}, true
	}
	return nil, false
}

func pickTarget(rnd *rand.Rand, players []nightday.PlayerView, allowed func(id string) bool) (string, bool) {
	candidates := make([]string, 0, len(players))
	for _, p := range players {
		if p.Alive && allowed(p.ID) {
			candidates = append(candidates, p.ID)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[rnd.IntN(len(candidates))], true
}
