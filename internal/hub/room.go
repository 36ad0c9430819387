package hub

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"partyhub/internal/game"
	"partyhub/internal/stream"
)

type Status string

const (
	StatusLobby   Status = "LOBBY"
	StatusPlaying Status = "PLAYING"
	StatusPaused  Status = "PAUSED"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
	maxNameLen   = 24
	feedSize     = 200
)

type Player struct {
	ID        string
	Name      string
	Avatar    string
	IsHost    bool
	IsReady   bool
	Connected bool
}

type Room struct {
	mu sync.Mutex

	code      string
	def       game.Definition
	status    Status
	players   []*Player
	session   game.Session
	tasks     map[string]roomTask
	restart   bool
	closed    bool
	feed      *stream.Buffer
	createdAt time.Time
	startedAt time.Time
}

func newRoom(code string, def game.Definition, host *Player, now time.Time) *Room {
	return &Room{
		code:      code,
		def:       def,
		status:    StatusLobby,
		players:   []*Player{host},
		tasks:     map[string]roomTask{},
		feed:      stream.NewBuffer(code, feedSize),
		createdAt: now,
	}
}

func (r *Room) player(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) nameTaken(name string) bool {
	for _, p := range r.players {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (r *Room) allConnected() bool {
	for _, p := range r.players {
		if !p.Connected {
			return false
		}
	}
	return true
}

func (r *Room) allReady() bool {
	for _, p := range r.players {
		if !p.IsReady || !p.Connected {
			return false
		}
	}
	return len(r.players) > 0
}

func (r *Room) removePlayer(id string) *Player {
	for i, p := range r.players {
		if p.ID != id {
			continue
		}
		r.players = append(r.players[:i], r.players[i+1:]...)
		if p.IsHost && len(r.players) > 0 {
			r.players[0].IsHost = true
		}
		return p
	}
	return nil
}

func (r *Room) seats() []game.Seat {
	out := make([]game.Seat, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, game.Seat{ID: p.ID, Name: p.Name})
	}
	return out
}

func (r *Room) meta() RoomMeta {
	return RoomMeta{
		Code:      r.code,
		Kind:      r.def.Kind,
		Players:   r.seats(),
		CreatedAt: r.createdAt,
		StartedAt: r.startedAt,
	}
}

type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar,omitempty"`
	IsHost    bool   `json:"is_host"`
	IsReady   bool   `json:"is_ready"`
	Connected bool   `json:"connected"`
}

type RoomView struct {
	Code       string       `json:"code"`
	GameKind   game.Kind    `json:"game_kind"`
	Status     Status       `json:"status"`
	MaxPlayers int          `json:"max_players"`
	Players    []PlayerView `json:"players"`
}

func (r *Room) view(maxPlayers int) RoomView {
	v := RoomView{
		Code:       r.code,
		GameKind:   r.def.Kind,
		Status:     r.status,
		MaxPlayers: maxPlayers,
		Players:    make([]PlayerView, 0, len(r.players)),
	}
	for _, p := range r.players {
		v.Players = append(v.Players, PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Avatar:    p.Avatar,
			IsHost:    p.IsHost,
			IsReady:   p.IsReady,
			Connected: p.Connected,
		})
	}
	return v
}

// PublicPlayer omits the logical id, which doubles as the rejoin credential.
type PublicPlayer struct {
	Name      string `json:"name"`
	IsHost    bool   `json:"is_host"`
	IsReady   bool   `json:"is_ready"`
	Connected bool   `json:"connected"`
}

type PublicRoomView struct {
	Code        string         `json:"code"`
	GameKind    game.Kind      `json:"game_kind"`
	Status      Status         `json:"status"`
	PlayerCount int            `json:"player_count"`
	MaxPlayers  int            `json:"max_players"`
	Players     []PublicPlayer `json:"players"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (r *Room) publicView(maxPlayers int) PublicRoomView {
	v := PublicRoomView{
		Code:        r.code,
		GameKind:    r.def.Kind,
		Status:      r.status,
		PlayerCount: len(r.players),
		MaxPlayers:  maxPlayers,
		Players:     make([]PublicPlayer, 0, len(r.players)),
		CreatedAt:   r.createdAt,
	}
	for _, p := range r.players {
		v.Players = append(v.Players, PublicPlayer{
			Name:      p.Name,
			IsHost:    p.IsHost,
			IsReady:   p.IsReady,
			Connected: p.Connected,
		})
	}
	return v
}

func randomCode() string {
	var b strings.Builder
	b.Grow(codeLength)
	for range codeLength {
		b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return b.String()
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func cleanName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if len([]rune(name)) > maxNameLen {
		name = string([]rune(name)[:maxNameLen])
	}
	return name
}
