package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"partyhub/internal/game"
	"partyhub/internal/game/fleet"
	"partyhub/internal/game/nightday"
)

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type recorder struct {
	mu     sync.Mutex
	frames []frame
}

func (r *recorder) Send(payload []byte) bool {
	var f frame
	if err := json.Unmarshal(payload, &f); err != nil {
		panic(err)
	}
	r.mu.Lock()
	r.frames = append(r.frames, f)
	r.mu.Unlock()
	return true
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.frames))
	for _, f := range r.frames {
		out = append(out, f.Type)
	}
	return out
}

func (r *recorder) count(typ string) int {
	n := 0
	for _, t := range r.types() {
		if t == typ {
			n++
		}
	}
	return n
}

func (r *recorder) last(typ string) (json.RawMessage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.frames) - 1; i >= 0; i-- {
		if r.frames[i].Type == typ {
			return r.frames[i].Data, true
		}
	}
	return nil, false
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.frames = nil
	r.mu.Unlock()
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

const testGrace = 60 * time.Second

func newTestHub(t *testing.T, extra ...game.Definition) (*Coordinator, *clock) {
	t.Helper()
	defs := append([]game.Definition{
		nightday.Definition(nightday.Config{
			FirstDayDuration: time.Minute,
			DayDuration:      2 * time.Minute,
			SkipFirstDayVote: true,
			Rand:             rand.New(rand.NewPCG(3, 4)),
		}),
		fleet.Definition(fleet.Config{Rand: rand.New(rand.NewPCG(5, 6))}),
	}, extra...)
	reg, err := game.NewRegistry(defs...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	clk := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	seq := 0
	c := NewCoordinator(Options{
		Games:          reg,
		ReconnectGrace: testGrace,
		Now:            clk.Now,
		NewPlayerID: func() string {
			seq++
			return fmt.Sprintf("player-%02d", seq)
		},
	})
	return c, clk
}

func connect(c *Coordinator, connID string) *recorder {
	rec := &recorder{}
	c.Connect(connID, rec)
	return rec
}

type table struct {
	code  string
	conns []string
	ids   []string
	recs  []*recorder
}

// seatPlayers creates a room of kind with n connected players; the first is
// host.
func seatPlayers(t *testing.T, c *Coordinator, kind game.Kind, n int) *table {
	t.Helper()
	ctx := context.Background()
	tb := &table{}
	for i := range n {
		connID := fmt.Sprintf("conn-%d", i)
		rec := connect(c, connID)
		name := fmt.Sprintf("Player%d", i)
		var (
			view RoomView
			err  error
		)
		if i == 0 {
			view, err = c.CreateRoom(ctx, connID, CreateRoomRequest{PlayerName: name, GameKind: kind})
			tb.code = view.Code
		} else {
			view, err = c.JoinRoom(ctx, connID, JoinRoomRequest{Code: tb.code, PlayerName: name})
		}
		if err != nil {
			t.Fatalf("seat %d: %v", i, err)
		}
		tb.conns = append(tb.conns, connID)
		tb.ids = append(tb.ids, view.Players[i].ID)
		tb.recs = append(tb.recs, rec)
	}
	return tb
}

func startGame(t *testing.T, c *Coordinator, tb *table) {
	t.Helper()
	ctx := context.Background()
	for _, connID := range tb.conns {
		if err := c.ToggleReady(ctx, connID); err != nil {
			t.Fatalf("ready %s: %v", connID, err)
		}
	}
	if err := c.StartGame(ctx, tb.conns[0]); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
}

func roomStatus(t *testing.T, c *Coordinator, code string) Status {
	t.Helper()
	v, err := c.PublicRoom(code)
	if err != nil {
		t.Fatalf("PublicRoom(%s): %v", code, err)
	}
	return v.Status
}

func action(typ string, fields map[string]any) json.RawMessage {
	body := map[string]any{"type": typ}
	for k, v := range fields {
		body[k] = v
	}
	raw, _ := json.Marshal(body)
	return raw
}

// scripted is a minimal engine for exercising orchestration paths.
type scripted struct {
	host  game.Host
	inits *int
	seats []game.Seat
	moves int
}

func scriptedDefinition(inits *int) game.Definition {
	return game.Definition{
		Kind:       "SCRIPTED",
		MinPlayers: 1,
		MaxPlayers: 8,
		New: func(h game.Host) game.Session {
			return &scripted{host: h, inits: inits}
		},
	}
}

func (s *scripted) Init(seats []game.Seat) error {
	*s.inits++
	s.seats = seats
	s.host.Broadcast()
	return nil
}

func (s *scripted) HandleAction(playerID string, a game.Action) error {
	switch a.Type {
	case "MOVE":
		s.moves++
		s.host.Broadcast()
	case "AGAIN":
		s.host.Restart()
	case "END":
		s.host.Log("game over")
		s.host.Finish(game.Result{Winner: playerID, Summary: map[string]any{
			"finisher": playerID,
			"moves":    map[string]int{playerID: s.moves},
			"seats":    []string{s.seats[0].ID},
		}})
	case "BOOM":
		panic("engine exploded")
	case "TIMER":
		s.host.Schedule("tick", time.Second, func() {
			s.moves += 100
			s.host.Broadcast()
		})
	default:
		return game.ErrInvalidAction
	}
	return nil
}

func (s *scripted) StateFor(playerID string) (any, error) {
	return map[string]any{"moves": s.moves, "me": playerID, "inits": *s.inits}, nil
}

func (s *scripted) MigrateIdentity(string) {}
