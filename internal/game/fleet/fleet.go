// Package fleet implements a hidden-grid naval game for two players or two
// teams of two.
package fleet

import (
	"math/rand/v2"

	"partyhub/internal/game"
)

const GridSize = 10

type Phase string

const (
	PhasePlacement Phase = "PLACEMENT"
	PhasePlaying   Phase = "PLAYING"
	PhaseFinished  Phase = "FINISHED"
)

type Team string

const (
	TeamBlue Team = "BLUE"
	TeamRed  Team = "RED"
)

type ShipType string

const (
	Carrier    ShipType = "CARRIER"
	Battleship ShipType = "BATTLESHIP"
	Destroyer  ShipType = "DESTROYER"
	Submarine  ShipType = "SUBMARINE"
)

type ShipSpec struct {
	Type  ShipType `json:"type"`
	Size  int      `json:"size"`
	Count int      `json:"count"`
}

// Roster is the fleet every player must place.
var Roster = []ShipSpec{
	{Type: Carrier, Size: 4, Count: 1},
	{Type: Battleship, Size: 3, Count: 2},
	{Type: Destroyer, Size: 2, Count: 2},
	{Type: Submarine, Size: 1, Count: 1},
}

const (
	ActionPlaceShip  = "PLACE_SHIP"
	ActionRemoveShip = "REMOVE_SHIP"
	ActionSetReady   = "SET_READY"
	ActionShoot      = "SHOOT"
	ActionPlayAgain  = "PLAY_AGAIN"
)

type Config struct {
	// Rand picks the first shooter; nil uses the global source.
	Rand *rand.Rand
}

func Definition(cfg Config) game.Definition {
	return game.Definition{
		Kind:       game.KindFleet,
		Title:      "Fleet",
		MinPlayers: 2,
		MaxPlayers: 4,
		Sizes:      []int{2, 4},
		New: func(host game.Host) game.Session {
			return New(host, cfg)
		},
	}
}

type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Cell) inBounds() bool {
	return c.X >= 0 && c.X < GridSize && c.Y >= 0 && c.Y < GridSize
}

type ship struct {
	id    string
	kind  ShipType
	cells []Cell
}

type board struct {
	ships    []*ship
	received map[Cell]bool
	ready    bool
	shots    int
	hits     int
}

func (b *board) sunk(s *ship) bool {
	for _, c := range s.cells {
		if !b.received[c] {
			return false
		}
	}
	return true
}

func (b *board) shipsLeft() int {
	n := 0
	for _, s := range b.ships {
		if !b.sunk(s) {
			n++
		}
	}
	return n
}

func (b *board) shipAt(c Cell) *ship {
	for _, s := range b.ships {
		for _, sc := range s.cells {
			if sc == c {
				return s
			}
		}
	}
	return nil
}

func (b *board) placed(kind ShipType) int {
	n := 0
	for _, s := range b.ships {
		if s.kind == kind {
			n++
		}
	}
	return n
}

func (b *board) complete() bool {
	for _, spec := range Roster {
		if b.placed(spec.Type) != spec.Count {
			return false
		}
	}
	return true
}

type Engine struct {
	host game.Host
	rng  *rand.Rand

	seats  []game.Seat
	index  map[string]int
	teams  map[string]Team
	boards map[string]*board

	phase    Phase
	order    []string
	turn     int
	winner   Team
	again    map[string]bool
	nextShip int
}

func New(host game.Host, cfg Config) *Engine {
	return &Engine{host: host, rng: cfg.Rand}
}

func (e *Engine) Init(players []game.Seat) error {
	if len(players) != 2 && len(players) != 4 {
		return game.ErrInvalidRoster
	}
	index := make(map[string]int, len(players))
	for i, p := range players {
		if _, dup := index[p.ID]; dup || p.ID == "" {
			return game.ErrInvalidRoster
		}
		index[p.ID] = i
	}

	e.seats = append([]game.Seat(nil), players...)
	e.index = index
	e.teams = make(map[string]Team, len(players))
	e.boards = make(map[string]*board, len(players))
	e.order = make([]string, 0, len(players))
	for i, p := range players {
		team := TeamBlue
		if i%2 == 1 {
			team = TeamRed
		}
		e.teams[p.ID] = team
		e.boards[p.ID] = &board{received: map[Cell]bool{}}
		e.order = append(e.order, p.ID)
	}
	e.phase = PhasePlacement
	e.turn = 0
	e.winner = ""
	e.again = map[string]bool{}
	e.nextShip = 0
	e.host.Broadcast()
	return nil
}

func (e *Engine) MigrateIdentity(string) {}

func (e *Engine) Phase() Phase { return e.phase }

// Shooter is the player whose turn it is while PLAYING.
func (e *Engine) Shooter() string {
	if e.phase != PhasePlaying {
		return ""
	}
	return e.order[e.turn]
}

func (e *Engine) Team(playerID string) Team { return e.teams[playerID] }

func (e *Engine) eliminated(playerID string) bool {
	b := e.boards[playerID]
	return len(b.ships) > 0 && b.shipsLeft() == 0
}

func (e *Engine) intn(n int) int {
	if e.rng != nil {
		return e.rng.IntN(n)
	}
	return rand.IntN(n)
}

func (e *Engine) name(id string) string {
	if i, ok := e.index[id]; ok {
		return e.seats[i].Name
	}
	return id
}
