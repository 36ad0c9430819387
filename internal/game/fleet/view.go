package fleet

import "partyhub/internal/game"

type View struct {
	Phase   Phase           `json:"phase"`
	Mode    string          `json:"mode"`
	Players []PlayerView    `json:"players"`
	Shooter string          `json:"shooter,omitempty"`
	Winner  Team            `json:"winner,omitempty"`
	Fleet   []ShipSpec      `json:"fleet"`
	Me      OwnBoard        `json:"me"`
	Targets []EnemyBoard    `json:"targets"`
	Again   map[string]bool `json:"play_again,omitempty"`
}

type PlayerView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Team       Team   `json:"team"`
	Ready      bool   `json:"ready"`
	ShipsLeft  int    `json:"ships_left"`
	Eliminated bool   `json:"eliminated"`
}

type ShipView struct {
	ID    string   `json:"id"`
	Type  ShipType `json:"type"`
	Cells []Cell   `json:"cells"`
	Sunk  bool     `json:"sunk"`
}

type ShotView struct {
	X   int  `json:"x"`
	Y   int  `json:"y"`
	Hit bool `json:"hit"`
}

type OwnBoard struct {
	PlayerID string     `json:"player_id"`
	Team     Team       `json:"team"`
	Ships    []ShipView `json:"ships"`
	Received []ShotView `json:"received"`
}

// EnemyBoard only carries what the shooter has learned: shots fired, and
// ship cells of sunk ships.
type EnemyBoard struct {
	PlayerID  string     `json:"player_id"`
	Shots     []ShotView `json:"shots"`
	Sunk      []ShipView `json:"sunk"`
	ShipsLeft int        `json:"ships_left"`
}

func (e *Engine) StateFor(playerID string) (any, error) {
	if e.seats == nil {
		return nil, game.ErrNotInitialized
	}
	if _, ok := e.index[playerID]; !ok {
		return nil, game.ErrUnknownPlayer
	}

	mode := "1v1"
	if len(e.seats) == 4 {
		mode = "2v2"
	}
	v := View{
		Phase:   e.phase,
		Mode:    mode,
		Shooter: e.Shooter(),
		Winner:  e.winner,
		Fleet:   Roster,
		Targets: []EnemyBoard{},
	}
	if e.phase == PhaseFinished && len(e.again) > 0 {
		v.Again = make(map[string]bool, len(e.again))
		for id := range e.again {
			v.Again[id] = true
		}
	}
	for _, s := range e.seats {
		b := e.boards[s.ID]
		v.Players = append(v.Players, PlayerView{
			ID:         s.ID,
			Name:       s.Name,
			Team:       e.teams[s.ID],
			Ready:      b.ready,
			ShipsLeft:  b.shipsLeft(),
			Eliminated: e.eliminated(s.ID),
		})
	}

	mine := e.boards[playerID]
	v.Me = OwnBoard{PlayerID: playerID, Team: e.teams[playerID], Ships: []ShipView{}, Received: shotsOf(mine)}
	for _, s := range mine.ships {
		v.Me.Ships = append(v.Me.Ships, ShipView{ID: s.id, Type: s.kind, Cells: s.cells, Sunk: mine.sunk(s)})
	}

	for _, s := range e.seats {
		if e.teams[s.ID] == e.teams[playerID] {
			continue
		}
		b := e.boards[s.ID]
		enemy := EnemyBoard{PlayerID: s.ID, Shots: shotsOf(b), Sunk: []ShipView{}, ShipsLeft: b.shipsLeft()}
		for _, ship := range b.ships {
			if b.sunk(ship) {
				enemy.Sunk = append(enemy.Sunk, ShipView{ID: ship.id, Type: ship.kind, Cells: ship.cells, Sunk: true})
			}
		}
		v.Targets = append(v.Targets, enemy)
	}
	return v, nil
}

func shotsOf(b *board) []ShotView {
	out := make([]ShotView, 0, len(b.received))
	for y := range GridSize {
		for x := range GridSize {
			if hit, ok := b.received[Cell{X: x, Y: y}]; ok {
				out = append(out, ShotView{X: x, Y: y, Hit: hit})
			}
		}
	}
	return out
}
