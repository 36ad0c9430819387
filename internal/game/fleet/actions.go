package fleet

import (
	"fmt"
	"strings"

	"partyhub/internal/game"
)

type placePayload struct {
	ShipType   ShipType `json:"ship_type"`
	X          int      `json:"x"`
	Y          int      `json:"y"`
	Horizontal bool     `json:"horizontal"`
}

type removePayload struct {
	ShipID string `json:"ship_id"`
}

type readyPayload struct {
	Ready *bool `json:"ready"`
}

type shootPayload struct {
	TargetID string `json:"target_id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

func (e *Engine) HandleAction(playerID string, action game.Action) error {
	if e.seats == nil {
		return game.ErrNotInitialized
	}
	if _, ok := e.index[playerID]; !ok {
		return game.ErrUnknownPlayer
	}

	var err error
	switch action.Type {
	case ActionPlaceShip:
		var p placePayload
		if err = action.Decode(&p); err == nil {
			err = e.placeShip(playerID, p)
		}
	case ActionRemoveShip:
		var p removePayload
		if err = action.Decode(&p); err == nil {
			err = e.removeShip(playerID, p.ShipID)
		}
	case ActionSetReady:
		p := readyPayload{}
		if err = action.Decode(&p); err == nil {
			ready := p.Ready == nil || *p.Ready
			err = e.setReady(playerID, ready)
		}
	case ActionShoot:
		var p shootPayload
		if err = action.Decode(&p); err == nil {
			err = e.shoot(playerID, p)
		}
	case ActionPlayAgain:
		err = e.playAgain(playerID)
	default:
		return game.ErrInvalidAction
	}
	return err
}

func (e *Engine) placeShip(playerID string, p placePayload) error {
	if e.phase != PhasePlacement {
		return game.ErrWrongPhase
	}
	b := e.boards[playerID]
	if b.ready {
		return game.ErrInvalidAction
	}
	spec, ok := specFor(p.ShipType)
	if !ok || b.placed(spec.Type) >= spec.Count {
		return game.ErrInvalidAction
	}

	cells := make([]Cell, 0, spec.Size)
	for i := range spec.Size {
		c := Cell{X: p.X, Y: p.Y}
		if p.Horizontal {
			c.X += i
		} else {
			c.Y += i
		}
		if !c.inBounds() || touches(b, c) {
			return game.ErrInvalidTarget
		}
		cells = append(cells, c)
	}

	e.nextShip++
	b.ships = append(b.ships, &ship{
		id:    fmt.Sprintf("%s-%d", strings.ToLower(string(spec.Type)), e.nextShip),
		kind:  spec.Type,
		cells: cells,
	})
	e.host.SendState(playerID)
	return nil
}

func specFor(t ShipType) (ShipSpec, bool) {
	t = ShipType(strings.ToUpper(string(t)))
	for _, spec := range Roster {
		if spec.Type == t {
			return spec, true
		}
	}
	return ShipSpec{}, false
}

// touches reports whether c overlaps or borders (diagonals included) any
// placed ship.
func touches(b *board, c Cell) bool {
	for _, s := range b.ships {
		for _, sc := range s.cells {
			if abs(sc.X-c.X) <= 1 && abs(sc.Y-c.Y) <= 1 {
				return true
			}
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (e *Engine) removeShip(playerID, shipID string) error {
	if e.phase != PhasePlacement {
		return game.ErrWrongPhase
	}
	b := e.boards[playerID]
	if b.ready {
		return game.ErrInvalidAction
	}
	for i, s := range b.ships {
		if s.id == shipID {
			b.ships = append(b.ships[:i], b.ships[i+1:]...)
			e.host.SendState(playerID)
			return nil
		}
	}
	return game.ErrInvalidTarget
}

func (e *Engine) setReady(playerID string, ready bool) error {
	if e.phase != PhasePlacement {
		return game.ErrWrongPhase
	}
	b := e.boards[playerID]
	if ready && !b.complete() {
		return game.ErrInvalidAction
	}
	b.ready = ready
	for _, s := range e.seats {
		if !e.boards[s.ID].ready {
			e.host.Broadcast()
			return nil
		}
	}
	e.phase = PhasePlaying
	e.turn = e.intn(len(e.order))
	e.host.Log(fmt.Sprintf("All fleets deployed. %s fires first.", e.name(e.order[e.turn])))
	e.host.Broadcast()
	return nil
}

func (e *Engine) shoot(playerID string, p shootPayload) error {
	if e.phase != PhasePlaying {
		return game.ErrWrongPhase
	}
	if e.order[e.turn] != playerID {
		return game.ErrNotYourTurn
	}
	target, ok := e.boards[p.TargetID]
	if !ok || e.teams[p.TargetID] == e.teams[playerID] || e.eliminated(p.TargetID) {
		return game.ErrInvalidTarget
	}
	c := Cell{X: p.X, Y: p.Y}
	if !c.inBounds() {
		return game.ErrInvalidTarget
	}
	if _, shot := target.received[c]; shot {
		return game.ErrInvalidTarget
	}

	hitShip := target.shipAt(c)
	target.received[c] = hitShip != nil
	shooter := e.boards[playerID]
	shooter.shots++
	if hitShip != nil {
		shooter.hits++
		if target.sunk(hitShip) {
			e.host.Log(fmt.Sprintf("%s sank %s's %s.", e.name(playerID), e.name(p.TargetID), strings.ToLower(string(hitShip.kind))))
		}
	}

	if team, done := e.losingTeam(); done {
		e.finish(other(team))
		return nil
	}
	e.advanceTurn()
	e.host.Broadcast()
	return nil
}

func (e *Engine) advanceTurn() {
	for range e.order {
		e.turn = (e.turn + 1) % len(e.order)
		if !e.eliminated(e.order[e.turn]) {
			return
		}
	}
}

func (e *Engine) losingTeam() (Team, bool) {
	for _, team := range []Team{TeamBlue, TeamRed} {
		down := true
		for _, s := range e.seats {
			if e.teams[s.ID] == team && !e.eliminated(s.ID) {
				down = false
				break
			}
		}
		if down {
			return team, true
		}
	}
	return "", false
}

func other(t Team) Team {
	if t == TeamBlue {
		return TeamRed
	}
	return TeamBlue
}

func (e *Engine) finish(winner Team) {
	e.phase = PhaseFinished
	e.winner = winner
	e.again = map[string]bool{}

	stats := make(map[string]any, len(e.seats))
	var winners []string
	for _, s := range e.seats {
		b := e.boards[s.ID]
		stats[s.Name] = map[string]int{"shots": b.shots, "hits": b.hits}
		if e.teams[s.ID] == winner {
			winners = append(winners, s.Name)
		}
	}
	e.host.Finish(game.Result{
		Winner: string(winner),
		Summary: map[string]any{
			"winners": winners,
			"stats":   stats,
		},
	})
	e.host.Log(fmt.Sprintf("Team %s wins.", winner))
	e.host.Broadcast()
}

func (e *Engine) playAgain(playerID string) error {
	if e.phase != PhaseFinished {
		return game.ErrWrongPhase
	}
	e.again[playerID] = true
	if len(e.again) == len(e.seats) {
		e.host.Restart()
		return nil
	}
	e.host.Broadcast()
	return nil
}
