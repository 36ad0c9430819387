package nightday

import "partyhub/internal/game"

type View struct {
	Public PublicView  `json:"public"`
	Me     PrivateView `json:"me"`
}

// PublicView is identical for every viewer.
type PublicView struct {
	Phase      Phase             `json:"phase"`
	Day        int               `json:"day"`
	DeadlineMS int64             `json:"deadline_ms,omitempty"`
	Players    []PlayerView      `json:"players"`
	Ready      []string          `json:"ready,omitempty"`
	Reported   int               `json:"reported"`
	Needed     int               `json:"needed"`
	Votes      map[string]string `json:"votes,omitempty"`
	Log        []string          `json:"log"`
	Winner     Team              `json:"winner,omitempty"`
}

type PlayerView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Alive bool   `json:"alive"`
	Role  Role   `json:"role,omitempty"`
}

type PrivateView struct {
	PlayerID      string            `json:"player_id"`
	Role          Role              `json:"role"`
	Alive         bool              `json:"alive"`
	Submitted     bool              `json:"submitted"`
	Vote          string            `json:"vote,omitempty"`
	NightTarget   string            `json:"night_target,omitempty"`
	Allies        []string          `json:"allies,omitempty"`
	AllyTargets   map[string]string `json:"ally_targets,omitempty"`
	LastProtected string            `json:"last_protected,omitempty"`
}

func (e *Engine) StateFor(playerID string) (any, error) {
	if e.seats == nil {
		return nil, game.ErrNotInitialized
	}
	if _, ok := e.index[playerID]; !ok {
		return nil, game.ErrUnknownPlayer
	}
	return View{Public: e.publicView(), Me: e.privateView(playerID)}, nil
}

func (e *Engine) publicView() PublicView {
	v := PublicView{
		Phase:   e.phase,
		Day:     e.day,
		Players: make([]PlayerView, 0, len(e.seats)),
		Log:     append([]string{}, e.log...),
		Winner:  e.winner,
		Needed:  e.aliveCount(),
	}
	if !e.deadline.IsZero() {
		v.DeadlineMS = e.deadline.UnixMilli()
	}
	for _, s := range e.seats {
		pv := PlayerView{ID: s.ID, Name: s.Name, Alive: e.alive[s.ID]}
		if e.phase == PhaseEnd {
			pv.Role = e.roles[s.ID]
		}
		v.Players = append(v.Players, pv)
	}

	switch e.phase {
	case PhaseNight:
		v.Reported = len(e.attacks) + len(e.protects) + len(e.ready)
	case PhaseVoting:
		v.Reported = len(e.votes)
		v.Votes = make(map[string]string, len(e.votes))
		for voter, target := range e.votes {
			v.Votes[voter] = target
		}
	default:
		for _, s := range e.seats {
			if e.ready[s.ID] {
				v.Ready = append(v.Ready, s.ID)
			}
		}
		v.Reported = len(v.Ready)
		if e.phase == PhaseEnd {
			v.Needed = len(e.seats)
		}
	}
	return v
}

func (e *Engine) privateView(playerID string) PrivateView {
	role := e.roles[playerID]
	me := PrivateView{
		PlayerID: playerID,
		Role:     role,
		Alive:    e.alive[playerID],
		Vote:     e.votes[playerID],
	}
	switch role {
	case RoleVampire:
		me.NightTarget = e.attacks[playerID]
		for _, s := range e.seats {
			if s.ID == playerID || e.roles[s.ID] != RoleVampire {
				continue
			}
			me.Allies = append(me.Allies, s.ID)
			if target, ok := e.attacks[s.ID]; ok {
				if me.AllyTargets == nil {
					me.AllyTargets = map[string]string{}
				}
				me.AllyTargets[s.ID] = target
			}
		}
		_, me.Submitted = e.attacks[playerID]
	case RoleDoctor:
		me.NightTarget = e.protects[playerID]
		me.LastProtected = e.lastProtected
		_, me.Submitted = e.protects[playerID]
	}
	if e.ready[playerID] {
		me.Submitted = true
	}
	if e.phase == PhaseVoting {
		_, me.Submitted = e.votes[playerID]
	}
	return me
}
