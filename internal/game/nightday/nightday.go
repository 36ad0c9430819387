// Package nightday implements the night/day social deduction game: hidden
// vampires pick a victim each night, a doctor protects one player, and the
// village votes by day.
package nightday

import (
	"math/rand/v2"
	"time"

	"partyhub/internal/game"
)

type Phase string

const (
	PhaseRoleReveal Phase = "ROLE_REVEAL"
	PhaseDay        Phase = "DAY"
	PhaseVoting     Phase = "VOTING"
	PhaseNight      Phase = "NIGHT"
	PhaseEnd        Phase = "END"
)

type Role string

const (
	RoleVampire  Role = "VAMPIRE"
	RoleDoctor   Role = "DOCTOR"
	RoleVillager Role = "VILLAGER"
)

type Team string

const (
	TeamVillagers Team = "VILLAGERS"
	TeamVampires  Team = "VAMPIRES"
)

const (
	ActionReady       = "READY"
	ActionDayReady    = "DAY_READY"
	ActionVote        = "VOTE"
	ActionNightAction = "NIGHT_ACTION"
	ActionNightReady  = "NIGHT_READY"
	ActionPlayAgain   = "PLAY_AGAIN"
)

const (
	MinPlayers = 4
	MaxPlayers = 8

	slotDay = "day_timer"
	maxLog  = 20
)

var phaseActions = map[Phase][]string{
	PhaseRoleReveal: {ActionReady},
	PhaseDay:        {ActionDayReady},
	PhaseVoting:     {ActionVote},
	PhaseNight:      {ActionNightAction, ActionNightReady},
	PhaseEnd:        {ActionPlayAgain},
}

type Config struct {
	FirstDayDuration time.Duration
	DayDuration      time.Duration
	SkipFirstDayVote bool
	// Rand drives role assignment; nil uses the global source.
	Rand *rand.Rand
	Now  func() time.Time
}

func (c Config) withDefaults() Config {
	if c.FirstDayDuration <= 0 {
		c.FirstDayDuration = 60 * time.Second
	}
	if c.DayDuration <= 0 {
		c.DayDuration = 120 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

func Definition(cfg Config) game.Definition {
	return game.Definition{
		Kind:       game.KindNightDay,
		Title:      "Night & Day",
		MinPlayers: MinPlayers,
		MaxPlayers: MaxPlayers,
		New: func(host game.Host) game.Session {
			return New(host, cfg)
		},
	}
}

type Engine struct {
	host game.Host
	cfg  Config

	seats []game.Seat
	index map[string]int
	roles map[string]Role
	alive map[string]bool

	phase    Phase
	day      int
	deadline time.Time
	winner   Team

	ready    map[string]bool
	votes    map[string]string
	attacks  map[string]string
	protects map[string]string

	lastProtected string
	log           []string
}

func New(host game.Host, cfg Config) *Engine {
	return &Engine{host: host, cfg: cfg.withDefaults()}
}

func VampireCount(n int) int {
	return max(1, n/3)
}

func (e *Engine) Init(players []game.Seat) error {
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return game.ErrInvalidRoster
	}
	index := make(map[string]int, len(players))
	for i, p := range players {
		if p.ID == "" {
			return game.ErrInvalidRoster
		}
		if _, dup := index[p.ID]; dup {
			return game.ErrInvalidRoster
		}
		index[p.ID] = i
	}

	e.seats = append([]game.Seat(nil), players...)
	e.index = index
	e.roles = e.assignRoles()
	e.alive = make(map[string]bool, len(players))
	for _, p := range players {
		e.alive[p.ID] = true
	}
	e.phase = PhaseRoleReveal
	e.day = 1
	e.deadline = time.Time{}
	e.winner = ""
	e.lastProtected = ""
	e.log = nil
	e.resetRound()
	e.host.Broadcast()
	return nil
}

func (e *Engine) assignRoles() map[string]Role {
	order := make([]string, len(e.seats))
	for i, s := range e.seats {
		order[i] = s.ID
	}
	swap := func(i, j int) { order[i], order[j] = order[j], order[i] }
	if e.cfg.Rand != nil {
		e.cfg.Rand.Shuffle(len(order), swap)
	} else {
		rand.Shuffle(len(order), swap)
	}

	vampires := VampireCount(len(order))
	roles := make(map[string]Role, len(order))
	for i, id := range order {
		switch {
		case i < vampires:
			roles[id] = RoleVampire
		case i == vampires:
			roles[id] = RoleDoctor
		default:
			roles[id] = RoleVillager
		}
	}
	return roles
}

func (e *Engine) resetRound() {
	e.ready = map[string]bool{}
	e.votes = map[string]string{}
	e.attacks = map[string]string{}
	e.protects = map[string]string{}
}

func (e *Engine) MigrateIdentity(string) {}

func (e *Engine) Phase() Phase { return e.phase }

func (e *Engine) Role(playerID string) Role { return e.roles[playerID] }

func (e *Engine) Alive(playerID string) bool { return e.alive[playerID] }

func (e *Engine) say(msg string) {
	e.log = append(e.log, msg)
	if len(e.log) > maxLog {
		e.log = e.log[len(e.log)-maxLog:]
	}
	e.host.Log(msg)
}

func (e *Engine) aliveCount() int {
	n := 0
	for _, s := range e.seats {
		if e.alive[s.ID] {
			n++
		}
	}
	return n
}

func (e *Engine) name(id string) string {
	if i, ok := e.index[id]; ok {
		return e.seats[i].Name
	}
	return id
}
