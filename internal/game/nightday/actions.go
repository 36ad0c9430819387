package nightday

import (
	"fmt"
	"slices"
	"time"

	"partyhub/internal/game"
)

type targetPayload struct {
	TargetID string `json:"target_id"`
}

func (e *Engine) HandleAction(playerID string, action game.Action) error {
	if e.seats == nil {
		return game.ErrNotInitialized
	}
	if _, ok := e.index[playerID]; !ok {
		return game.ErrUnknownPlayer
	}
	if !knownAction(action.Type) {
		return game.ErrInvalidAction
	}
	if !slices.Contains(phaseActions[e.phase], action.Type) {
		return game.ErrWrongPhase
	}
	if !e.alive[playerID] && action.Type != ActionPlayAgain {
		return game.ErrNotYourTurn
	}

	switch action.Type {
	case ActionReady:
		e.ready[playerID] = true
		if e.allAliveReady() {
			e.startDay()
			return nil
		}
	case ActionDayReady:
		e.ready[playerID] = true
		if e.allAliveReady() {
			e.host.Cancel(slotDay)
			e.endDay()
			return nil
		}
	case ActionVote:
		var p targetPayload
		if err := action.Decode(&p); err != nil {
			return err
		}
		if p.TargetID == playerID || !e.isAliveTarget(p.TargetID) {
			return game.ErrInvalidTarget
		}
		e.votes[playerID] = p.TargetID
		if len(e.votes) == e.aliveCount() {
			e.resolveVote()
			return nil
		}
	case ActionNightAction:
		var p targetPayload
		if err := action.Decode(&p); err != nil {
			return err
		}
		if err := e.recordNightAction(playerID, p.TargetID); err != nil {
			return err
		}
		if e.nightComplete() {
			e.resolveNight()
			return nil
		}
	case ActionNightReady:
		if e.roles[playerID] != RoleVillager {
			return game.ErrNotYourTurn
		}
		e.ready[playerID] = true
		if e.nightComplete() {
			e.resolveNight()
			return nil
		}
	case ActionPlayAgain:
		e.ready[playerID] = true
		if len(e.ready) == len(e.seats) {
			e.host.Restart()
			return nil
		}
	}
	e.host.Broadcast()
	return nil
}

func knownAction(t string) bool {
	for _, actions := range phaseActions {
		if slices.Contains(actions, t) {
			return true
		}
	}
	return false
}

func (e *Engine) isAliveTarget(id string) bool {
	_, ok := e.index[id]
	return ok && e.alive[id]
}

func (e *Engine) allAliveReady() bool {
	for _, s := range e.seats {
		if e.alive[s.ID] && !e.ready[s.ID] {
			return false
		}
	}
	return true
}

func (e *Engine) recordNightAction(playerID, targetID string) error {
	switch e.roles[playerID] {
	case RoleVampire:
		if targetID == playerID || !e.isAliveTarget(targetID) || e.roles[targetID] == RoleVampire {
			return game.ErrInvalidTarget
		}
		e.attacks[playerID] = targetID
	case RoleDoctor:
		if !e.isAliveTarget(targetID) || targetID == e.lastProtected {
			return game.ErrInvalidTarget
		}
		e.protects[playerID] = targetID
	default:
		return game.ErrNotYourTurn
	}
	return nil
}

func (e *Engine) nightComplete() bool {
	for _, s := range e.seats {
		if !e.alive[s.ID] {
			continue
		}
		var done bool
		switch e.roles[s.ID] {
		case RoleVampire:
			_, done = e.attacks[s.ID]
		case RoleDoctor:
			_, done = e.protects[s.ID]
		default:
			done = e.ready[s.ID]
		}
		if !done {
			return false
		}
	}
	return true
}

func (e *Engine) startDay() {
	e.phase = PhaseDay
	e.resetRound()
	d := e.cfg.DayDuration
	if e.day == 1 {
		d = e.cfg.FirstDayDuration
	}
	e.deadline = e.cfg.Now().Add(d)
	e.host.Schedule(slotDay, d, e.endDay)
	e.say(fmt.Sprintf("Day %d begins.", e.day))
	e.host.Broadcast()
}

func (e *Engine) endDay() {
	if e.phase != PhaseDay {
		return
	}
	if e.day == 1 && e.cfg.SkipFirstDayVote {
		e.startNight()
		return
	}
	e.phase = PhaseVoting
	e.deadline = time.Time{}
	e.resetRound()
	e.say("Voting has started.")
	e.host.Broadcast()
}

func (e *Engine) resolveVote() {
	victim, tied := plurality(e.votes, e.index, false)
	switch {
	case tied || victim == "":
		e.say("The vote was tied. Nobody was eliminated.")
	default:
		e.alive[victim] = false
		e.say(fmt.Sprintf("%s was eliminated by the village.", e.name(victim)))
	}
	if e.checkWin() {
		return
	}
	e.startNight()
}

func (e *Engine) startNight() {
	e.phase = PhaseNight
	e.deadline = time.Time{}
	e.resetRound()
	e.say("Night falls.")
	e.host.Broadcast()
}

func (e *Engine) resolveNight() {
	victim, _ := plurality(e.attacks, e.index, true)
	saved := false
	for _, target := range e.protects {
		e.lastProtected = target
		if target == victim {
			saved = true
		}
	}
	switch {
	case victim != "" && !saved:
		e.alive[victim] = false
		e.say(fmt.Sprintf("%s was found dead at dawn.", e.name(victim)))
	case saved:
		e.say("The doctor saved someone tonight.")
	default:
		e.say("The night passed quietly.")
	}
	e.day++
	if e.checkWin() {
		return
	}
	e.startDay()
}

// plurality tallies votes. With seatOrder the earliest seat wins a tie;
// otherwise a tie at the top reports tied.
func plurality(votes map[string]string, index map[string]int, seatOrder bool) (string, bool) {
	tally := map[string]int{}
	for _, target := range votes {
		tally[target]++
	}
	best, bestCount, tied := "", 0, false
	for target, n := range tally {
		switch {
		case n > bestCount:
			best, bestCount, tied = target, n, false
		case n == bestCount:
			tied = true
			if index[target] < index[best] {
				best = target
			}
		}
	}
	if tied && !seatOrder {
		return "", true
	}
	return best, tied
}

func (e *Engine) checkWin() bool {
	vampires, others := 0, 0
	for _, s := range e.seats {
		if !e.alive[s.ID] {
			continue
		}
		if e.roles[s.ID] == RoleVampire {
			vampires++
		} else {
			others++
		}
	}
	switch {
	case vampires == 0:
		e.finish(TeamVillagers)
	case vampires >= others:
		e.finish(TeamVampires)
	default:
		return false
	}
	return true
}

func (e *Engine) finish(team Team) {
	e.phase = PhaseEnd
	e.winner = team
	e.deadline = time.Time{}
	e.host.Cancel(slotDay)
	e.resetRound()

	// Keyed by seat name: logical ids double as rejoin credentials.
	roles := make(map[string]string, len(e.seats))
	for _, s := range e.seats {
		roles[s.Name] = string(e.roles[s.ID])
	}
	e.host.Finish(game.Result{
		Winner: string(team),
		Summary: map[string]any{
			"days":  e.day,
			"roles": roles,
		},
	})
	e.say(fmt.Sprintf("%s win.", team))
	e.host.Broadcast()
}
