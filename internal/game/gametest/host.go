// Package gametest provides a recording game.Host for engine tests.
package gametest

import (
	"sort"
	"time"

	"partyhub/internal/game"
)

type Task struct {
	After time.Duration
	Fn    func()
}

type Host struct {
	Tasks      map[string]Task
	Broadcasts int
	Sent       []string
	Logs       []string
	Results    []game.Result
	Restarts   int
}

func NewHost() *Host {
	return &Host{Tasks: map[string]Task{}}
}

func (h *Host) Schedule(slot string, d time.Duration, fn func()) {
	h.Tasks[slot] = Task{After: d, Fn: fn}
}

func (h *Host) Cancel(slot string) { delete(h.Tasks, slot) }

func (h *Host) Broadcast() { h.Broadcasts++ }

func (h *Host) SendState(playerID string) { h.Sent = append(h.Sent, playerID) }

func (h *Host) Log(message string) { h.Logs = append(h.Logs, message) }

func (h *Host) Finish(result game.Result) { h.Results = append(h.Results, result) }

func (h *Host) Restart() { h.Restarts++ }

// Fire runs the pending task in slot as if its timer elapsed.
func (h *Host) Fire(slot string) bool {
	task, ok := h.Tasks[slot]
	if !ok {
		return false
	}
	delete(h.Tasks, slot)
	task.Fn()
	return true
}

func (h *Host) Pending() []string {
	out := make([]string, 0, len(h.Tasks))
	for slot := range h.Tasks {
		out = append(out, slot)
	}
	sort.Strings(out)
	return out
}

// Seats builds a roster p1..pn named after their ids.
func Seats(ids ...string) []game.Seat {
	out := make([]game.Seat, 0, len(ids))
	for _, id := range ids {
		out = append(out, game.Seat{ID: id, Name: "name-" + id})
	}
	return out
}
