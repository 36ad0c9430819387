package hub

import (
	"context"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	janitorInterval    = 250 * time.Millisecond
	maxTaskRunsPerRoom = 16

	gameSlotPrefix  = "game:"
	graceSlotPrefix = "grace:"
)

type roomTask struct {
	due time.Time
	fn  func()
}

func graceSlot(playerID string) string { return graceSlotPrefix + playerID }

// schedule replaces any pending task in slot. Callers hold r.mu.
func (r *Room) schedule(slot string, due time.Time, fn func()) {
	r.tasks[slot] = roomTask{due: due, fn: fn}
}

func (r *Room) cancel(slot string) {
	delete(r.tasks, slot)
}

func (r *Room) cancelPrefix(prefix string) {
	for slot := range r.tasks {
		if strings.HasPrefix(slot, prefix) {
			delete(r.tasks, slot)
		}
	}
}

// popDue removes and returns the earliest task due at now.
func (r *Room) popDue(now time.Time) (string, roomTask, bool) {
	slots := make([]string, 0, len(r.tasks))
	for slot, task := range r.tasks {
		if !task.due.After(now) {
			slots = append(slots, slot)
		}
	}
	if len(slots) == 0 {
		return "", roomTask{}, false
	}
	sort.Slice(slots, func(i, j int) bool {
		a, b := r.tasks[slots[i]], r.tasks[slots[j]]
		if a.due.Equal(b.due) {
			return slots[i] < slots[j]
		}
		return a.due.Before(b.due)
	})
	task := r.tasks[slots[0]]
	delete(r.tasks, slots[0])
	return slots[0], task, true
}

// StartJanitor fires due room tasks until ctx is done.
func (c *Coordinator) StartJanitor(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				c.RunDueTasks(now)
			}
		}
	}()
}

// RunDueTasks fires every task due at now, room by room, under each room's
// lock.
func (c *Coordinator) RunDueTasks(now time.Time) {
	for _, room := range c.snapshotRooms() {
		room.mu.Lock()
		for range maxTaskRunsPerRoom {
			if room.closed {
				break
			}
			slot, task, ok := room.popDue(now)
			if !ok {
				break
			}
			c.runTask(room, slot, task)
		}
		room.mu.Unlock()
	}
}

func (c *Coordinator) runTask(room *Room, slot string, task roomTask) {
	defer func() {
		if r := recover(); r != nil {
			metricSessionPanics.Add(1)
			log.Error().
				Str("room", room.code).
				Str("slot", slot).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("room_task_panic")
		}
	}()
	task.fn()
	c.applyRestart(room)
}
