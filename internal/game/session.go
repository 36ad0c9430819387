package game

import (
	"encoding/json"
	"strings"
	"time"
)

const ProtocolVersion = "1.0"

// Kind names a registered engine.
type Kind string

const (
	KindNightDay Kind = "NIGHT_DAY"
	KindFleet    Kind = "FLEET"
)

// Seat is one roster entry handed to an engine at Init. Order is turn order.
type Seat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Action is a decoded gameAction payload. Raw keeps the full object so each
// engine can decode its own fields.
type Action struct {
	Type string
	Raw  json.RawMessage
}

func ParseAction(raw json.RawMessage) (Action, error) {
	var head struct {
		Type string `json:"type"`
	}
	if len(raw) == 0 {
		return Action{}, ErrInvalidAction
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return Action{}, ErrInvalidAction
	}
	head.Type = strings.ToUpper(strings.TrimSpace(head.Type))
	if head.Type == "" {
		return Action{}, ErrInvalidAction
	}
	return Action{Type: head.Type, Raw: raw}, nil
}

// Decode unmarshals the action payload into v.
func (a Action) Decode(v any) error {
	if len(a.Raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(a.Raw, v); err != nil {
		return ErrInvalidAction
	}
	return nil
}

// Result is reported once when an engine reaches its terminal phase.
type Result struct {
	Winner  string         `json:"winner"`
	Summary map[string]any `json:"summary,omitempty"`
}

// Session is the contract every engine implements. All calls for one room
// are serialised by the room; implementations need no locking.
type Session interface {
	// Init assigns initial per-player state and pushes the first snapshots.
	Init(players []Seat) error
	HandleAction(playerID string, action Action) error
	// StateFor returns the view of the game as playerID may see it.
	StateFor(playerID string) (any, error)
	// MigrateIdentity is called after playerID rebinds to a new connection.
	MigrateIdentity(playerID string)
}

// Host is the room-side surface an engine talks to. Every method must be
// called from inside a Session method or a scheduled task.
type Host interface {
	// Schedule runs fn after d. A later Schedule or Cancel on the same slot
	// supersedes it.
	Schedule(slot string, d time.Duration, fn func())
	Cancel(slot string)
	Broadcast()
	SendState(playerID string)
	Log(message string)
	Finish(result Result)
	// Restart asks the room to replace this session with a fresh instance of
	// the same kind once the current call returns.
	Restart()
}
