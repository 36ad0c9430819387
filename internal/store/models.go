package store

import "time"

type MatchPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Match struct {
	ID         string
	RoomCode   string
	GameKind   string
	Winner     string
	Players    []MatchPlayer
	Summary    map[string]any
	StartedAt  time.Time
	FinishedAt time.Time
}
