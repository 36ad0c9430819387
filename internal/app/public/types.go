package public

import (
	"time"

	"partyhub/internal/hub"
)

type RoomsQuery struct {
	GameKind string
	Status   string
	Limit    int
	Offset   int
}

type RoomsResponse struct {
	Items  []hub.PublicRoomView `json:"items"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

type KindItem struct {
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	MinPlayers int    `json:"min_players"`
	MaxPlayers int    `json:"max_players"`
	Sizes      []int  `json:"sizes,omitempty"`
}

type KindsResponse struct {
	Items []KindItem `json:"items"`
}

type MatchPlayer struct {
	Name string `json:"name"`
}

// MatchItem is a finished game as shown publicly. Player ids stay private.
type MatchItem struct {
	ID         string         `json:"id"`
	RoomCode   string         `json:"room_code"`
	GameKind   string         `json:"game_kind"`
	Winner     string         `json:"winner"`
	Players    []MatchPlayer  `json:"players"`
	Summary    map[string]any `json:"summary,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

type MatchesResponse struct {
	Items []MatchItem `json:"items"`
	Limit int         `json:"limit"`
}
