package public

import (
	"context"
	"errors"
	"strings"

	"partyhub/internal/game"
	"partyhub/internal/hub"
	"partyhub/internal/store"
)

const (
	roomsMaxPage   = 100
	matchesMaxPage = 200
)

// RoomDirectory is the coordinator's public read side.
type RoomDirectory interface {
	PublicRooms() []hub.PublicRoomView
	PublicRoom(code string) (hub.PublicRoomView, error)
}

type MatchLister interface {
	ListRecentMatches(ctx context.Context, gameKind string, limit int) ([]store.Match, error)
}

type Service struct {
	rooms   RoomDirectory
	games   *game.Registry
	matches MatchLister
}

// NewService builds the public read service. matches may be nil when no
// history database is configured.
func NewService(rooms RoomDirectory, games *game.Registry, matches MatchLister) *Service {
	return &Service{rooms: rooms, games: games, matches: matches}
}

func (s *Service) Rooms(ctx context.Context, q RoomsQuery) (*RoomsResponse, error) {
	kind := string(game.NormalizeKind(game.Kind(q.GameKind)))
	status := strings.ToUpper(strings.TrimSpace(q.Status))
	all := s.rooms.PublicRooms()
	filtered := make([]hub.PublicRoomView, 0, len(all))
	for _, r := range all {
		if kind != "" && string(r.GameKind) != kind {
			continue
		}
		if status != "" && string(r.Status) != status {
			continue
		}
		filtered = append(filtered, r)
	}
	total := len(filtered)
	limit := clampPage(q.Limit, roomsMaxPage, 50)
	if q.Offset < 0 {
		return nil, ErrInvalidRequest
	}
	if q.Offset >= total {
		return &RoomsResponse{Items: []hub.PublicRoomView{}, Total: total, Limit: limit, Offset: q.Offset}, nil
	}
	end := min(q.Offset+limit, total)
	return &RoomsResponse{Items: filtered[q.Offset:end], Total: total, Limit: limit, Offset: q.Offset}, nil
}

func (s *Service) Room(ctx context.Context, code string) (*hub.PublicRoomView, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrInvalidRequest
	}
	room, err := s.rooms.PublicRoom(code)
	if errors.Is(err, hub.ErrRoomNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Service) Kinds(ctx context.Context) (*KindsResponse, error) {
	defs := s.games.Definitions()
	out := make([]KindItem, 0, len(defs))
	for _, d := range defs {
		out = append(out, KindItem{
			Kind:       string(d.Kind),
			Title:      d.Title,
			MinPlayers: d.MinPlayers,
			MaxPlayers: d.MaxPlayers,
			Sizes:      d.Sizes,
		})
	}
	return &KindsResponse{Items: out}, nil
}

func (s *Service) RecentMatches(ctx context.Context, gameKind string, limit int) (*MatchesResponse, error) {
	if s.matches == nil {
		return nil, ErrHistoryDisabled
	}
	limit = clampPage(limit, matchesMaxPage, 20)
	kind := string(game.NormalizeKind(game.Kind(gameKind)))
	items, err := s.matches.ListRecentMatches(ctx, kind, limit)
	if err != nil {
		return nil, err
	}
	out := make([]MatchItem, 0, len(items))
	for _, m := range items {
		players := make([]MatchPlayer, 0, len(m.Players))
		for _, p := range m.Players {
			players = append(players, MatchPlayer{Name: p.Name})
		}
		out = append(out, MatchItem{
			ID:         m.ID,
			RoomCode:   m.RoomCode,
			GameKind:   m.GameKind,
			Winner:     m.Winner,
			Players:    players,
			Summary:    m.Summary,
			StartedAt:  m.StartedAt,
			FinishedAt: m.FinishedAt,
		})
	}
	return &MatchesResponse{Items: out, Limit: limit}, nil
}

func clampPage(limit, ceiling, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}
