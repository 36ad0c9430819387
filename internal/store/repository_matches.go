package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const matchColumns = `id, room_code, game_kind, winner, players, summary, started_at, finished_at`

func (s *Store) InsertMatch(ctx context.Context, m Match) error {
	if m.ID == "" {
		m.ID = NewID()
	}
	players, err := json.Marshal(m.Players)
	if err != nil {
		return fmt.Errorf("encode players: %w", err)
	}
	if m.Summary == nil {
		m.Summary = map[string]any{}
	}
	summary, err := json.Marshal(m.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO matches (`+matchColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.RoomCode, m.GameKind, m.Winner, players, summary, m.StartedAt, m.FinishedAt,
	)
	return err
}

func (s *Store) GetMatch(ctx context.Context, id string) (Match, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	m, err := scanMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Match{}, ErrNotFound
	}
	return m, err
}

// ListRecentMatches returns finished matches newest first, optionally
// filtered by game kind.
func (s *Store) ListRecentMatches(ctx context.Context, gameKind string, limit int) ([]Match, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var (
		rows pgx.Rows
		err  error
	)
	if gameKind == "" {
		rows, err = s.Pool.Query(ctx,
			`SELECT `+matchColumns+` FROM matches ORDER BY finished_at DESC, id DESC LIMIT $1`, limit)
	} else {
		rows, err = s.Pool.Query(ctx,
			`SELECT `+matchColumns+` FROM matches WHERE game_kind = $1 ORDER BY finished_at DESC, id DESC LIMIT $2`,
			gameKind, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Match, 0, limit)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMatch(row pgx.Row) (Match, error) {
	var (
		m       Match
		players []byte
		summary []byte
	)
	if err := row.Scan(&m.ID, &m.RoomCode, &m.GameKind, &m.Winner, &players, &summary, &m.StartedAt, &m.FinishedAt); err != nil {
		return Match{}, err
	}
	if err := json.Unmarshal(players, &m.Players); err != nil {
		return Match{}, fmt.Errorf("decode players: %w", err)
	}
	if err := json.Unmarshal(summary, &m.Summary); err != nil {
		return Match{}, fmt.Errorf("decode summary: %w", err)
	}
	return m, nil
}
