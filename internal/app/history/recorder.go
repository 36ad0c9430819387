package history

import (
	"context"
	"sync"
	"time"

	"partyhub/internal/game"
	"partyhub/internal/hub"
	"partyhub/internal/store"

	"github.com/rs/zerolog/log"
)

const writeTimeout = 5 * time.Second

type MatchWriter interface {
	InsertMatch(ctx context.Context, m store.Match) error
}

// Recorder persists finished games. Writes run off the room lock.
type Recorder struct {
	store MatchWriter
	now   func() time.Time
	wg    sync.WaitGroup
}

func NewRecorder(st MatchWriter) *Recorder {
	return &Recorder{store: st, now: time.Now}
}

func (r *Recorder) OnRoomOpened(hub.RoomMeta)         {}
func (r *Recorder) OnGameStarted(hub.RoomMeta)        {}
func (r *Recorder) OnRoomClosed(hub.RoomMeta, string) {}

func (r *Recorder) OnGameFinished(meta hub.RoomMeta, result game.Result) {
	m := store.Match{
		ID:         store.NewID(),
		RoomCode:   meta.Code,
		GameKind:   string(meta.Kind),
		Winner:     result.Winner,
		Summary:    result.Summary,
		Players:    make([]store.MatchPlayer, 0, len(meta.Players)),
		StartedAt:  meta.StartedAt,
		FinishedAt: r.now().UTC(),
	}
	for _, p := range meta.Players {
		m.Players = append(m.Players, store.MatchPlayer{ID: p.ID, Name: p.Name})
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := r.store.InsertMatch(ctx, m); err != nil {
			log.Error().Err(err).Str("room", m.RoomCode).Str("match_id", m.ID).Msg("match_record_failed")
			return
		}
		log.Info().Str("room", m.RoomCode).Str("match_id", m.ID).Str("winner", m.Winner).Msg("match_recorded")
	}()
}

// Wait blocks until pending writes finish.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
