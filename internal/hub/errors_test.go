package hub

import (
	"fmt"
	"testing"

	"partyhub/internal/game"
)

func TestErrorCode(t *testing.T) {
	cases := map[error]string{
		ErrRoomNotFound:                     "room_not_found",
		fmt.Errorf("join: %w", ErrRoomFull): "room_full",
		ErrGamePaused:                       "game_paused",
		game.ErrWrongPhase:                  "wrong_phase",
		game.ErrInvalidTarget:               "invalid_target",
		game.ErrUnknownPlayer:               "player_not_found",
		game.ErrInvalidRoster:               "invalid_player_count",
		fmt.Errorf("boom"):                  "internal_error",
	}
	for err, want := range cases {
		if got := ErrorCode(err); got != want {
			t.Fatalf("ErrorCode(%v) = %s, want %s", err, got, want)
		}
		if ErrorPayloadFor(err).Message == "" {
			t.Fatalf("no message for %s", want)
		}
	}
}
