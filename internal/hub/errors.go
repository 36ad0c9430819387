package hub

import (
	"errors"

	"partyhub/internal/game"
)

var (
	ErrRoomNotFound       = errors.New("room_not_found")
	ErrRoomFull           = errors.New("room_full")
	ErrGameAlreadyStarted = errors.New("game_already_started")
	ErrNameTaken          = errors.New("name_taken")
	ErrNotHost            = errors.New("not_host")
	ErrPlayersNotReady    = errors.New("players_not_ready")
	ErrPlayerNotFound     = errors.New("player_not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrAlreadyInRoom      = errors.New("already_in_room")
	ErrNotInRoom          = errors.New("not_in_room")
	ErrNoActiveGame       = errors.New("no_active_game")
	ErrGamePaused         = errors.New("game_paused")
	ErrRateLimited        = errors.New("rate_limited")

	errCodeSpaceExhausted = errors.New("room_code_space_exhausted")
)

var errorMessages = map[string]string{
	"room_not_found":       "Room not found.",
	"room_full":            "Room is full.",
	"game_already_started": "The game has already started.",
	"name_taken":           "That name is already taken in this room.",
	"not_host":             "Only the host can do that.",
	"players_not_ready":    "Not every player is ready.",
	"player_not_found":     "Player not found in this room.",
	"invalid_request":      "Invalid request.",
	"already_in_room":      "This connection is already in a room.",
	"not_in_room":          "Join a room first.",
	"no_active_game":       "No game is running.",
	"game_paused":          "The game is paused until everyone reconnects.",
	"rate_limited":         "Too many messages.",
	"wrong_phase":          "That action is not allowed right now.",
	"not_your_turn":        "It is not your turn.",
	"invalid_target":       "Invalid target.",
	"invalid_action":       "Invalid action.",
	"invalid_player_count": "This game does not support that many players.",
	"unknown_game_kind":    "Unknown game.",
	"internal_error":       "Something went wrong.",
}

// ErrorCode maps an operation error onto its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrRoomFull):
		return "room_full"
	case errors.Is(err, ErrGameAlreadyStarted):
		return "game_already_started"
	case errors.Is(err, ErrNameTaken):
		return "name_taken"
	case errors.Is(err, ErrNotHost):
		return "not_host"
	case errors.Is(err, ErrPlayersNotReady):
		return "players_not_ready"
	case errors.Is(err, ErrPlayerNotFound), errors.Is(err, game.ErrUnknownPlayer):
		return "player_not_found"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrAlreadyInRoom):
		return "already_in_room"
	case errors.Is(err, ErrNotInRoom):
		return "not_in_room"
	case errors.Is(err, ErrNoActiveGame), errors.Is(err, game.ErrNotInitialized):
		return "no_active_game"
	case errors.Is(err, ErrGamePaused):
		return "game_paused"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, game.ErrWrongPhase):
		return "wrong_phase"
	case errors.Is(err, game.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, game.ErrInvalidTarget):
		return "invalid_target"
	case errors.Is(err, game.ErrInvalidAction):
		return "invalid_action"
	case errors.Is(err, game.ErrInvalidRoster):
		return "invalid_player_count"
	case errors.Is(err, game.ErrUnknownKind):
		return "unknown_game_kind"
	default:
		return "internal_error"
	}
}

func ErrorPayloadFor(err error) ErrorPayload {
	code := ErrorCode(err)
	return ErrorPayload{Code: code, Message: errorMessages[code]}
}
