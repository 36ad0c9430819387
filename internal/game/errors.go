package game

import "errors"

var (
	ErrWrongPhase     = errors.New("wrong_phase")
	ErrNotYourTurn    = errors.New("not_your_turn")
	ErrInvalidTarget  = errors.New("invalid_target")
	ErrInvalidAction  = errors.New("invalid_action")
	ErrUnknownPlayer  = errors.New("player_not_found")
	ErrInvalidRoster  = errors.New("invalid_player_count")
	ErrUnknownKind    = errors.New("unknown_game_kind")
	ErrNotInitialized = errors.New("game_not_initialized")
)
