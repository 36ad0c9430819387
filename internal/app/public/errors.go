package public

import "errors"

var (
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrRoomNotFound    = errors.New("room_not_found")
	ErrHistoryDisabled = errors.New("history_disabled")
)
