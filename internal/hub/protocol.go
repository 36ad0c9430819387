package hub

import (
	"encoding/json"

	"partyhub/internal/game"
)

// Outbound message types.
const (
	MsgRoomCreated     = "roomCreated"
	MsgRoomJoined      = "roomJoined"
	MsgRejoinSucceeded = "rejoinSucceeded"
	MsgRoomUpdated     = "roomUpdated"
	MsgReadyToStart    = "readyToStart"
	MsgGameStarted     = "gameStarted"
	MsgGamePaused      = "gamePaused"
	MsgGameResumed     = "gameResumed"
	MsgRoomClosed      = "roomClosed"
	MsgGameState       = "gameState"
	MsgGameLog         = "gameLog"
	MsgLeftRoom        = "leftRoom"
	MsgError           = "error"
)

// Room close reasons.
const (
	CloseReconnectTimeout = "reconnect_timeout"
	ClosePlayerLeft       = "player_left"
	CloseEmpty            = "room_empty"
	CloseShutdown         = "server_shutdown"
)

type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type RoomPayload struct {
	Room     RoomView `json:"room"`
	PlayerID string   `json:"player_id,omitempty"`
}

type ReadyPayload struct {
	CanStart bool `json:"can_start"`
}

type PausedPayload struct {
	ByName string `json:"by_name"`
}

type ClosedPayload struct {
	Reason string `json:"reason"`
	ByName string `json:"by_name,omitempty"`
}

type StatePayload struct {
	ProtocolVersion string    `json:"protocol_version"`
	GameKind        game.Kind `json:"game_kind"`
	State           any       `json:"state"`
}

type LogPayload struct {
	Message string `json:"message"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func encode(msgType string, data any) ([]byte, error) {
	return json.Marshal(Envelope{Type: msgType, Data: data})
}

// Requests.

type CreateRoomRequest struct {
	PlayerName string    `json:"player_name"`
	GameKind   game.Kind `json:"game_kind"`
	Avatar     string    `json:"avatar"`
}

type JoinRoomRequest struct {
	Code       string `json:"code"`
	PlayerName string `json:"player_name"`
	Avatar     string `json:"avatar"`
}

type RejoinRequest struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id"`
}
