package ws

import "encoding/json"

// Inbound message types.
const (
	MsgCreateRoom   = "createRoom"
	MsgJoinRoom     = "joinRoom"
	MsgRejoinRoom   = "rejoinRoom"
	MsgToggleReady  = "toggleReady"
	MsgStartGame    = "startGame"
	MsgGameAction   = "gameAction"
	MsgGetState     = "getState"
	MsgLeaveRoom    = "leaveRoom"
	MsgResetToLobby = "resetToLobby"
)

// Inbound is the common header of every client frame. Request fields sit
// next to type; gameAction carries the engine payload verbatim.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
