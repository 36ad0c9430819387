package ws

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"partyhub/internal/hub"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestWSProtocolSchema(t *testing.T) {
	compiler := jsonschema.NewCompiler()
	data, err := os.ReadFile("../../api/schema/ws_v1.schema.json")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if err := compiler.AddResource("ws_v1.schema.json", strings.NewReader(string(data))); err != nil {
		t.Fatalf("add resource: %v", err)
	}
	schema, err := compiler.Compile("ws_v1.schema.json")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	env := newTestEnv(t, Options{})
	host := env.dial(t)
	guest := env.dial(t)
	host.send(map[string]any{"type": MsgCreateRoom, "player_name": "Ada", "game_kind": "FLEET"})
	code := decodeSeat(t, host.expect(hub.MsgRoomCreated)).Room.Code
	guest.send(map[string]any{"type": MsgJoinRoom, "code": code, "player_name": "Bo"})
	guest.expect(hub.MsgRoomJoined)
	host.send(map[string]any{"type": MsgToggleReady})
	guest.send(map[string]any{"type": MsgToggleReady})
	host.send(map[string]any{"type": MsgStartGame})
	host.expect(hub.MsgGameState)
	guest.send(map[string]any{"type": MsgStartGame})
	guest.expectError("game_already_started")
	guest.send(map[string]any{"type": MsgLeaveRoom})
	guest.expect(hub.MsgLeftRoom)
	host.expect(hub.MsgRoomClosed)

	for _, c := range []*wsClient{host, guest} {
		for i, raw := range c.seen {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				t.Fatalf("unmarshal frame %d: %v", i, err)
			}
			if err := schema.Validate(v); err != nil {
				t.Fatalf("schema validate %s: %v", raw, err)
			}
		}
	}
}
