package hub

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"partyhub/internal/game"
)

func TestCreateRoomAssignsHostAndCode(t *testing.T) {
	c, _ := newTestHub(t)
	rec := connect(c, "c1")

	view, err := c.CreateRoom(context.Background(), "c1", CreateRoomRequest{PlayerName: "  Ada  "})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if len(view.Code) != 6 || strings.Trim(view.Code, codeAlphabet) != "" {
		t.Fatalf("unexpected room code %q", view.Code)
	}
	if view.GameKind != game.KindNightDay {
		t.Fatalf("game kind = %s, want default NIGHT_DAY", view.GameKind)
	}
	if view.Status != StatusLobby || len(view.Players) != 1 || !view.Players[0].IsHost || view.Players[0].Name != "Ada" {
		t.Fatalf("unexpected room: %+v", view)
	}

	raw, ok := rec.last(MsgRoomCreated)
	if !ok {
		t.Fatalf("no roomCreated frame, got %v", rec.types())
	}
	var payload RoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.PlayerID != view.Players[0].ID {
		t.Fatalf("player id = %q, want %q", payload.PlayerID, view.Players[0].ID)
	}
}

func TestCreateRoomValidation(t *testing.T) {
	c, _ := newTestHub(t)
	connect(c, "c1")
	ctx := context.Background()

	if _, err := c.CreateRoom(ctx, "c1", CreateRoomRequest{PlayerName: "   "}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("blank name = %v, want ErrInvalidRequest", err)
	}
	if _, err := c.CreateRoom(ctx, "c1", CreateRoomRequest{PlayerName: "Ada", GameKind: "CHESS"}); !errors.Is(err, game.ErrUnknownKind) {
		t.Fatalf("unknown kind = %v, want ErrUnknownKind", err)
	}
	if _, err := c.CreateRoom(ctx, "c1", CreateRoomRequest{PlayerName: "Ada", GameKind: "fleet"}); err != nil {
		t.Fatalf("CreateRoom(fleet): %v", err)
	}
	if _, err := c.CreateRoom(ctx, "c1", CreateRoomRequest{PlayerName: "Ada"}); !errors.Is(err, ErrAlreadyInRoom) {
		t.Fatalf("second room on same connection = %v, want ErrAlreadyInRoom", err)
	}
}

func TestCreateRoomResamplesCodeOnCollision(t *testing.T) {
	c, _ := newTestHub(t)
	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	c.newCode = func() string {
		code := codes[0]
		codes = codes[1:]
		return code
	}
	connect(c, "c1")
	connect(c, "c2")
	ctx := context.Background()

	first, err := c.CreateRoom(ctx, "c1", CreateRoomRequest{PlayerName: "Ada"})
	if err != nil {
		t.Fatalf("first room: %v", err)
	}
	second, err := c.CreateRoom(ctx, "c2", CreateRoomRequest{PlayerName: "Bo"})
	if err != nil {
		t.Fatalf("second room: %v", err)
	}
	if first.Code != "AAAAAA" || second.Code != "BBBBBB" {
		t.Fatalf("codes = %s, %s", first.Code, second.Code)
	}
}

func TestJoinRoomErrors(t *testing.T) {
	c, _ := newTestHub(t)
	c.maxPlayers = 2
	tb := seatPlayers(t, c, game.KindFleet, 2)
	ctx := context.Background()
	connect(c, "late")

	if _, err := c.JoinRoom(ctx, "late", JoinRoomRequest{Code: "ZZZZZZ", PlayerName: "Cy"}); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("missing room = %v, want ErrRoomNotFound", err)
	}
	if _, err := c.JoinRoom(ctx, "late", JoinRoomRequest{Code: tb.code, PlayerName: "Cy"}); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("full room = %v, want ErrRoomFull", err)
	}

	c.maxPlayers = 8
	if _, err := c.JoinRoom(ctx, "late", JoinRoomRequest{Code: strings.ToLower(tb.code), PlayerName: "player0"}); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("duplicate name = %v, want ErrNameTaken", err)
	}

	startGame(t, c, tb)
	if _, err := c.JoinRoom(ctx, "late", JoinRoomRequest{Code: tb.code, PlayerName: "Cy"}); !errors.Is(err, ErrGameAlreadyStarted) {
		t.Fatalf("started room = %v, want ErrGameAlreadyStarted", err)
	}
}

func TestJoinBroadcastsRoomUpdate(t *testing.T) {
	c, _ := newTestHub(t)
	tb := seatPlayers(t, c, game.KindNightDay, 2)

	raw, ok := tb.recs[0].last(MsgRoomUpdated)
	if !ok {
		t.Fatalf("host saw no roomUpdated: %v", tb.recs[0].types())
	}
	var payload RoomPayload
	_ = json.Unmarshal(raw, &payload)
	if len(payload.Room.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(payload.Room.Players))
	}
	if tb.recs[1].count(MsgRoomJoined) != 1 {
		t.Fatalf("joiner frames = %v", tb.recs[1].types())
	}
}

func TestStartGameRules(t *testing.T) {
	c, _ := newTestHub(t)
	ctx := context.Background()
	tb := seatPlayers(t, c, game.KindNightDay, 3)

	if err := c.StartGame(ctx, tb.conns[1]); !errors.Is(err, ErrNotHost) {
		t.Fatalf("non-host start = %v, want ErrNotHost", err)
	}
	if err := c.StartGame(ctx, tb.conns[0]); !errors.Is(err, ErrPlayersNotReady) {
		t.Fatalf("unready start = %v, want ErrPlayersNotReady", err)
	}
	for _, connID := range tb.conns {
		if err := c.ToggleReady(ctx, connID); err != nil {
			t.Fatalf("ToggleReady: %v", err)
		}
	}
	if err := c.StartGame(ctx, tb.conns[0]); !errors.Is(err, game.ErrInvalidRoster) {
		t.Fatalf("three-player night/day = %v, want ErrInvalidRoster", err)
	}
	if tb.recs[0].count(MsgReadyToStart) != 0 {
		t.Fatal("readyToStart sent for an unplayable roster")
	}

	connect(c, "c4")
	if _, err := c.JoinRoom(ctx, "c4", JoinRoomRequest{Code: tb.code, PlayerName: "Dee"}); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	if err := c.ToggleReady(ctx, "c4"); err != nil {
		t.Fatalf("ToggleReady: %v", err)
	}
	if tb.recs[0].count(MsgReadyToStart) != 1 {
		t.Fatalf("expected one readyToStart, got %v", tb.recs[0].types())
	}
	if err := c.StartGame(ctx, tb.conns[0]); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if roomStatus(t, c, tb.code) != StatusPlaying {
		t.Fatal("room should be PLAYING")
	}
	for i, rec := range tb.recs {
		types := rec.types()
		if rec.count(MsgGameStarted) != 1 || types[len(types)-1] != MsgGameState {
			t.Fatalf("player %d frames = %v", i, types)
		}
	}
	if err := c.ToggleReady(ctx, tb.conns[1]); !errors.Is(err, ErrGameAlreadyStarted) {
		t.Fatalf("ToggleReady in game = %v, want ErrGameAlreadyStarted", err)
	}
}

func TestLeaveRoomInLobbyPassesHost(t *testing.T) {
	c, _ := newTestHub(t)
	ctx := context.Background()
	tb := seatPlayers(t, c, game.KindNightDay, 2)

	if err := c.LeaveRoom(ctx, tb.conns[0]); err != nil {
		t.Fatalf("LeaveRoom: %v", err)
	}
	if tb.recs[0].count(MsgLeftRoom) != 1 {
		t.Fatalf("leaver frames = %v", tb.recs[0].types())
	}
	room, err := c.PublicRoom(tb.code)
	if err != nil {
		t.Fatalf("PublicRoom: %v", err)
	}
	if room.PlayerCount != 1 || !room.Players[0].IsHost {
		t.Fatalf("host not passed on: %+v", room)
	}
	if err := c.StartGame(ctx, tb.conns[0]); !errors.Is(err, ErrNotInRoom) {
		t.Fatalf("leaver still bound: %v", err)
	}

	if err := c.LeaveRoom(ctx, tb.conns[1]); err != nil {
		t.Fatalf("LeaveRoom: %v", err)
	}
	if _, err := c.PublicRoom(tb.code); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("empty room should be destroyed, got %v", err)
	}
}

func TestLeaveDuringGameClosesRoom(t *testing.T) {
	c, _ := newTestHub(t)
	tb := seatPlayers(t, c, game.KindFleet, 2)
	startGame(t, c, tb)

	if err := c.LeaveRoom(context.Background(), tb.conns[1]); err != nil {
		t.Fatalf("LeaveRoom: %v", err)
	}
	if tb.recs[0].count(MsgRoomClosed) != 1 {
		t.Fatalf("remaining player frames = %v", tb.recs[0].types())
	}
	if tb.recs[1].count(MsgRoomClosed) != 0 {
		t.Fatal("leaver should not receive roomClosed")
	}
	raw, _ := tb.recs[0].last(MsgRoomClosed)
	var closed ClosedPayload
	_ = json.Unmarshal(raw, &closed)
	if closed.Reason != ClosePlayerLeft || closed.ByName != "Player1" {
		t.Fatalf("closed payload = %+v", closed)
	}
}

func TestResetToLobby(t *testing.T) {
	c, _ := newTestHub(t)
	ctx := context.Background()
	tb := seatPlayers(t, c, game.KindFleet, 2)

	if err := c.ResetToLobby(ctx, tb.conns[0]); !errors.Is(err, ErrNoActiveGame) {
		t.Fatalf("reset in lobby = %v, want ErrNoActiveGame", err)
	}
	startGame(t, c, tb)
	if err := c.ResetToLobby(ctx, tb.conns[1]); !errors.Is(err, ErrNotHost) {
		t.Fatalf("reset by guest = %v, want ErrNotHost", err)
	}
	if err := c.ResetToLobby(ctx, tb.conns[0]); err != nil {
		t.Fatalf("ResetToLobby: %v", err)
	}
	room, _ := c.PublicRoom(tb.code)
	if room.Status != StatusLobby {
		t.Fatalf("status = %s, want LOBBY", room.Status)
	}
	for _, p := range room.Players {
		if p.IsReady {
			t.Fatalf("readiness not cleared: %+v", p)
		}
	}
	if err := c.SubmitAction(ctx, tb.conns[0], action("SHOOT", nil)); !errors.Is(err, ErrNoActiveGame) {
		t.Fatalf("action after reset = %v, want ErrNoActiveGame", err)
	}
}

func TestPublicRoomsHideLogicalIDs(t *testing.T) {
	c, _ := newTestHub(t)
	tb := seatPlayers(t, c, game.KindNightDay, 2)

	rooms := c.PublicRooms()
	if len(rooms) != 1 || rooms[0].Code != tb.code {
		t.Fatalf("rooms = %+v", rooms)
	}
	raw, _ := json.Marshal(rooms)
	for _, id := range tb.ids {
		if strings.Contains(string(raw), id) {
			t.Fatalf("public view leaks player id %s: %s", id, raw)
		}
	}
}

func TestFinishedGameFeedHidesLogicalIDs(t *testing.T) {
	inits := 0
	c, _ := newTestHub(t, scriptedDefinition(&inits))
	obs := &observed{}
	c.SetLifecycleObserver(Observers{obs})
	tb := seatPlayers(t, c, "SCRIPTED", 3)
	startGame(t, c, tb)
	if err := c.SubmitAction(context.Background(), tb.conns[2], action("MOVE", nil)); err != nil {
		t.Fatalf("MOVE: %v", err)
	}
	if err := c.SubmitAction(context.Background(), tb.conns[2], action("END", nil)); err != nil {
		t.Fatalf("END: %v", err)
	}

	feed, err := c.RoomFeed(tb.code)
	if err != nil {
		t.Fatalf("RoomFeed: %v", err)
	}
	replay, _ := json.Marshal(feed.ReplayAfter(""))
	observedResult, _ := json.Marshal(obs.result)
	for _, id := range tb.ids {
		if strings.Contains(string(replay), id) {
			t.Fatalf("feed leaks player id %s: %s", id, replay)
		}
		if strings.Contains(string(observedResult), id) {
			t.Fatalf("observer result leaks player id %s: %s", id, observedResult)
		}
	}
	if !strings.Contains(string(replay), `"moves":{"Player2":1}`) {
		t.Fatalf("summary not keyed by seat name: %s", replay)
	}
	if seats, _ := obs.result.Summary["seats"].([]any); len(seats) != 1 || seats[0] != "Player0" {
		t.Fatalf("summary seats = %v", obs.result.Summary["seats"])
	}
}
