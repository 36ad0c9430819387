package spectatorgateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"partyhub/internal/game"
	"partyhub/internal/game/nightday"
	"partyhub/internal/hub"
)

type nopSink struct{}

func (nopSink) Send([]byte) bool { return true }

func setupRoom(t *testing.T) (*hub.Coordinator, string) {
	t.Helper()
	reg, err := game.NewRegistry(nightday.Definition(nightday.Config{}))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	c := hub.NewCoordinator(hub.Options{Games: reg})
	ctx := context.Background()
	c.Connect("host", nopSink{})
	view, err := c.CreateRoom(ctx, "host", hub.CreateRoomRequest{PlayerName: "Ada"})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	c.Connect("guest", nopSink{})
	if _, err := c.JoinRoom(ctx, "guest", hub.JoinRoomRequest{Code: view.Code, PlayerName: "Bo"}); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	return c, view.Code
}

func TestSpectatorStateOmitsPlayerIDs(t *testing.T) {
	c, code := setupRoom(t)
	server := newEventsServer(t, c)

	resp, err := http.Get(server.URL + "/api/public/rooms/" + strings.ToLower(code))
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	body := string(raw)
	if !strings.Contains(body, `"player_count":2`) {
		t.Fatalf("unexpected body: %s", body)
	}
	if strings.Contains(body, `"id"`) {
		t.Fatalf("public room leaked player ids: %s", body)
	}
}

func TestSpectatorStateMissingRoom(t *testing.T) {
	c, _ := setupRoom(t)
	req := httptest.NewRequest(http.MethodGet, "/api/public/rooms/NOPE00", nil)
	w := httptest.NewRecorder()
	newEventsServer(t, c).Config.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
