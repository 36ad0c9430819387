package ws

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"partyhub/internal/game"
	"partyhub/internal/game/fleet"
	"partyhub/internal/game/nightday"
	"partyhub/internal/hub"

	"github.com/gorilla/websocket"
)

type testEnv struct {
	hub *hub.Coordinator
	url string
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	reg, err := game.NewRegistry(
		nightday.Definition(nightday.Config{Rand: rand.New(rand.NewPCG(1, 2))}),
		fleet.Definition(fleet.Config{Rand: rand.New(rand.NewPCG(3, 4))}),
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	h := hub.NewCoordinator(hub.Options{Games: reg})
	srv := NewServer(h, opts)
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	t.Cleanup(ts.Close)
	return &testEnv{hub: h, url: "ws" + strings.TrimPrefix(ts.URL, "http")}
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
	raw  []byte
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
	mu   sync.Mutex
	seen [][]byte
}

func (e *testEnv) dial(t *testing.T) *wsClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(e.url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(msg map[string]any) {
	c.t.Helper()
	if err := c.conn.WriteJSON(msg); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *wsClient) next() frame {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, raw, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("read: %v", err)
	}
	c.mu.Lock()
	c.seen = append(c.seen, raw)
	c.mu.Unlock()
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		c.t.Fatalf("decode %s: %v", raw, err)
	}
	f.raw = raw
	return f
}

// expect reads frames until one of type typ arrives.
func (c *wsClient) expect(typ string) frame {
	c.t.Helper()
	for range 50 {
		f := c.next()
		if f.Type == typ {
			return f
		}
	}
	c.t.Fatalf("no %s frame", typ)
	return frame{}
}

func (c *wsClient) expectError(code string) {
	c.t.Helper()
	f := c.expect(hub.MsgError)
	var payload hub.ErrorPayload
	_ = json.Unmarshal(f.Data, &payload)
	if payload.Code != code {
		c.t.Fatalf("error code = %q, want %q", payload.Code, code)
	}
}

type seated struct {
	Room struct {
		Code string `json:"code"`
	} `json:"room"`
	PlayerID string `json:"player_id"`
}

func decodeSeat(t *testing.T, f frame) seated {
	t.Helper()
	var s seated
	if err := json.Unmarshal(f.Data, &s); err != nil {
		t.Fatalf("decode seat: %v", err)
	}
	return s
}
