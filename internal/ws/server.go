package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"partyhub/internal/hub"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 16 << 10
	sendBuffer     = 64
)

type Options struct {
	// RateLimit is the sustained inbound frames per second per connection.
	RateLimit float64
	RateBurst int
	NewConnID func() string
}

// Client is one WebSocket connection. It implements hub.Sink.
type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	limiter *rate.Limiter
}

func (c *Client) ID() string { return c.id }

// Send queues a frame without blocking. A client whose queue is full is
// closed and handled as a disconnect.
func (c *Client) Send(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		metricSlowClients.Add(1)
		log.Warn().Str("conn_id", c.id).Msg("ws_client_too_slow")
		c.close()
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

type Server struct {
	hub       *hub.Coordinator
	upgrader  websocket.Upgrader
	limit     rate.Limit
	burst     int
	newConnID func() string
}

func NewServer(h *hub.Coordinator, opts Options) *Server {
	s := &Server{
		hub:       h,
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		limit:     rate.Limit(opts.RateLimit),
		burst:     opts.RateBurst,
		newConnID: opts.NewConnID,
	}
	if s.limit <= 0 {
		s.limit = rate.Inf
	}
	if s.burst <= 0 {
		s.burst = 1
	}
	if s.newConnID == nil {
		s.newConnID = uuid.NewString
	}
	return s
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{
		id:      s.newConnID(),
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(s.limit, s.burst),
	}
	s.hub.Connect(client.id, client)
	metricConnectionsOpen.Add(1)
	metricConnectionsTotal.Add(1)
	log.Debug().Str("conn_id", client.id).Str("remote", r.RemoteAddr).Msg("ws_connected")

	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		c.close()
		s.hub.Disconnect(context.Background(), c.id)
		metricConnectionsOpen.Add(-1)
		log.Debug().Str("conn_id", c.id).Msg("ws_disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		metricMessagesIn.Add(1)
		if !c.limiter.Allow() {
			metricRateLimited.Add(1)
			s.sendError(c, hub.ErrRateLimited)
			continue
		}
		if err := s.dispatch(context.Background(), c, msg); err != nil {
			s.sendError(c, err)
		}
	}
}

func (s *Server) writeLoop(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch routes one client frame to the coordinator. Successful
// operations reply through the hub; only failures come back here.
func (s *Server) dispatch(ctx context.Context, c *Client, msg []byte) error {
	var in Inbound
	if err := json.Unmarshal(msg, &in); err != nil {
		return hub.ErrInvalidRequest
	}
	switch in.Type {
	case MsgCreateRoom:
		var req hub.CreateRoomRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			return hub.ErrInvalidRequest
		}
		_, err := s.hub.CreateRoom(ctx, c.id, req)
		return err
	case MsgJoinRoom:
		var req hub.JoinRoomRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			return hub.ErrInvalidRequest
		}
		_, err := s.hub.JoinRoom(ctx, c.id, req)
		return err
	case MsgRejoinRoom:
		var req hub.RejoinRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			return hub.ErrInvalidRequest
		}
		_, err := s.hub.Rejoin(ctx, c.id, req)
		return err
	case MsgToggleReady:
		return s.hub.ToggleReady(ctx, c.id)
	case MsgStartGame:
		return s.hub.StartGame(ctx, c.id)
	case MsgGameAction:
		return s.hub.SubmitAction(ctx, c.id, in.Payload)
	case MsgGetState:
		return s.hub.GetState(ctx, c.id)
	case MsgLeaveRoom:
		return s.hub.LeaveRoom(ctx, c.id)
	case MsgResetToLobby:
		return s.hub.ResetToLobby(ctx, c.id)
	default:
		return hub.ErrInvalidRequest
	}
}

func (s *Server) sendError(c *Client, err error) {
	payload := hub.ErrorPayloadFor(err)
	if payload.Code == "internal_error" {
		log.Error().Err(err).Str("conn_id", c.id).Msg("ws_request_failed")
	} else {
		log.Debug().Str("conn_id", c.id).Str("code", payload.Code).Msg("ws_request_rejected")
	}
	msg, mErr := json.Marshal(hub.Envelope{Type: hub.MsgError, Data: payload})
	if mErr != nil {
		return
	}
	c.Send(msg)
}
