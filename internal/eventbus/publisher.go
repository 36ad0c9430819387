package eventbus

import (
	"encoding/json"
	"strings"
	"time"

	"partyhub/internal/game"
	"partyhub/internal/hub"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const subjectPrefix = "partyhub.room."

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Event is the JSON body published for each room milestone.
type Event struct {
	Type      string         `json:"type"`
	Room      string         `json:"room"`
	GameKind  string         `json:"game_kind"`
	Players   []string       `json:"players"`
	Winner    string         `json:"winner,omitempty"`
	Summary   map[string]any `json:"summary,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Timestamp time.Time      `json:"ts"`
}

// Publisher fans room lifecycle events out to NATS. A nil *Publisher is a
// valid no-op observer.
type Publisher struct {
	conn Conn
	nc   *nats.Conn
	now  func() time.Time
}

// Connect dials url and returns a publisher that owns the connection.
func Connect(url string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("partyhub"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats_disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats_reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}
	p := NewPublisher(nc)
	p.nc = nc
	return p, nil
}

func NewPublisher(conn Conn) *Publisher {
	return &Publisher{conn: conn, now: time.Now}
}

func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}

// Subject returns the subject an event type is published on.
func Subject(eventType string) string {
	return subjectPrefix + strings.ToLower(eventType)
}

func (p *Publisher) OnRoomOpened(meta hub.RoomMeta) {
	p.publish(p.event("opened", meta))
}

func (p *Publisher) OnGameStarted(meta hub.RoomMeta) {
	p.publish(p.event("game_started", meta))
}

func (p *Publisher) OnGameFinished(meta hub.RoomMeta, result game.Result) {
	ev := p.event("game_finished", meta)
	ev.Winner = result.Winner
	ev.Summary = result.Summary
	p.publish(ev)
}

func (p *Publisher) OnRoomClosed(meta hub.RoomMeta, reason string) {
	ev := p.event("closed", meta)
	ev.Reason = reason
	p.publish(ev)
}

func (p *Publisher) event(typ string, meta hub.RoomMeta) Event {
	names := make([]string, 0, len(meta.Players))
	for _, s := range meta.Players {
		names = append(names, s.Name)
	}
	ev := Event{
		Type:     typ,
		Room:     meta.Code,
		GameKind: string(meta.Kind),
		Players:  names,
	}
	if p != nil {
		ev.Timestamp = p.now().UTC()
	}
	return ev
}

func (p *Publisher) publish(ev Event) {
	if p == nil || p.conn == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("eventbus_encode_failed")
		return
	}
	if err := p.conn.Publish(Subject(ev.Type), data); err != nil {
		metricPublishErrors.Add(1)
		log.Warn().Err(err).Str("room", ev.Room).Str("type", ev.Type).Msg("eventbus_publish_failed")
		return
	}
	metricPublished.Add(1)
}
