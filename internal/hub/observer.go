package hub

import (
	"time"

	"partyhub/internal/game"
)

type RoomMeta struct {
	Code      string
	Kind      game.Kind
	Players   []game.Seat
	CreatedAt time.Time
	StartedAt time.Time
}

// LifecycleObserver is notified of room milestones. Calls happen under the
// room lock, so implementations must not block.
type LifecycleObserver interface {
	OnRoomOpened(meta RoomMeta)
	OnGameStarted(meta RoomMeta)
	OnGameFinished(meta RoomMeta, result game.Result)
	OnRoomClosed(meta RoomMeta, reason string)
}

// Observers fans notifications out to several observers in order.
type Observers []LifecycleObserver

func (o Observers) OnRoomOpened(meta RoomMeta) {
	for _, obs := range o {
		obs.OnRoomOpened(meta)
	}
}

func (o Observers) OnGameStarted(meta RoomMeta) {
	for _, obs := range o {
		obs.OnGameStarted(meta)
	}
}

func (o Observers) OnGameFinished(meta RoomMeta, result game.Result) {
	for _, obs := range o {
		obs.OnGameFinished(meta, result)
	}
}

func (o Observers) OnRoomClosed(meta RoomMeta, reason string) {
	for _, obs := range o {
		obs.OnRoomClosed(meta, reason)
	}
}

type nopObserver struct{}

func (nopObserver) OnRoomOpened(RoomMeta)                {}
func (nopObserver) OnGameStarted(RoomMeta)               {}
func (nopObserver) OnGameFinished(RoomMeta, game.Result) {}
func (nopObserver) OnRoomClosed(RoomMeta, string)        {}
