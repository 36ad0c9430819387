package spectatorgateway

import (
	"net/http"
	"time"

	"partyhub/internal/hub"
	"partyhub/internal/stream"

	"github.com/go-chi/chi/v5"
)

var pingInterval = 15 * time.Second

// Rooms is the read side of the coordinator the spectator endpoints need.
type Rooms interface {
	PublicRoom(code string) (hub.PublicRoomView, error)
	RoomFeed(code string) (*stream.Buffer, error)
}

// EventsHandler streams a room's public feed as server-sent events,
// replaying anything newer than Last-Event-ID first.
func EventsHandler(rooms Rooms) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		buf, err := rooms.RoomFeed(code)
		if err != nil {
			writeError(w, http.StatusNotFound, "room_not_found")
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		metricFeedStreamsTotal.Add(1)
		metricFeedStreamsActive.Add(1)
		defer metricFeedStreamsActive.Add(-1)

		stream.SetSSEHeaders(w)
		w.WriteHeader(http.StatusOK)

		lastEventID := r.Header.Get("Last-Event-ID")
		if lastEventID == "" {
			lastEventID = r.URL.Query().Get("last_event_id")
		}
		ch := buf.Subscribe()
		defer buf.Unsubscribe(ch)

		sent := int64(0)
		for _, ev := range buf.ReplayAfter(lastEventID) {
			if err := stream.WriteSSE(w, ev); err != nil {
				return
			}
			sent = eventSeq(ev)
			metricFeedReplayed.Add(1)
		}
		flusher.Flush()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if eventSeq(ev) <= sent {
					continue
				}
				if err := stream.WriteSSE(w, ev); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				ping := stream.Event{
					Event:    "ping",
					Room:     code,
					ServerTS: time.Now().UnixMilli(),
					Data:     map[string]any{"ts": time.Now().UnixMilli()},
				}
				if err := stream.WriteSSE(w, ping); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
