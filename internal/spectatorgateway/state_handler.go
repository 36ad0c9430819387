package spectatorgateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"partyhub/internal/stream"

	"github.com/go-chi/chi/v5"
)

func StateHandler(rooms Rooms) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if code == "" {
			writeError(w, http.StatusBadRequest, "code_required")
			return
		}
		room, err := rooms.PublicRoom(code)
		if err != nil {
			writeError(w, http.StatusNotFound, "room_not_found")
			return
		}
		metricFeedStateReads.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(room)
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

func eventSeq(ev stream.Event) int64 {
	n, _ := strconv.ParseInt(ev.EventID, 10, 64)
	return n
}
