package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	apppublic "partyhub/internal/app/public"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type PublicHandlers struct {
	publicSvc *apppublic.Service
}

func NewPublicHandlers(publicSvc *apppublic.Service) *PublicHandlers {
	return &PublicHandlers{publicSvc: publicSvc}
}

func (h *PublicHandlers) Kinds() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricPublicRequests.Add(1)
		resp, err := h.publicSvc.Kinds(r.Context())
		if err != nil {
			writePublicError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *PublicHandlers) Rooms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricPublicRequests.Add(1)
		limit, offset := ParsePagination(r)
		q := apppublic.RoomsQuery{
			GameKind: r.URL.Query().Get("game_kind"),
			Status:   r.URL.Query().Get("status"),
			Limit:    limit,
			Offset:   offset,
		}
		resp, err := h.publicSvc.Rooms(r.Context(), q)
		if err != nil {
			writePublicError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *PublicHandlers) Room() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricPublicRequests.Add(1)
		resp, err := h.publicSvc.Room(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			writePublicError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *PublicHandlers) Matches() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricPublicRequests.Add(1)
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				metricPublicErrors.Add(1)
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			limit = n
		}
		resp, err := h.publicSvc.RecentMatches(r.Context(), r.URL.Query().Get("game_kind"), limit)
		if err != nil {
			writePublicError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

// HealthHandler reports liveness. With a ping it also reports the database.
func HealthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ping == nil {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "disabled"})
			return
		}
		if err := ping(r.Context()); err != nil {
			metricHealthFailures.Add(1)
			log.Warn().Err(err).Msg("health_db_ping_failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writePublicError(w http.ResponseWriter, err error) {
	metricPublicErrors.Add(1)
	switch {
	case errors.Is(err, apppublic.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, apppublic.ErrRoomNotFound):
		WriteHTTPError(w, http.StatusNotFound, "room_not_found")
	case errors.Is(err, apppublic.ErrHistoryDisabled):
		WriteHTTPError(w, http.StatusServiceUnavailable, "history_disabled")
	default:
		log.Error().Err(err).Msg("public_request_failed")
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
