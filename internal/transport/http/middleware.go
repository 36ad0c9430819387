package httptransport

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"partyhub/internal/logging"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

// APILogMiddleware writes one JSON access line per request to the shared log
// sink. Bodies and headers are never logged.
func APILogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), nil)),
		&httplog.Options{
			Level:         slog.LevelInfo,
			Schema:        httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogExtraAttrs: requestAttrs,
		},
	)
}

func requestAttrs(req *http.Request, _ string, _ int) []slog.Attr {
	route := req.URL.Path
	rc := chi.RouteContext(req.Context())
	if rc != nil && rc.RoutePattern() != "" {
		route = rc.RoutePattern()
	}
	attrs := []slog.Attr{
		slog.String("request_id", chimw.GetReqID(req.Context())),
		slog.String("route", route),
	}
	if rc != nil {
		if code := rc.URLParam("code"); code != "" {
			attrs = append(attrs, slog.String("room", code))
		}
	}
	if isSSERequest(req) {
		attrs = append(attrs, slog.Bool("stream", true))
	}
	return attrs
}

func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

func AdminAuthMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey != "" {
				if !CheckAdminAuth(r, adminKey) {
					metricAdminRejected.Add(1)
					WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func CheckAdminAuth(r *http.Request, adminKey string) bool {
	if v := r.Header.Get("X-Admin-Key"); v != "" {
		return keyEqual(v, adminKey)
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
		return keyEqual(token, adminKey)
	}
	return false
}

func keyEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// ParsePagination reads limit and offset, ignoring malformed values and
// clamping limit to 1..maxPageLimit.
func ParsePagination(r *http.Request) (int, int) {
	q := r.URL.Query()
	limit, offset := defaultPageLimit, 0
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		limit = min(max(n, 1), maxPageLimit)
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		offset = n
	}
	return limit, offset
}

func isSSERequest(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		return true
	}
	path := r.URL.Path
	return strings.HasPrefix(path, "/api/public/rooms/") && strings.HasSuffix(path, "/events")
}
