package httptransport

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apppublic "partyhub/internal/app/public"
	"partyhub/internal/mcpserver"
	"partyhub/internal/spectatorgateway"
	"partyhub/internal/ws"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Deps are the components mounted by NewRouter. Ping may be nil when the
// server runs without a database.
type Deps struct {
	Public      *apppublic.Service
	Rooms       spectatorgateway.Rooms
	WS          *ws.Server
	MCP         *mcpserver.Server
	Ping        func(ctx context.Context) error
	AdminAPIKey string
	StaticDir   string
}

func NewRouter(d Deps) *chi.Mux {
	publicHandlers := NewPublicHandlers(d.Public)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", HealthHandler(d.Ping))
	// Upgraded connections log their own lifecycle in package ws.
	r.Get("/ws", d.WS.HandleWS)

	r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", d.MCP.Handler())
	r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", d.MCP.Handler())
	r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", d.MCP.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/public/kinds", publicHandlers.Kinds())
		r.Get("/public/rooms", publicHandlers.Rooms())
		r.Get("/public/rooms/{code}", publicHandlers.Room())
		r.Get("/public/rooms/{code}/state", spectatorgateway.StateHandler(d.Rooms))
		r.Get("/public/rooms/{code}/events", spectatorgateway.EventsHandler(d.Rooms))
		r.Get("/public/matches", publicHandlers.Matches())

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(d.AdminAPIKey))
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})

	if d.StaticDir != "" {
		if info, err := os.Stat(d.StaticDir); err == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(filepath.Clean(d.StaticDir))))
		} else {
			log.Warn().Str("path", d.StaticDir).Msg("static directory not found; skipping catch-all static route")
		}
	}
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
