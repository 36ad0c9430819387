package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"partyhub/internal/app/history"
	apppublic "partyhub/internal/app/public"
	"partyhub/internal/config"
	"partyhub/internal/eventbus"
	"partyhub/internal/game"
	"partyhub/internal/game/fleet"
	"partyhub/internal/game/nightday"
	"partyhub/internal/hub"
	"partyhub/internal/logging"
	"partyhub/internal/mcpserver"
	"partyhub/internal/platform/otel"
	"partyhub/internal/store"
	httptransport "partyhub/internal/transport/http"
	"partyhub/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	appCfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(appCfg.Log); err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appCfg.Server); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg config.ServerConfig) error {
	shutdownTracing, err := otel.Setup(ctx, "partyhub", cfg)
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	a.hub.StartJanitor(ctx)
	httptransport.LogRoutes(a.router)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			a.close()
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	a.close()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown failed")
	}
	return nil
}

type app struct {
	hub      *hub.Coordinator
	router   *chi.Mux
	store    *store.Store
	recorder *history.Recorder
	bus      *eventbus.Publisher
}

// newApp wires the coordinator and its optional backends. Postgres and NATS
// are used only when configured.
func newApp(ctx context.Context, cfg config.ServerConfig) (*app, error) {
	reg, err := game.NewRegistry(
		nightday.Definition(nightday.Config{
			FirstDayDuration: cfg.FirstDayDuration,
			DayDuration:      cfg.DayDuration,
			SkipFirstDayVote: cfg.SkipFirstDayVote,
		}),
		fleet.Definition(fleet.Config{}),
	)
	if err != nil {
		return nil, err
	}

	a := &app{}
	a.hub = hub.NewCoordinator(hub.Options{
		Games:          reg,
		MaxPlayers:     cfg.MaxPlayers,
		ReconnectGrace: cfg.ReconnectGrace,
	})

	var observers hub.Observers
	var matches apppublic.MatchLister
	var ping func(context.Context) error

	if cfg.PostgresDSN != "" {
		st, err := store.New(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		a.store = st
		a.recorder = history.NewRecorder(st)
		observers = append(observers, a.recorder)
		matches = st
		ping = st.Ping
	} else {
		log.Warn().Msg("POSTGRES_DSN not set; match history disabled")
	}

	if cfg.NATSURL != "" {
		bus, err := eventbus.Connect(cfg.NATSURL)
		if err != nil {
			a.close()
			return nil, err
		}
		a.bus = bus
		observers = append(observers, bus)
	}

	if len(observers) > 0 {
		a.hub.SetLifecycleObserver(observers)
	}

	publicSvc := apppublic.NewService(a.hub, reg, matches)
	a.router = httptransport.NewRouter(httptransport.Deps{
		Public: publicSvc,
		Rooms:  a.hub,
		WS: ws.NewServer(a.hub, ws.Options{
			RateLimit: cfg.WSRateLimit,
			RateBurst: cfg.WSRateBurst,
		}),
		MCP:         mcpserver.New(publicSvc),
		Ping:        ping,
		AdminAPIKey: cfg.AdminAPIKey,
		StaticDir:   cfg.StaticDir,
	})
	return a, nil
}

// close tears down in dependency order: rooms first so their final
// notifications reach the recorder and the bus.
func (a *app) close() {
	a.hub.Shutdown()
	if a.recorder != nil {
		a.recorder.Wait()
	}
	if a.bus != nil {
		a.bus.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}
