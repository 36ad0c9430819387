package main

import (
	"context"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"partyhub/internal/config"
	"partyhub/internal/logging"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	botCfg config.BotConfig
	seed   uint64
	think  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "party-bot",
	Short: "Plays random legal moves in a partyhub room",
	Long: `party-bot connects to a partyhub server over WebSocket, creates a room
(or joins one with --room), readies up and plays random legal moves until
the room closes.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, botCfg.WSURL, nil)
		if err != nil {
			return err
		}
		defer conn.Close()
		go func() {
			<-ctx.Done()
			_ = conn.Close()
		}()

		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		b := newBot(conn, botCfg, rand.New(rand.NewPCG(seed, seed>>1)), think)
		log.Info().Str("url", botCfg.WSURL).Str("name", botCfg.PlayerName).Uint64("seed", seed).Msg("bot_connected")
		return b.run(ctx)
	},
}

func init() {
	defaults, err := config.LoadBot()
	if err != nil {
		panic(err)
	}
	botCfg = defaults
	rootCmd.Flags().StringVar(&botCfg.WSURL, "url", defaults.WSURL, "server WebSocket URL")
	rootCmd.Flags().StringVar(&botCfg.RoomCode, "room", defaults.RoomCode, "room code to join; empty creates a room")
	rootCmd.Flags().StringVar(&botCfg.PlayerName, "name", defaults.PlayerName, "display name")
	rootCmd.Flags().StringVar(&botCfg.GameKind, "kind", defaults.GameKind, "game kind when creating a room")
	rootCmd.Flags().Uint64Var(&seed, "seed", 0, "random seed; 0 picks one from the clock")
	rootCmd.Flags().DurationVar(&think, "think", 500*time.Millisecond, "pause before each move")
}

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(logCfg); err != nil {
		panic(err)
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("bot stopped")
		os.Exit(1)
	}
}
