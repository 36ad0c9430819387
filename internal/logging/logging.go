package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"partyhub/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	outputMu sync.RWMutex
	output   io.Writer = os.Stdout
)

// Init installs the global zerolog logger described by cfg.
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var sink io.Writer = os.Stdout
	if path := strings.TrimSpace(cfg.File); path != "" {
		fw, err := newSizeLimitedWriter(path, cfg.MaxMB)
		if err != nil {
			return err
		}
		sink = io.MultiWriter(os.Stdout, fw)
	}
	setWriter(sink)

	var out io.Writer = sink
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: sink}
	}

	zerolog.SetGlobalLevel(level)
	ctx := zerolog.New(out).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	logger := ctx.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return nil
}

// Writer is the raw sink shared with non-zerolog loggers (HTTP access logs).
func Writer() io.Writer {
	outputMu.RLock()
	defer outputMu.RUnlock()
	return output
}

func setWriter(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
}
