package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"poker-pool/internal/config"
)

var (
	mu     sync.Mutex
	sink   io.Writer = os.Stdout
	closer io.Closer
)

// Init configures the global zerolog logger. When cfg.File is set, output goes to the
// rotating file and, unless cfg.Stdout is false, to stdout as well.
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var out io.Writer = os.Stdout
	var fileCloser io.Closer
	if cfg.File != "" {
		w, err := newRotatingWriter(cfg.File, cfg.MaxMB)
		if err != nil {
			return err
		}
		out = w
		if cfg.Stdout {
			out = io.MultiWriter(os.Stdout, w)
		}
		fileCloser = w
	}

	var output io.Writer = out
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: out}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if n := cfg.SampleEvery; n > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(n)})
	}
	log.Logger = logger

	mu.Lock()
	if closer != nil {
		_ = closer.Close()
	}
	sink, closer = out, fileCloser
	mu.Unlock()
	return nil
}

// Writer returns the raw sink behind the global logger for other log handlers.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return sink
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	sink = os.Stdout
	return err
}
