package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"poker-pool/internal/config"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")
	if err := Init(config.LogConfig{Level: "debug", File: path, MaxMB: 1}); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer Close()

	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("level = %s, want debug", zerolog.GlobalLevel())
	}
	log.Info().Str("room_id", "r1").Msg("room_created")
	if _, err := Writer().Write([]byte(`{"msg":"http"}` + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "room_created") || !strings.Contains(string(b), `"msg":"http"`) {
		t.Fatalf("unexpected log content %q", b)
	}
}

func TestInitBadLevelFallsBackToInfo(t *testing.T) {
	if err := Init(config.LogConfig{Level: "chatty"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("level = %s, want info", zerolog.GlobalLevel())
	}
	if Writer() != os.Stdout {
		t.Fatal("expected stdout sink without a log file")
	}
}

func TestInitRejectsUnwritableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "node.log")
	if err := Init(config.LogConfig{File: path}); err == nil {
		t.Fatal("expected error for an unwritable log path")
	}
}

func TestInitFileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	if err := Init(config.LogConfig{Level: "info", File: path, Stdout: false}); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer Close()
	if _, ok := Writer().(*rotatingWriter); !ok {
		t.Fatalf("expected the file writer alone, got %T", Writer())
	}
}
