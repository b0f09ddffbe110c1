package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"msgdash/internal/config"
)

func restoreGlobal(t *testing.T) {
	t.Helper()
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestSetupWritesFile(t *testing.T) {
	restoreGlobal(t)
	path := filepath.Join(t.TempDir(), "logs", "msgdash.log")

	closer, err := Setup(config.LogConfig{Level: "warn", File: path}, Options{})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	log.Info().Msg("hidden")
	log.Warn().Str("key", "status").Msg("shown")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"message":"shown"`) || !strings.Contains(out, `"app":"msgdash"`) {
		t.Fatalf("unexpected log content: %s", out)
	}
}

func TestSetupVerboseMirrorsToStderr(t *testing.T) {
	restoreGlobal(t)
	var buf bytes.Buffer

	closer, err := Setup(config.LogConfig{Level: "error"}, Options{Verbose: true, Stderr: &buf})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer closer.Close()

	log.Debug().Msg("debug visible")
	if !strings.Contains(buf.String(), "debug visible") {
		t.Fatalf("verbose debug not mirrored: %q", buf.String())
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	restoreGlobal(t)
	if _, err := Setup(config.LogConfig{Level: "chatty"}, Options{}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
