package autoload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	configx "github.com/tanpawarit/vapi-caller/pkg/config"
)

func TestReloadReadsCommandEnvFile(t *testing.T) {
	for _, key := range []string{"LOG_LEVEL", "LOG_DEBUG", "LOG_PRETTY_FORMAT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	path := filepath.Join(t.TempDir(), "custom.env")
	if err := os.WriteFile(path, []byte("LOG_LEVEL=warn\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	if err := Reload(configx.WithEnvFile(path)); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := log.Logger.GetLevel(); got != zerolog.WarnLevel {
		t.Fatalf("level = %v, want warn", got)
	}
}

func TestReloadMissingEnvFile(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	if err := Reload(configx.WithEnvFile(filepath.Join(t.TempDir(), "nope.env"))); err == nil {
		t.Fatal("expected error for missing env file")
	}
}
