package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := parseLevel(raw)
		if !ok || got != want {
			t.Fatalf("parseLevel(%q) = %v,%v want %v,true", raw, got, ok, want)
		}
	}
	if _, ok := parseLevel(""); ok {
		t.Fatalf("expected empty level to be ignored")
	}
	if _, ok := parseLevel("loud"); ok {
		t.Fatalf("expected unknown level to be ignored")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "true")
	t.Setenv(EnvLogBypass, "not-a-bool")

	cfg := defaultConfig(ProfileRuntime)
	applyEnvOverrides(&cfg)
	if cfg.Level != zerolog.WarnLevel || cfg.Timestamp || !cfg.NoColor || cfg.Bypass {
		t.Fatalf("unexpected config after overrides: %+v", cfg)
	}
}

func TestApplyBypassSilencesLogger(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	apply(Config{Level: zerolog.DebugLevel, NoColor: true}, &buf)
	log.Info().Str("k", "v").Msg("logging.apply")
	if !strings.Contains(buf.String(), "logging.apply") {
		t.Fatalf("expected console output, got %q", buf.String())
	}

	buf.Reset()
	apply(Config{Bypass: true}, &buf)
	log.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected bypass to drop output, got %q", buf.String())
	}
}
