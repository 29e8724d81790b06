package config_test

import (
	"strings"
	"testing"

	"github.com/MrWong99/signdrill/internal/config"
)

func TestLoadFromReader_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader(empty): %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("default listen_addr = %q, want :8080", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("default log_level = %q, want info", cfg.Server.LogLevel)
	}
	if cfg.Providers.LLM.Name != "openai" || cfg.Providers.LLM.Model == "" {
		t.Errorf("default llm = %+v, want openai with a model", cfg.Providers.LLM)
	}
	if cfg.Providers.Audio.Model == "" || cfg.Providers.Audio.Voice == "" {
		t.Errorf("default audio = %+v, want model and voice", cfg.Providers.Audio)
	}
}

func TestLoadFromReader_FullConfig(t *testing.T) {
	t.Parallel()

	const doc = `
server:
  listen_addr: ":9090"
  log_level: debug
providers:
  llm:
    name: anthropic
    model: claude-3-5-haiku-latest
    timeout_seconds: 20
  vision:
    name: openai
    model: gpt-4o-mini
  audio:
    model: gpt-4o-mini-audio-preview
    voice: ballad
pipeline:
  check_existing: true
debug:
  output_dir: /tmp/signdrill-debug
`
	cfg, err := config.LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Server.ListenAddr != ":9090" || cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Providers.LLM.Name != "anthropic" || cfg.Providers.LLM.TimeoutSeconds != 20 {
		t.Errorf("llm = %+v", cfg.Providers.LLM)
	}
	if cfg.Providers.Vision.Model != "gpt-4o-mini" {
		t.Errorf("vision = %+v", cfg.Providers.Vision)
	}
	if !cfg.Pipeline.CheckExisting || cfg.Pipeline.SaveResults {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
	if cfg.Debug.OutputDir != "/tmp/signdrill-debug" {
		t.Errorf("debug = %+v", cfg.Debug)
	}
}

func TestLoadFromReader_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"bad log level", "server:\n  log_level: loud\n"},
		{"bad llm name", "providers:\n  llm:\n    name: skynet\n"},
		{"vision without image support", "providers:\n  vision:\n    name: anthropic\n    model: claude-3-5-haiku-latest\n"},
		{"vision without model", "providers:\n  vision:\n    name: openai\n"},
		{"unknown field", "serrver:\n  listen_addr: ':1'\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := config.LoadFromReader(strings.NewReader(tt.doc)); err == nil {
				t.Errorf("LoadFromReader(%q): want error, got nil", tt.name)
			}
		})
	}
}
