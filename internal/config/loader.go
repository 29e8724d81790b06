package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Defaults applied by [Validate] when fields are unset.
const (
	defaultListenAddr = ":8080"
	defaultLLMName    = "openai"
	defaultLLMModel   = "gpt-4o-mini"
	defaultAudioModel = "gpt-4o-mini-audio-preview"
	defaultAudioVoice = "ash"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values, applying
// defaults for unset fields. It returns a joined error listing all validation
// failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server.
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = defaultListenAddr
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// LLM backend.
	if cfg.Providers.LLM.Name == "" {
		cfg.Providers.LLM.Name = defaultLLMName
	}
	if cfg.Providers.LLM.Model == "" {
		cfg.Providers.LLM.Model = defaultLLMModel
	}
	if !slices.Contains(ValidLLMNames, cfg.Providers.LLM.Name) {
		errs = append(errs, fmt.Errorf("providers.llm.name %q is invalid; valid values: %v", cfg.Providers.LLM.Name, ValidLLMNames))
	}

	// Vision backend. Empty name means "reuse the LLM backend".
	if cfg.Providers.Vision.Name != "" {
		if !slices.Contains(ValidLLMNames, cfg.Providers.Vision.Name) {
			errs = append(errs, fmt.Errorf("providers.vision.name %q is invalid; valid values: %v", cfg.Providers.Vision.Name, ValidLLMNames))
		}
		if cfg.Providers.Vision.Name != "openai" {
			errs = append(errs, fmt.Errorf("providers.vision.name %q has no image support; only \"openai\" is vision-capable", cfg.Providers.Vision.Name))
		}
		if cfg.Providers.Vision.Model == "" {
			errs = append(errs, errors.New("providers.vision.model is required when providers.vision.name is set"))
		}
	} else if cfg.Providers.LLM.Name != "openai" {
		slog.Warn("no vision backend configured and the llm backend has no image support; the recognize endpoint will fail",
			"llm", cfg.Providers.LLM.Name)
	}

	// Audio backend.
	if cfg.Providers.Audio.Model == "" {
		cfg.Providers.Audio.Model = defaultAudioModel
	}
	if cfg.Providers.Audio.Voice == "" {
		cfg.Providers.Audio.Voice = defaultAudioVoice
	}

	// Extension flags are accepted but inert; say so once at startup.
	if cfg.Pipeline.CheckExisting {
		slog.Warn("pipeline.check_existing is set but no result store exists; flag is a no-op")
	}
	if cfg.Pipeline.SaveResults {
		slog.Warn("pipeline.save_results is set but no database write path exists; flag is a no-op")
	}

	return errors.Join(errs...)
}
