// Command signdrill is the fingerspelling practice scoring server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lpernett/godotenv"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/signdrill/internal/agent"
	"github.com/MrWong99/signdrill/internal/config"
	"github.com/MrWong99/signdrill/internal/graph"
	"github.com/MrWong99/signdrill/internal/httpapi"
	"github.com/MrWong99/signdrill/internal/observe"
	"github.com/MrWong99/signdrill/internal/pipeline"
	"github.com/MrWong99/signdrill/pkg/provider/llm"
	"github.com/MrWong99/signdrill/pkg/provider/llm/anyllm"
	oaillm "github.com/MrWong99/signdrill/pkg/provider/llm/openai"
	oaispeech "github.com/MrWong99/signdrill/pkg/provider/speech/openai"
)

const version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// Local development keeps API keys in a .env file; absence is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "signdrill: load .env: %v\n", err)
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "signdrill: config file %q not found, copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "signdrill: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("signdrill starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "signdrill",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Providers ─────────────────────────────────────────────────────────────
	textProvider, err := buildLLMProvider(cfg.Providers.LLM)
	if err != nil {
		slog.Error("failed to build llm provider", "err", err)
		return 1
	}
	slog.Info("provider created", "kind", "llm", "name", cfg.Providers.LLM.Name, "model", textProvider.Model())

	visionProvider := textProvider
	if cfg.Providers.Vision.Name != "" {
		visionProvider, err = buildLLMProvider(cfg.Providers.Vision)
		if err != nil {
			slog.Error("failed to build vision provider", "err", err)
			return 1
		}
		slog.Info("provider created", "kind", "vision", "name", cfg.Providers.Vision.Name, "model", visionProvider.Model())
	}

	audioProvider, err := buildAudioProvider(cfg.Providers.Audio)
	if err != nil {
		slog.Error("failed to build audio provider", "err", err)
		return 1
	}
	slog.Info("provider created", "kind", "audio", "model", audioProvider.Model(), "voice", cfg.Providers.Audio.Voice)

	// ── Agents, graphs, pipeline ──────────────────────────────────────────────
	var agentOpts []agent.Option
	if cfg.Debug.OutputDir != "" {
		agentOpts = append(agentOpts, agent.WithDebugDir(cfg.Debug.OutputDir))
		slog.Info("agent debug artifacts enabled", "dir", cfg.Debug.OutputDir)
	}

	validationAgent := agent.NewValidationFeedback(textProvider, agentOpts...)
	phoneticAgent := agent.NewPhonetic(textProvider, agentOpts...)
	recognitionAgent := agent.NewRecognition(visionProvider, agentOpts...)

	validator := graph.NewValidator(validationAgent)
	announcer := graph.NewAnnouncer(phoneticAgent, audioProvider, cfg.Providers.Audio.Voice)
	pipe := pipeline.New(validator, cfg.Pipeline)

	api := httpapi.New(pipe, announcer, recognitionAgent)

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server ready", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// buildLLMProvider constructs the configured text backend: the native openai
// SDK when named, otherwise an any-llm-go gateway.
func buildLLMProvider(cfg config.LLMConfig) (llm.Provider, error) {
	apiKey := resolveAPIKey(cfg)

	if cfg.Name == "openai" {
		var opts []oaillm.Option
		if cfg.BaseURL != "" {
			opts = append(opts, oaillm.WithBaseURL(cfg.BaseURL))
		}
		if cfg.TimeoutSeconds > 0 {
			opts = append(opts, oaillm.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
		}
		return oaillm.New(apiKey, cfg.Model, opts...)
	}

	var opts []anyllmlib.Option
	if apiKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(apiKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(cfg.BaseURL))
	}
	return anyllm.New(cfg.Name, cfg.Model, opts...)
}

// buildAudioProvider constructs the announcement audio backend.
func buildAudioProvider(cfg config.AudioConfig) (*oaispeech.Provider, error) {
	var opts []oaispeech.Option
	if cfg.TimeoutSeconds > 0 {
		opts = append(opts, oaispeech.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
	}
	return oaispeech.New(os.Getenv("OPENAI_API_KEY"), cfg.Model, opts...)
}

// resolveAPIKey reads the configured environment variable, falling back to
// the backend's conventional one.
func resolveAPIKey(cfg config.LLMConfig) string {
	if cfg.APIKeyEnv != "" {
		return os.Getenv(cfg.APIKeyEnv)
	}
	switch cfg.Name {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	case "deepseek":
		return os.Getenv("DEEPSEEK_API_KEY")
	case "mistral":
		return os.Getenv("MISTRAL_API_KEY")
	case "groq":
		return os.Getenv("GROQ_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
