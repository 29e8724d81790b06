// Package config provides the configuration schema and loader for the
// signdrill scoring service.
package config

// LogLevel controls log verbosity for the signdrill server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for signdrill.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Debug     DebugConfig     `yaml:"debug"`
}

// ServerConfig holds network and logging settings for the signdrill server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProvidersConfig selects and configures the model-provider backends.
type ProvidersConfig struct {
	// LLM is the text backend used by the validation+feedback and phonetic
	// agents.
	LLM LLMConfig `yaml:"llm"`

	// Vision is the backend used by the recognition agent. It must be
	// vision-capable; only the "openai" provider qualifies. When empty, the
	// recognition endpoint reuses the LLM backend.
	Vision LLMConfig `yaml:"vision"`

	// Audio configures announcement audio generation.
	Audio AudioConfig `yaml:"audio"`
}

// LLMConfig configures one LLM backend.
type LLMConfig struct {
	// Name selects the backend: "openai" (native SDK, vision-capable) or one
	// of the any-llm-go gateways ("anthropic", "gemini", "ollama", "deepseek",
	// "mistral", "groq").
	Name string `yaml:"name"`

	// Model is the model identifier (e.g., "gpt-4o-mini").
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	// Empty means the backend's conventional variable (OPENAI_API_KEY, ...).
	APIKeyEnv string `yaml:"api_key_env"`

	// BaseURL overrides the backend's API base URL. Optional.
	BaseURL string `yaml:"base_url"`

	// TimeoutSeconds is the per-request HTTP timeout. Zero means the SDK
	// default; no graph-level timeout exists beyond this.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// AudioConfig configures the announcement audio backend.
type AudioConfig struct {
	// Model is the audio-modality model (e.g., "gpt-4o-mini-audio-preview").
	Model string `yaml:"model"`

	// Voice is the prebuilt voice name used for every announcement persona.
	Voice string `yaml:"voice"`

	// TimeoutSeconds is the per-request HTTP timeout for audio calls.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// PipelineConfig carries the pipeline's reserved extension flags. Both are
// documented no-ops: accepted, logged, and otherwise ignored.
type PipelineConfig struct {
	// CheckExisting, when true, would skip validation for attempts that already
	// have a stored result. No result store exists yet.
	CheckExisting bool `yaml:"check_existing"`

	// SaveResults, when true, would persist completed sessions. No database
	// write path exists yet.
	SaveResults bool `yaml:"save_results"`
}

// DebugConfig controls the optional agent debug artifacts.
type DebugConfig struct {
	// OutputDir, when non-empty, is the directory where agents write their
	// input/output/error logs per session. Write failures are swallowed.
	OutputDir string `yaml:"output_dir"`
}

// ValidLLMNames lists the recognised LLM backend names.
var ValidLLMNames = []string{"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq"}
