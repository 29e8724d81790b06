// Package openai provides a speech provider backed by the OpenAI
// audio-modality chat models (e.g., gpt-4o-audio-preview).
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/MrWong99/signdrill/pkg/provider/speech"
)

// defaultVoice is used when Generate is called with an empty voice name.
const defaultVoice = "ash"

// Provider implements speech.Provider using OpenAI audio-modality chat
// completions. The script is sent as the sole user message and the model is
// asked for an audio-only rendition.
type Provider struct {
	client oai.Client
	model  string
}

// Compile-time assertion that Provider satisfies the speech.Provider interface.
var _ speech.Provider = (*Provider)(nil)

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout. Audio generation is slower
// than text completion; allow for that when choosing a value.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a new OpenAI speech Provider.
func New(apiKey string, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai speech: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("openai speech: model must not be empty")
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	client := oai.NewClient(reqOpts...)
	return &Provider{client: client, model: model}, nil
}

// Generate implements speech.Provider.
func (p *Provider) Generate(ctx context.Context, script string, voice string) (*speech.Response, error) {
	if script == "" {
		return nil, fmt.Errorf("openai speech: script must not be empty")
	}
	if voice == "" {
		voice = defaultVoice
	}

	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage("Read the user's script aloud exactly as written, in character. Do not add, remove, or rephrase anything."),
			oai.UserMessage(script),
		},
		Modalities: []string{"text", "audio"},
		Audio: oai.ChatCompletionAudioParam{
			Format: "mp3",
			Voice:  oai.ChatCompletionAudioParamVoice(voice),
		},
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai speech: audio completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai speech: empty choices in response")
	}

	audio := resp.Choices[0].Message.Audio
	if audio.Data == "" {
		return nil, fmt.Errorf("openai speech: response carries no audio data")
	}

	return &speech.Response{
		AudioBase64: audio.Data,
		MimeType:    "audio/mpeg",
		Transcript:  audio.Transcript,
		Usage: speech.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
	}, nil
}

// Model implements speech.Provider.
func (p *Provider) Model() string {
	return p.model
}
