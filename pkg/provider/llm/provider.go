// Package llm defines the Provider interface for Large Language Model backends.
//
// An LLM provider wraps a remote model API (e.g., OpenAI GPT-4o, Anthropic
// Claude, or a local Ollama instance) and exposes a uniform interface for the
// signdrill agents to perform completions, plain text or text+image, without
// coupling to any specific SDK.
//
// Implementors must be safe for concurrent use. Agents issue short,
// low-temperature requests and expect strict JSON back; providers only carry
// the transport and token accounting, never the parsing.
package llm

import "context"

// Usage holds token accounting information returned by the LLM backend.
// All counts are in the model's native token unit and may differ between
// providers for the same textual content.
type Usage struct {
	// PromptTokens is the number of tokens consumed by the input messages and
	// system prompt. This value directly affects billing.
	PromptTokens int

	// CompletionTokens is the number of tokens generated in the response.
	CompletionTokens int

	// TotalTokens is PromptTokens + CompletionTokens. Provided as a convenience;
	// some providers return it directly rather than computing it from the parts.
	TotalTokens int
}

// Message represents a single message in an LLM conversation.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the text content of the message.
	Content string
}

// CompletionRequest carries everything the LLM needs to produce a response.
// Callers should treat a zero-value request as invalid; at minimum Messages
// must be non-empty.
type CompletionRequest struct {
	// Messages is the ordered conversation. The last message is typically from
	// the "user" role and drives the response.
	Messages []Message

	// SystemPrompt is an optional high-priority instruction injected before the
	// conversation. Providers that have no dedicated system field should prepend
	// it as a "system"-role message.
	SystemPrompt string

	// Temperature controls output randomness in the range [0.0, 2.0]. Agents use
	// values close to 0 because they expect deterministic JSON.
	Temperature float64

	// MaxTokens caps the number of completion tokens the model may generate.
	// Zero means use the provider default.
	MaxTokens int
}

// ImageInput is a single still image attached to a completion request.
type ImageInput struct {
	// Base64 is the raw image data, base64-encoded without a data-URI prefix.
	Base64 string

	// MimeType is the image media type (e.g., "image/jpeg"). Empty defaults to
	// "image/jpeg".
	MimeType string
}

// CompletionResponse is returned by Complete and CompleteWithImage.
type CompletionResponse struct {
	// Content is the full text of the assistant's reply.
	Content string

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// ModelCapabilities describes what a provider's underlying model supports.
type ModelCapabilities struct {
	// SupportsVision reports whether CompleteWithImage is usable.
	SupportsVision bool

	// ContextWindow is the maximum token count for input + output.
	ContextWindow int

	// MaxOutputTokens is the upper bound on completion length.
	MaxOutputTokens int
}

// Provider is the abstraction over any LLM backend.
//
// Implementations must be safe for concurrent use from multiple goroutines and
// must propagate context cancellation promptly.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	//
	// Returns an error on transport, auth, or provider failure, or if ctx is
	// cancelled before the completion arrives. Callers (agents) are responsible
	// for converting errors into their uniform result envelope.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// CompleteWithImage is Complete with a single image attached to the last
	// user message. Providers whose model lacks vision support must return an
	// error rather than silently dropping the image; callers should check
	// Capabilities().SupportsVision first.
	CompleteWithImage(ctx context.Context, req CompletionRequest, img ImageInput) (*CompletionResponse, error)

	// Model returns the configured model name, used by the cost model to look up
	// per-token prices.
	Model() string

	// Capabilities returns static metadata describing what this provider's
	// underlying model supports. The result is assumed to be constant for the
	// lifetime of the Provider instance.
	Capabilities() ModelCapabilities
}
