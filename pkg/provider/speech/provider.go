// Package speech defines the Provider interface for audio-generation backends.
//
// A speech provider wraps a model-provider audio endpoint (e.g., the OpenAI
// audio-modality chat models) and turns a persona script into a single encoded
// audio payload plus token usage. Unlike a streaming TTS engine, the whole
// clip is produced in one round trip; the announcement graph needs the
// call's token accounting to price the clip, and announcement clips are a few
// seconds long, so streaming buys nothing here.
//
// Implementations must be safe for concurrent use.
package speech

import "context"

// Usage holds token accounting for one audio generation call. Audio models
// bill input text tokens and output audio tokens separately.
type Usage struct {
	// InputTokens is the number of text tokens consumed by the script.
	InputTokens int

	// OutputTokens is the number of audio tokens generated.
	OutputTokens int
}

// Response is a finished audio generation.
type Response struct {
	// AudioBase64 is the encoded audio payload, base64 without a data-URI
	// prefix.
	AudioBase64 string

	// MimeType is the audio media type (e.g., "audio/mpeg").
	MimeType string

	// Transcript is the provider's own transcript of the generated audio, when
	// reported. Informational only.
	Transcript string

	// Usage contains token accounting for this call.
	Usage Usage
}

// Provider is the abstraction over any audio-generation backend.
type Provider interface {
	// Generate renders script as spoken audio in the given prebuilt voice.
	//
	// Returns an error on transport, auth, or provider failure, or if ctx is
	// cancelled before the audio arrives.
	Generate(ctx context.Context, script string, voice string) (*Response, error)

	// Model returns the configured audio model name, used by the cost model to
	// look up per-token prices.
	Model() string
}
