// Package mock provides a test double for the speech.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/signdrill/pkg/provider/speech"
)

// GenerateCall records a single invocation of Generate.
type GenerateCall struct {
	// Script is the persona script passed to Generate.
	Script string
	// Voice is the voice name passed to Generate.
	Voice string
}

// Provider is a mock implementation of speech.Provider.
// Zero values for response fields cause Generate to return a zero Response.
type Provider struct {
	mu sync.Mutex

	// Response is returned by Generate. May be nil (returns nil, nil).
	Response *speech.Response

	// Err, if non-nil, is returned as the error from Generate.
	Err error

	// ModelName is returned by Model. Defaults to "mock-audio-model" when empty.
	ModelName string

	// Calls records every invocation of Generate in order.
	Calls []GenerateCall
}

// Compile-time assertion that Provider satisfies the speech.Provider interface.
var _ speech.Provider = (*Provider)(nil)

// Generate implements speech.Provider.
func (p *Provider) Generate(ctx context.Context, script string, voice string) (*speech.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Calls = append(p.Calls, GenerateCall{Script: script, Voice: voice})
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Response, nil
}

// Model implements speech.Provider.
func (p *Provider) Model() string {
	if p.ModelName == "" {
		return "mock-audio-model"
	}
	return p.ModelName
}
