// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to verify that agents send correct
// CompletionRequests and to feed controlled responses without a live LLM
// backend. All fields are safe to set before calling any method; mutating them
// during a concurrent call is the caller's responsibility.
//
// Example:
//
//	p := &mock.Provider{
//	    CompleteResponse: &llm.CompletionResponse{Content: `{"isValid":true}`},
//	}
//	resp, err := p.Complete(ctx, req)
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/signdrill/pkg/provider/llm"
)

// CompleteCall records a single invocation of Complete or CompleteWithImage.
type CompleteCall struct {
	// Ctx is the context passed in.
	Ctx context.Context
	// Req is the CompletionRequest passed in.
	Req llm.CompletionRequest
	// Image is the image passed to CompleteWithImage; zero for Complete.
	Image llm.ImageInput
}

// Provider is a mock implementation of llm.Provider.
// Zero values for response fields cause methods to return zero values and nil
// errors. Set Err fields to inject errors.
type Provider struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// CompleteResponse is returned by Complete and CompleteWithImage when
	// CompleteResponses is empty.
	CompleteResponse *llm.CompletionResponse

	// CompleteResponses, when non-empty, is consumed one response per call,
	// allowing a test to script a sequence of distinct replies.
	CompleteResponses []*llm.CompletionResponse

	// CompleteErr, if non-nil, is returned as the error from Complete and
	// CompleteWithImage.
	CompleteErr error

	// ModelName is returned by Model. Defaults to "mock-model" when empty.
	ModelName string

	// ModelCapabilities is returned by Capabilities.
	ModelCapabilities llm.ModelCapabilities

	// --- Call records (read after test) ---

	// CompleteCalls records every invocation of Complete and CompleteWithImage
	// in order.
	CompleteCalls []CompleteCall
}

// Compile-time assertion that Provider satisfies the llm.Provider interface.
var _ llm.Provider = (*Provider)(nil)

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return p.record(ctx, req, llm.ImageInput{})
}

// CompleteWithImage implements llm.Provider.
func (p *Provider) CompleteWithImage(ctx context.Context, req llm.CompletionRequest, img llm.ImageInput) (*llm.CompletionResponse, error) {
	return p.record(ctx, req, img)
}

func (p *Provider) record(ctx context.Context, req llm.CompletionRequest, img llm.ImageInput) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.CompleteCalls = append(p.CompleteCalls, CompleteCall{Ctx: ctx, Req: req, Image: img})

	if p.CompleteErr != nil {
		return nil, p.CompleteErr
	}
	if len(p.CompleteResponses) > 0 {
		resp := p.CompleteResponses[0]
		p.CompleteResponses = p.CompleteResponses[1:]
		return resp, nil
	}
	return p.CompleteResponse, nil
}

// Model implements llm.Provider.
func (p *Provider) Model() string {
	if p.ModelName == "" {
		return "mock-model"
	}
	return p.ModelName
}

// Capabilities implements llm.Provider.
func (p *Provider) Capabilities() llm.ModelCapabilities {
	return p.ModelCapabilities
}

// CallCount returns the number of recorded Complete/CompleteWithImage calls.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.CompleteCalls)
}
