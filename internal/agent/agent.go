// Package agent implements the model-call agents of the scoring pipeline.
//
// Every agent is one bounded model call: a fixed prompt template, a strict
// JSON output contract, and a uniform result envelope. The shared runner
// standardises the sequence build prompt → call provider → extract JSON from
// noisy text → validate strictly → log → return envelope. Agents never return
// a Go error to their callers; every failure mode is encoded in the envelope,
// and the graphs decide which failures are fatal and which have fallbacks.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrWong99/signdrill/internal/cost"
	"github.com/MrWong99/signdrill/internal/observe"
	"github.com/MrWong99/signdrill/pkg/provider/llm"
)

const (
	// defaultTemperature keeps agent output deterministic; agents expect
	// strict, short JSON.
	defaultTemperature = 0.1

	// defaultMaxTokens bounds the completion. The largest agent payload
	// (validation + feedback for a long word) stays well under this.
	defaultMaxTokens = 1024
)

// Result is the uniform envelope returned by every agent invocation.
//
// OK is false when the call failed at any stage. Metadata is always
// populated: with measured token counts when the call completed (the call
// cost money even if its output was unusable), or with zero cost when it
// never reached the provider.
type Result[T any] struct {
	// OK reports whether Content holds a validated payload.
	OK bool

	// Content is the parsed and validated agent output; nil when OK is false.
	Content *T

	// Err is a descriptive failure reason when OK is false.
	Err string

	// Metadata is the cost/latency record for this invocation.
	Metadata cost.Metadata
}

// failure builds a failed Result.
func failure[T any](meta cost.Metadata, format string, args ...any) Result[T] {
	return Result[T]{Err: fmt.Sprintf(format, args...), Metadata: meta}
}

// runner carries the cross-cutting concerns every agent shares: the provider,
// sampling settings, metrics, and the optional debug artifact directory.
// It is read-only after construction and safe for concurrent use.
type runner struct {
	llm         llm.Provider
	metrics     *observe.Metrics
	debugDir    string
	temperature float64
	maxTokens   int
}

// Option is a functional option applied to every agent constructor.
type Option func(*runner)

// WithMetrics sets the metrics instance agents record to.
// Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(r *runner) { r.metrics = m }
}

// WithDebugDir enables the side-channel debug artifacts: prompts, parsed
// results, and raw failures are written under dir. Purely diagnostic; write
// failures are swallowed and never fail the agent call.
func WithDebugDir(dir string) Option {
	return func(r *runner) { r.debugDir = dir }
}

// WithTemperature overrides the sampling temperature. Default: 0.1.
func WithTemperature(t float64) Option {
	return func(r *runner) { r.temperature = t }
}

// WithMaxTokens overrides the completion token cap. Default: 1024.
func WithMaxTokens(n int) Option {
	return func(r *runner) { r.maxTokens = n }
}

// newRunner builds a runner around provider with the default settings.
func newRunner(provider llm.Provider, opts ...Option) runner {
	r := runner{
		llm:         provider,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
	}
	for _, o := range opts {
		o(&r)
	}
	if r.metrics == nil {
		r.metrics = observe.DefaultMetrics()
	}
	return r
}

// run executes one agent invocation end to end. name is the logical agent
// name, key the ledger/debug invocation key, validate the agent's strict
// output check. img, when non-nil, routes the call through CompleteWithImage.
func run[T any](
	ctx context.Context,
	r *runner,
	name, key string,
	system, user string,
	img *llm.ImageInput,
	validate func(*T) error,
) Result[T] {
	req := llm.CompletionRequest{
		SystemPrompt: system,
		Messages:     []llm.Message{{Role: "user", Content: user}},
		Temperature:  r.temperature,
		MaxTokens:    r.maxTokens,
	}
	r.debugInput(key, system, user)

	start := time.Now()
	var (
		resp *llm.CompletionResponse
		err  error
	)
	if img != nil {
		resp, err = r.llm.CompleteWithImage(ctx, req, *img)
	} else {
		resp, err = r.llm.Complete(ctx, req)
	}
	latency := time.Since(start)

	if err != nil {
		// The call never completed: zero cost, but the attempt is on the books.
		meta := cost.ZeroMetadata(name, r.llm.Model(), latency)
		r.metrics.RecordAgentCall(ctx, name, meta.Model, "error", latency.Seconds(), 0)
		r.metrics.RecordAgentError(ctx, name, "call")
		r.debugError(key, "", err)
		return failure[T](meta, "%s agent: model call failed: %v", name, err)
	}

	// The call completed and cost money regardless of what happens next.
	meta := cost.NewMetadata(name, r.llm.Model(),
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens, latency)

	raw, ok := ExtractJSON(resp.Content)
	if !ok {
		r.metrics.RecordAgentCall(ctx, name, meta.Model, "error", latency.Seconds(), meta.Cost)
		r.metrics.RecordAgentError(ctx, name, "decode")
		r.debugError(key, resp.Content, fmt.Errorf("no JSON object in response"))
		return failure[T](meta, "%s agent: no JSON object in model response", name)
	}

	var out T
	if uerr := json.Unmarshal([]byte(raw), &out); uerr != nil {
		r.metrics.RecordAgentCall(ctx, name, meta.Model, "error", latency.Seconds(), meta.Cost)
		r.metrics.RecordAgentError(ctx, name, "decode")
		r.debugError(key, resp.Content, uerr)
		return failure[T](meta, "%s agent: parse response: %v", name, uerr)
	}
	if validate != nil {
		if verr := validate(&out); verr != nil {
			r.metrics.RecordAgentCall(ctx, name, meta.Model, "error", latency.Seconds(), meta.Cost)
			r.metrics.RecordAgentError(ctx, name, "decode")
			r.debugError(key, resp.Content, verr)
			return failure[T](meta, "%s agent: invalid response: %v", name, verr)
		}
	}

	r.metrics.RecordAgentCall(ctx, name, meta.Model, "ok", latency.Seconds(), meta.Cost)
	r.debugOutput(key, out, meta)
	return Result[T]{OK: true, Content: &out, Metadata: meta}
}

// ExtractJSON returns the first balanced top-level JSON object found anywhere
// in s. Models occasionally wrap their JSON in prose or markdown fences; the
// scan tolerates any preamble and trailing text. Braces inside JSON strings
// (including escaped quotes) are ignored.
func ExtractJSON(s string) (string, bool) {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
