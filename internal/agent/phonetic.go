package agent

import (
	"context"
	"fmt"

	"github.com/MrWong99/signdrill/pkg/provider/llm"
)

// phoneticName is the agent name used in ledger metadata and metrics.
const phoneticName = "phonetic"

// phoneticSystemPrompt turns a garbled transcription into something a voice
// can actually say. The wrongness must survive: this feeds the "delayed
// train" announcement, where the joke is that the station name came out
// mangled. Auto-correcting to the real word would kill it.
const phoneticSystemPrompt = `You turn garbled letter sequences into funny but pronounceable names.

You receive a transcription that came out wrong. Respell it into syllables a text-to-speech voice can read aloud naturally.

Rules:
- Preserve the wrongness. Do NOT correct it to any real word or place name.
- Keep every sound the letters suggest; just make them speakable (e.g. "TYSNG" -> "Tie-Seng").
- Use hyphenated syllables, capitalised like a name.
- Keep it short: one respelled name, nothing else.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{"phonetic": "<respelled name>"}`

// Phonetic is the phonetic agent payload.
type Phonetic struct {
	Phonetic string `json:"phonetic"`
}

// PhoneticAgent produces a pronounceable respelling of a garbled
// transcription for the delayed announcement scenario. Safe for concurrent
// use.
type PhoneticAgent struct {
	r runner
}

// NewPhonetic returns an agent backed by provider.
func NewPhonetic(provider llm.Provider, opts ...Option) *PhoneticAgent {
	return &PhoneticAgent{r: newRunner(provider, opts...)}
}

// Run respells transcription. key is the cost-ledger invocation key.
// Callers treat failure as soft: the announcement graph falls back to the
// raw transcription.
func (a *PhoneticAgent) Run(ctx context.Context, transcription string, key string) Result[Phonetic] {
	user := fmt.Sprintf("Transcription: %q", transcription)

	return run(ctx, &a.r, phoneticName, key, phoneticSystemPrompt, user, nil,
		func(p *Phonetic) error {
			if p.Phonetic == "" {
				return fmt.Errorf("phonetic is empty")
			}
			return nil
		},
	)
}
