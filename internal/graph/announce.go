package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MrWong99/signdrill/internal/agent"
	"github.com/MrWong99/signdrill/internal/cost"
	"github.com/MrWong99/signdrill/internal/observe"
	"github.com/MrWong99/signdrill/pkg/provider/speech"
)

// Scenario is the narrative band an attempt falls into.
type Scenario string

const (
	// ScenarioCrash covers unrecognizable attempts: the announcer has lost
	// the train entirely.
	ScenarioCrash Scenario = "crash"

	// ScenarioDelayed covers the close-but-not-exact middle band: the train
	// arrives, just at the wrong station.
	ScenarioDelayed Scenario = "delayed"

	// ScenarioSafe covers exact matches: right platform, right time.
	ScenarioSafe Scenario = "safe"
)

// Ledger keys for the announcement graph's cost breakdown.
const (
	phoneticKey     = "phonetic_0"
	announcementKey = "announcement_0"
)

// Classify buckets an attempt into a scenario. Deterministic, no model call.
// The "?" marker means recognition had no confident read at some point, which
// is a crash regardless of the match percentage.
func Classify(transcription string, matchPercentage float64) Scenario {
	if strings.Contains(transcription, agent.UnknownLetter) || matchPercentage < 30 {
		return ScenarioCrash
	}
	if matchPercentage >= 100 {
		return ScenarioSafe
	}
	return ScenarioDelayed
}

// Persona scripts, one voice profile per scenario. Static by design; the
// comedy lives in the fixed delivery, not in runtime configuration. The
// speech backend reads the script verbatim and the same text is returned as
// the user-facing message, so the persona is written into the announcement
// itself: no stage directions.
const (
	// crash: a flustered announcer who has completely lost track of a train.
	crashScript = `Attention all passengers, attention please. This is... this is your station announcer speaking.
We regret to inform you that the express service to %s has... well, it has left the rails entirely.
Nobody is quite sure where it went. The signal box reports only static. Please remain calm,
collect your complimentary biscuit from platform staff, and do try again with the next departure.`

	// delayed: a weary but professional announcer reading a delay notice.
	delayedScript = `Your attention please. The express service to %s is delayed.
It is currently making an unscheduled stop at %s, a station that, frankly, is not on any of our maps.
We expect it to find its way shortly. We apologise for the inconvenience to your journey.`

	// safe: a proud announcer making the announcement of their career.
	safeScript = `Ladies and gentlemen, it is my great pleasure to announce that the express service to %s
has arrived at platform one. Precisely. On. Time. A flawless run, signals green all the way.
Passengers are invited to applaud the driver on their way out.`
)

// AnnounceInput is everything the announcement graph needs for one attempt.
type AnnounceInput struct {
	// Target is the word the attempt was aiming for.
	Target string `json:"target"`

	// Transcription is what recognition actually produced.
	Transcription string `json:"transcription"`

	// MatchPercentage is the validation graph's 0-100 judgment.
	MatchPercentage float64 `json:"matchPercentage"`
}

// AnnounceResult is the assembled announcement: narrative, audio, and the
// cost breakdown of the calls that produced it. Created fresh per attempt and
// never persisted.
type AnnounceResult struct {
	Scenario      Scenario `json:"scenario"`
	Message       string   `json:"message"`
	Phonetic      string   `json:"phonetic,omitempty"`
	AudioBase64   string   `json:"audioBase64"`
	AudioMimeType string   `json:"audioMimeType,omitempty"`

	// Costs breaks down spend per invocation; totals are sums over it.
	Costs             map[string]cost.Metadata `json:"costs,omitempty"`
	TotalCost         float64                  `json:"totalCost"`
	TotalInputTokens  int                      `json:"totalInputTokens"`
	TotalOutputTokens int                      `json:"totalOutputTokens"`
}

// Announcer runs the announcement graph. Safe for concurrent use.
type Announcer struct {
	phonetic *agent.PhoneticAgent
	speech   speech.Provider
	voice    string
	metrics  *observe.Metrics
}

// NewAnnouncer builds the announcement graph. voice selects the prebuilt
// text-to-speech voice; empty means the speech provider's default.
func NewAnnouncer(phonetic *agent.PhoneticAgent, sp speech.Provider, voice string, opts ...Option) *Announcer {
	o := newOptions(opts...)
	return &Announcer{phonetic: phonetic, speech: sp, voice: voice, metrics: o.metrics}
}

// Run classifies the attempt, assembles the persona script, and generates the
// audio clip. A phonetic-agent failure falls back to the raw transcription;
// the announcement is cosmetic and must never block score presentation. Only
// a failed audio call returns an error.
func (a *Announcer) Run(ctx context.Context, input AnnounceInput) (result *AnnounceResult, err error) {
	start := time.Now()
	log := observe.Logger(ctx).With("target", input.Target)

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("announcement graph: internal error: %v", r)
			a.metrics.RecordAnnouncement(ctx, "error", time.Since(start).Seconds())
			log.Error("announcement graph panicked", "panic", r)
		}
	}()

	ctx, span := observe.StartSpan(ctx, "graph.announce")
	defer span.End()

	scenario := Classify(input.Transcription, input.MatchPercentage)
	if scenario == ScenarioCrash {
		// Distinguish the two crash triggers in logs; a coincidental "?" in a
		// transcription should at least be diagnosable.
		reason := "low_match"
		if strings.Contains(input.Transcription, agent.UnknownLetter) {
			reason = "unrecognized"
		}
		log = log.With("reason", reason)
	}
	res := &AnnounceResult{
		Scenario: scenario,
		Costs:    map[string]cost.Metadata{},
	}

	var script string
	switch scenario {
	case ScenarioCrash:
		script = fmt.Sprintf(crashScript, input.Target)
	case ScenarioSafe:
		script = fmt.Sprintf(safeScript, input.Target)
	case ScenarioDelayed:
		phonetic := input.Transcription
		pres := a.phonetic.Run(ctx, input.Transcription, phoneticKey)
		res.Costs[phoneticKey] = pres.Metadata
		if pres.OK {
			phonetic = pres.Content.Phonetic
		} else {
			log.Warn("phonetic agent failed, using raw transcription", "error", pres.Err)
		}
		res.Phonetic = phonetic
		script = fmt.Sprintf(delayedScript, input.Target, phonetic)
	}
	res.Message = script

	audioStart := time.Now()
	audio, aerr := a.speech.Generate(ctx, script, a.voice)
	audioLatency := time.Since(audioStart)
	if aerr != nil {
		res.Costs[announcementKey] = cost.ZeroMetadata("announcement", a.speech.Model(), audioLatency)
		a.metrics.RecordAnnouncement(ctx, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("announcement graph: generate audio: %w", aerr)
	}

	res.AudioBase64 = audio.AudioBase64
	res.AudioMimeType = audio.MimeType
	res.Costs[announcementKey] = cost.NewMetadata("announcement", a.speech.Model(),
		audio.Usage.InputTokens, audio.Usage.OutputTokens, audioLatency)

	for _, m := range res.Costs {
		res.TotalCost += m.Cost
		res.TotalInputTokens += m.InputTokens
		res.TotalOutputTokens += m.OutputTokens
	}

	a.metrics.RecordAnnouncement(ctx, string(scenario), time.Since(start).Seconds())
	log.Info("announcement generated",
		"scenario", scenario,
		"totalCost", res.TotalCost,
		"audioBytes", len(res.AudioBase64),
	)
	return res, nil
}
