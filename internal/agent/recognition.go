package agent

import (
	"context"
	"fmt"

	"github.com/MrWong99/signdrill/pkg/provider/llm"
)

// recognitionName is the agent name used in ledger metadata and metrics.
const recognitionName = "recognition"

// UnknownLetter is the sentinel the recognition agent returns when it has no
// confident read of the handshape. Downstream, its presence in a
// transcription is the "recognition totally failed" signal for the crash
// announcement scenario.
const UnknownLetter = "?"

// recognitionSystemPrompt embeds a textual reference of the 26 ASL
// fingerspelling handshapes so the model classifies against a fixed
// description instead of its own priors.
const recognitionSystemPrompt = `You classify a single American Sign Language fingerspelling handshape from one photo.

ASL manual alphabet reference:
A: fist, thumb alongside the index finger.
B: flat hand, fingers together pointing up, thumb folded across the palm.
C: fingers and thumb curved into an open C shape.
D: index finger up, remaining fingertips touch the thumb forming a small o.
E: fingertips folded down onto the thumb, thumb across the palm.
F: index fingertip and thumb touch in a circle, other three fingers up and spread.
G: index finger and thumb extended flat, pointing sideways.
H: index and middle fingers extended together pointing sideways, thumb over the others.
I: pinky up, other fingers in a fist, thumb across them.
J: pinky up tracing a J; in a still photo it looks like I with the hand tilted.
K: index and middle fingers up in a V, thumb touching the middle finger's base.
L: index finger up and thumb out at a right angle, other fingers folded.
M: thumb tucked under the first three folded fingers.
N: thumb tucked under the first two folded fingers.
O: all fingertips curved to meet the thumb in an O.
P: like K but pointing downward.
Q: like G but pointing downward.
R: index and middle fingers crossed, pointing up.
S: fist with the thumb across the front of the fingers.
T: thumb tucked between index and middle fingers in a fist.
U: index and middle fingers together pointing up, thumb folded.
V: index and middle fingers up and spread, thumb folded.
W: index, middle, and ring fingers up and spread.
X: index finger bent into a hook, other fingers in a fist.
Y: thumb and pinky extended, other fingers folded.
Z: index finger extended tracing a Z; in a still photo it points forward/down.

Rules:
- Classify the single most prominent hand in the image.
- If no hand is visible, the handshape is ambiguous, or you are not confident, answer "?".
- Never guess between two letters; answer "?" instead.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{"letter": "<single uppercase letter A-Z, or ?>"}`

// Recognition is the recognition agent payload.
type Recognition struct {
	Letter string `json:"letter"`
}

// RecognitionAgent classifies one fingerspelled letter from a single camera
// frame. It requires a vision-capable provider. Safe for concurrent use; the
// intended deployment constructs one instance at startup and reuses it across
// requests to avoid reconstruction overhead.
type RecognitionAgent struct {
	r runner
}

// NewRecognition returns an agent backed by the vision-capable provider.
// Construction does not verify vision support; a text-only provider surfaces
// as a call failure in the envelope instead.
func NewRecognition(provider llm.Provider, opts ...Option) *RecognitionAgent {
	return &RecognitionAgent{r: newRunner(provider, opts...)}
}

// Run classifies the handshape in one base64-encoded JPEG frame. key is the
// cost-ledger invocation key.
//
// On success the payload's Letter is always exactly one character: an
// uppercase A-Z or the "?" sentinel, never empty or multi-character.
func (a *RecognitionAgent) Run(ctx context.Context, imageBase64 string, key string) Result[Recognition] {
	img := &llm.ImageInput{Base64: imageBase64, MimeType: "image/jpeg"}

	return run(ctx, &a.r, recognitionName, key,
		recognitionSystemPrompt, "Which letter is this handshape?", img,
		validateRecognition,
	)
}

// validateRecognition enforces the single-character contract.
func validateRecognition(rec *Recognition) error {
	if rec.Letter == UnknownLetter {
		return nil
	}
	if len(rec.Letter) != 1 || rec.Letter[0] < 'A' || rec.Letter[0] > 'Z' {
		return fmt.Errorf("letter %q is not a single uppercase A-Z or %q", rec.Letter, UnknownLetter)
	}
	return nil
}
