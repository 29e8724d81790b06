package score_test

import (
	"testing"

	"github.com/MrWong99/signdrill/internal/score"
)

func TestLetterDiff_ExactMatch(t *testing.T) {
	t.Parallel()

	diff := score.LetterDiff("HELLO", "h e l l o")
	if len(diff) != 5 {
		t.Fatalf("LetterDiff: got %d entries, want 5", len(diff))
	}
	for i, m := range diff {
		if !m.Matched {
			t.Errorf("entry %d: Matched = false, want true (%+v)", i, m)
		}
		if m.Detected == nil || *m.Detected != m.Expected {
			t.Errorf("entry %d: Detected = %v, want %q", i, m.Detected, m.Expected)
		}
	}
}

func TestLetterDiff_ShortTranscription(t *testing.T) {
	t.Parallel()

	diff := score.LetterDiff("HELLO", "HEL")
	if len(diff) != 5 {
		t.Fatalf("LetterDiff: got %d entries, want 5", len(diff))
	}
	for i := 0; i < 3; i++ {
		if !diff[i].Matched {
			t.Errorf("entry %d: Matched = false, want true", i)
		}
	}
	for i := 3; i < 5; i++ {
		if diff[i].Detected != nil {
			t.Errorf("entry %d: Detected = %q, want nil", i, *diff[i].Detected)
		}
		if diff[i].Matched {
			t.Errorf("entry %d: Matched = true, want false", i)
		}
	}
}

func TestLetterDiff_Mismatch(t *testing.T) {
	t.Parallel()

	diff := score.LetterDiff("CAT", "CUT")
	if len(diff) != 3 {
		t.Fatalf("LetterDiff: got %d entries, want 3", len(diff))
	}
	if !diff[0].Matched || diff[1].Matched || !diff[2].Matched {
		t.Errorf("LetterDiff(CAT, CUT) matched flags = [%v %v %v], want [true false true]",
			diff[0].Matched, diff[1].Matched, diff[2].Matched)
	}
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	if got := score.Similarity("Tai Seng", "taiseng"); got != 100 {
		t.Errorf("Similarity(equal after normalization) = %v, want 100", got)
	}
	if got := score.Similarity("", ""); got != 100 {
		t.Errorf("Similarity(empty, empty) = %v, want 100", got)
	}
	if got := score.Similarity("hello", ""); got != 0 {
		t.Errorf("Similarity(hello, empty) = %v, want 0", got)
	}

	close := score.Similarity("taiseng", "tysng")
	far := score.Similarity("taiseng", "zzz")
	if close <= far {
		t.Errorf("Similarity ordering: close=%v should exceed far=%v", close, far)
	}
}
