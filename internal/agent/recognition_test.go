package agent_test

import (
	"context"
	"testing"

	"github.com/MrWong99/signdrill/internal/agent"
	"github.com/MrWong99/signdrill/pkg/provider/llm"
	llmmock "github.com/MrWong99/signdrill/pkg/provider/llm/mock"
)

func TestRecognition_LetterContract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		ok      bool
		letter  string
	}{
		{"uppercase letter", `{"letter": "A"}`, true, "A"},
		{"unknown sentinel", `{"letter": "?"}`, true, "?"},
		{"lowercase rejected", `{"letter": "a"}`, false, ""},
		{"multi-char rejected", `{"letter": "AB"}`, false, ""},
		{"empty rejected", `{"letter": ""}`, false, ""},
		{"digit rejected", `{"letter": "7"}`, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := &llmmock.Provider{
				CompleteResponse: &llm.CompletionResponse{
					Content: tt.content,
					Usage:   llm.Usage{PromptTokens: 900, CompletionTokens: 8},
				},
			}
			a := agent.NewRecognition(p, agent.WithMetrics(testMetrics(t)))
			res := a.Run(context.Background(), "dGVzdA==", "recognize_0")
			if res.OK != tt.ok {
				t.Fatalf("Run(%s): OK=%v, err=%q", tt.name, res.OK, res.Err)
			}
			if tt.ok && res.Content.Letter != tt.letter {
				t.Errorf("Run(%s): letter = %q, want %q", tt.name, res.Content.Letter, tt.letter)
			}
			if !tt.ok && res.Metadata.Cost <= 0 {
				t.Errorf("Run(%s): rejected output must keep the call cost, metadata = %+v", tt.name, res.Metadata)
			}
		})
	}
}

func TestRecognition_SendsJPEGFrame(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: `{"letter": "L"}`}}
	a := agent.NewRecognition(p, agent.WithMetrics(testMetrics(t)))

	res := a.Run(context.Background(), "ZnJhbWU=", "recognize_0")
	if !res.OK {
		t.Fatalf("Run: OK=false, err=%q", res.Err)
	}
	if len(p.CompleteCalls) != 1 {
		t.Fatalf("provider calls = %d, want 1", len(p.CompleteCalls))
	}
	img := p.CompleteCalls[0].Image
	if img.Base64 != "ZnJhbWU=" || img.MimeType != "image/jpeg" {
		t.Errorf("image input = %+v", img)
	}
}
