package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/MrWong99/signdrill/internal/cost"
)

// Debug artifacts are optional instrumentation, not required for
// correctness: every write failure is swallowed after a debug-level log line,
// because logging must never fail the agent call it describes.

// debugInput records the prompts sent for one invocation.
func (r *runner) debugInput(key, system, user string) {
	if r.debugDir == "" {
		return
	}
	content := fmt.Sprintf("=== %s ===\n--- system ---\n%s\n--- user ---\n%s\n",
		time.Now().UTC().Format(time.RFC3339), system, user)
	r.writeArtifact(key+"_input.log", []byte(content))
}

// debugOutput records the parsed result and its cost/latency metrics.
func (r *runner) debugOutput(key string, content any, meta cost.Metadata) {
	if r.debugDir == "" {
		return
	}
	payload := map[string]any{
		"content":  content,
		"metadata": meta,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		slog.Debug("debug artifact marshal failed", "key", key, "err", err)
		return
	}
	r.writeArtifact(key+"_output.log", append(data, '\n'))
}

// debugError records the raw model text alongside the failure reason.
func (r *runner) debugError(key, raw string, cause error) {
	if r.debugDir == "" {
		return
	}
	content := fmt.Sprintf("=== %s ===\nerror: %v\n--- raw response ---\n%s\n",
		time.Now().UTC().Format(time.RFC3339), cause, raw)
	r.writeArtifact(key+"_error.log", []byte(content))
}

// writeArtifact appends data to the named file under the debug directory,
// creating the directory on first use.
func (r *runner) writeArtifact(name string, data []byte) {
	if err := os.MkdirAll(r.debugDir, 0o755); err != nil {
		slog.Debug("debug artifact dir failed", "dir", r.debugDir, "err", err)
		return
	}
	path := filepath.Join(r.debugDir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Debug("debug artifact open failed", "path", path, "err", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		slog.Debug("debug artifact write failed", "path", path, "err", err)
	}
}
