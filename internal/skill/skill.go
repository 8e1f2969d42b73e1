// Package skill implements the scriptable JSON-in/JSON-out commands.
// Each skill reads one JSON payload (argv if present, else stdin), calls
// the service layer, and prints exactly one JSON object. Failures are
// reported as {"success": false, "error": ...}; no error escapes the
// boundary except missing input or an unreadable store, which exit 1.
package skill

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/starford/ansuz/internal/ideaservice"
)

// Runner executes skills against a service, reading missing payloads
// from in and writing results to out.
type Runner struct {
	svc *ideaservice.Service
	in  io.Reader
	out io.Writer
}

// NewRunner creates a skill runner.
func NewRunner(svc *ideaservice.Service, in io.Reader, out io.Writer) *Runner {
	return &Runner{svc: svc, in: in, out: out}
}

// Names lists the available skills.
func Names() []string {
	return []string{"add", "get", "update", "delete", "search", "recent", "relate", "similar", "categories", "format"}
}

// Run dispatches a skill by name. The returned error means the process
// should exit non-zero (unknown skill, missing required input); every
// other failure is absorbed into the printed JSON.
func (r *Runner) Run(ctx context.Context, name, arg string) error {
	input, err := r.readInput(arg)
	if err != nil {
		return err
	}

	switch name {
	case "add":
		r.add(ctx, input)
	case "get":
		r.get(ctx, input)
	case "update":
		r.update(ctx, input)
	case "delete":
		r.del(ctx, input)
	case "search":
		r.search(ctx, input)
	case "recent":
		r.recent(ctx, input)
	case "relate":
		r.relate(ctx, input)
	case "similar":
		r.similar(ctx, input)
	case "categories":
		r.categories(ctx, input)
	case "format":
		r.format(input)
	default:
		return fmt.Errorf("unknown skill: %s", name)
	}
	return nil
}

// readInput returns the payload: argv wins, stdin is the fallback.
func (r *Runner) readInput(arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	data, err := io.ReadAll(r.in)
	if err != nil {
		return "", fmt.Errorf("skill: read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// emit prints one JSON object with success=true.
func (r *Runner) emit(body map[string]any) {
	body["success"] = true
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(body)
}

// fail prints one JSON failure object. It never returns an error so the
// process still exits 0 for domain-level failures.
func (r *Runner) fail(format string, args ...any) {
	_ = json.NewEncoder(r.out).Encode(map[string]any{
		"success": false,
		"error":   fmt.Sprintf(format, args...),
	})
}

// parseID accepts either a bare numeric id or {"id": N}.
func parseID(input string) (int64, bool) {
	if id, err := strconv.ParseInt(input, 10, 64); err == nil {
		return id, true
	}
	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(input), &payload); err != nil || payload.ID == 0 {
		return 0, false
	}
	return payload.ID, true
}
