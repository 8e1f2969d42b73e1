// Package export renders a filtered slice of the idea base into portable
// formats, for backup or for pasting into downstream tools.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

// Format names accepted by Render.
const (
	FormatMarkdown = "markdown"
	FormatCompact  = "compact"
	FormatJSON     = "json"
	FormatDigest   = "digest"
)

// Options controls a single export run.
type Options struct {
	Filter store.SelectFilter
	Format string
	// Output is an explicit destination path. When empty a timestamped
	// file is created under Dir.
	Output string
	Dir    string
}

// Exporter reads ideas from the store and renders them.
type Exporter struct {
	db  store.IdeaStore
	now func() time.Time
}

func New(db store.IdeaStore) *Exporter {
	return &Exporter{db: db, now: time.Now}
}

// SetClock overrides the timestamp source. Tests only.
func (e *Exporter) SetClock(now func() time.Time) { e.now = now }

// Render queries the store and returns the formatted document along with
// the number of ideas it contains.
func (e *Exporter) Render(f store.SelectFilter, format string) (string, int, error) {
	ideas, err := e.db.Select(f)
	if err != nil {
		return "", 0, err
	}
	var out string
	switch format {
	case FormatMarkdown, "":
		out = e.renderMarkdown(ideas)
	case FormatCompact:
		out = renderCompact(ideas)
	case FormatJSON:
		out, err = renderJSON(ideas)
	case FormatDigest:
		out = renderDigest(ideas)
	default:
		return "", 0, fmt.Errorf("export: unknown format %q", format)
	}
	if err != nil {
		return "", 0, err
	}
	return out, len(ideas), nil
}

// Run renders per Options and writes the result to a file, returning the
// path written and the idea count.
func (e *Exporter) Run(opts Options) (string, int, error) {
	doc, n, err := e.Render(opts.Filter, opts.Format)
	if err != nil {
		return "", 0, err
	}
	path := opts.Output
	if path == "" {
		path = filepath.Join(opts.Dir, e.defaultName(opts.Format))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", 0, fmt.Errorf("export: create dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return "", 0, fmt.Errorf("export: write %s: %w", path, err)
	}
	return path, n, nil
}

func (e *Exporter) defaultName(format string) string {
	ext := ".md"
	if format == FormatJSON {
		ext = ".json"
	}
	return "ideas-" + e.now().Format("20060102-1504") + ext
}

func (e *Exporter) renderMarkdown(ideas []models.Idea) string {
	var b strings.Builder
	b.WriteString("# Ideas Export\n\n")
	fmt.Fprintf(&b, "Exported: %s\n", e.now().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Count: %d\n\n---\n\n", len(ideas))
	for i, idea := range ideas {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, idea.Title)
		fmt.Fprintf(&b, "- Date: %s\n", idea.CreatedAt.Format("2006-01-02 15:04"))
		if idea.Category != "" {
			fmt.Fprintf(&b, "- Category: %s\n", idea.Category)
		}
		if len(idea.Tags) > 0 {
			fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(idea.Tags, ", "))
		}
		fmt.Fprintf(&b, "- Source: %s\n\n", idea.Source)
		b.WriteString(idea.Content)
		b.WriteString("\n\n---\n\n")
	}
	return b.String()
}

func renderCompact(ideas []models.Idea) string {
	var b strings.Builder
	for _, idea := range ideas {
		fmt.Fprintf(&b, "%s  ", idea.CreatedAt.Format("2006-01-02"))
		if idea.Category != "" {
			fmt.Fprintf(&b, "[%s] ", idea.Category)
		}
		b.WriteString(idea.Title)
		if len(idea.Tags) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(idea.Tags, ", "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func renderJSON(ideas []models.Idea) (string, error) {
	raw, err := json.MarshalIndent(ideas, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: marshal: %w", err)
	}
	return string(raw) + "\n", nil
}

// renderDigest produces a prompt-ready summary request: titles plus the
// short form of each idea, ready to paste into an assistant.
func renderDigest(ideas []models.Idea) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please summarize the following %d ideas into key themes and takeaways:\n\n", len(ideas))
	for i, idea := range ideas {
		body := idea.Summary
		if body == "" {
			body = idea.Content
		}
		fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, idea.Title, body)
	}
	return b.String()
}
