package headless

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/hawk/pkg/table"
)

// ArtifactWriter handles writing run artifacts
type ArtifactWriter struct {
	outputDir string
	json      bool
	markdown  bool
}

// NewArtifactWriter creates a new artifact writer
func NewArtifactWriter(cfg ArtifactConfig) *ArtifactWriter {
	return &ArtifactWriter{
		outputDir: cfg.OutputDir,
		json:      cfg.JSON,
		markdown:  cfg.Markdown,
	}
}

// WriteAll writes all configured artifact formats
func (w *ArtifactWriter) WriteAll(t *Transcript) error {
	// Ensure output directory exists
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if w.json {
		if err := w.WriteTranscriptJSON(t); err != nil {
			return err
		}
	}

	if w.markdown {
		if err := w.WriteTranscriptMarkdown(t); err != nil {
			return err
		}
	}

	return nil
}

// WriteTranscriptJSON writes the full transcript as JSON
func (w *ArtifactWriter) WriteTranscriptJSON(t *Transcript) error {
	path := filepath.Join(w.outputDir, "transcript.json")

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	if writeErr := os.WriteFile(path, data, 0600); writeErr != nil {
		return fmt.Errorf("failed to write transcript JSON: %w", writeErr)
	}

	return nil
}

// WriteTranscriptMarkdown writes a human-readable transcript. Tabular answers
// are written back out as markdown tables.
func (w *ArtifactWriter) WriteTranscriptMarkdown(t *Transcript) error {
	path := filepath.Join(w.outputDir, "transcript.md")

	if writeErr := os.WriteFile(path, []byte(renderMarkdown(t)), 0600); writeErr != nil {
		return fmt.Errorf("failed to write transcript markdown: %w", writeErr)
	}

	return nil
}

func renderMarkdown(t *Transcript) string {
	var md strings.Builder

	// Header
	md.WriteString("# Hawk Batch Transcript\n\n")
	md.WriteString(fmt.Sprintf("**Status:** %s\n\n", t.Status))
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", t.StartTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Completed:** %s\n\n", t.EndTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", t.Duration))

	for i, e := range t.Entries {
		md.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, e.Question))
		md.WriteString(fmt.Sprintf("_%s question, %s", e.Kind, e.Outcome))
		if e.Strategy != "" {
			md.WriteString(fmt.Sprintf(" via %s", e.Strategy))
		}
		if e.Outcome != OutcomeSkipped && !e.Stable {
			md.WriteString(", timed out")
		}
		md.WriteString("_\n\n")

		switch {
		case e.Table != nil:
			md.WriteString(e.Table.Markdown())
		case e.Answer != "":
			md.WriteString(strings.TrimSpace(e.Answer))
			md.WriteString("\n")
		}
		md.WriteString("\n")
	}

	// Metrics
	md.WriteString("## Metrics\n\n")
	md.WriteString(fmt.Sprintf("- **Questions:** %d\n", t.Metrics.Questions))
	md.WriteString(fmt.Sprintf("- **Answered:** %d\n", t.Metrics.Answered))
	md.WriteString(fmt.Sprintf("- **Fallback:** %d\n", t.Metrics.Fallback))
	md.WriteString(fmt.Sprintf("- **Exhausted:** %d\n", t.Metrics.Exhausted))
	md.WriteString(fmt.Sprintf("- **Send Failed:** %d\n", t.Metrics.SendFailed))
	md.WriteString(fmt.Sprintf("- **Tables:** %d\n", t.Metrics.Tables))

	return md.String()
}

// OutcomeSkipped marks questions never asked because the run stopped early.
const OutcomeSkipped = "skipped"

// Transcript contains a complete record of a batch run
type Transcript struct {
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Entries   []Entry       `json:"entries"`
	Metrics   Metrics       `json:"metrics"`
}

// Entry is one question and its answer
type Entry struct {
	Question string        `json:"question"`
	Kind     string        `json:"kind"`
	Outcome  string        `json:"outcome"`
	Strategy string        `json:"strategy,omitempty"`
	Stable   bool          `json:"stable"`
	Answer   string        `json:"answer,omitempty"`
	Table    *table.Table  `json:"table,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Metrics counts outcomes across the run
type Metrics struct {
	Questions  int `json:"questions"`
	Answered   int `json:"answered"`
	Fallback   int `json:"fallback"`
	Exhausted  int `json:"exhausted"`
	SendFailed int `json:"send_failed"`
	Tables     int `json:"tables"`
}
