package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (m *MarkdownFormatter) Format(s *Summary) string {
	var sb strings.Builder

	sb.WriteString("# Encoding Summary\n\n")
	fmt.Fprintf(&sb, "Generated at %s\n\n", s.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Settings\n\n")
	sb.WriteString("| Setting | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Backend | %s |\n", s.Settings.Backend)
	fmt.Fprintf(&sb, "| Component | %s |\n", s.Settings.Component)
	fmt.Fprintf(&sb, "| Frame | %dx%d |\n", s.Settings.Width, s.Settings.Height)
	sliceHeight := s.Settings.SliceHeight
	if sliceHeight == 0 {
		sliceHeight = s.Settings.Height
	}
	fmt.Fprintf(&sb, "| Slice height | %d |\n", sliceHeight)
	fmt.Fprintf(&sb, "| Color format | %s |\n", s.Settings.ColorFormat)
	fmt.Fprintf(&sb, "| Quality | %d |\n", s.Settings.Quality)
	fmt.Fprintf(&sb, "| Workers | %d |\n\n", s.Settings.Workers)

	encoded, failed, bytes := s.Totals()
	sb.WriteString("## Results\n\n")
	fmt.Fprintf(&sb, "- Encoded: %d\n", encoded)
	fmt.Fprintf(&sb, "- Failed: %d\n", failed)
	fmt.Fprintf(&sb, "- Output: %s\n", humanize.Bytes(uint64(bytes)))
	fmt.Fprintf(&sb, "- Elapsed: %s\n", s.Elapsed.Round(time.Millisecond))
	if encoded > 0 {
		fmt.Fprintf(&sb, "- Per frame: %s\n", (s.Elapsed / time.Duration(encoded)).Round(time.Microsecond))
	}

	if len(s.Frames) == 0 {
		return sb.String()
	}

	sb.WriteString("\n## Frames\n\n")
	sb.WriteString("| Input | Output | Size | Worker | Time |\n|---|---|---:|---:|---:|\n")
	for _, f := range s.Frames {
		if f.Failed() {
			fmt.Fprintf(&sb, "| %s | failed: %s | - | %d | %s |\n",
				f.Name, escape(f.Err), f.Worker, f.Elapsed.Round(time.Microsecond))
			continue
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %d | %s |\n",
			f.Name, f.Output, humanize.Bytes(uint64(f.Bytes)), f.Worker, f.Elapsed.Round(time.Microsecond))
	}

	return sb.String()
}

// escape keeps error text from breaking table cells.
func escape(s string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
}

var _ Formatter = (*MarkdownFormatter)(nil)
