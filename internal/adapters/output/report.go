// Package output provides adapters for rendering and writing diff reports.
package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/gitops-tools/catalogctl/internal/domain"
)

// Renderer renders a ChangeSet into a colorized, human-readable report.
// Colorization honors go-pretty's global color toggle, so piped output
// degrades to plain text automatically.
type Renderer struct{}

// NewRenderer creates a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces one block per change entry, blank-line separated, ordered
// as the change set is ordered. An empty change set renders to the empty
// string.
func (r *Renderer) Render(cs *domain.ChangeSet) string {
	if cs == nil || !cs.Changed() {
		return ""
	}

	blocks := make([]string, 0, len(cs.Entries))
	for _, e := range cs.Entries {
		blocks = append(blocks, renderEntry(e))
	}
	return strings.Join(blocks, "\n\n")
}

func renderEntry(e domain.ChangeEntry) string {
	switch e.Kind {
	case domain.ChangeAdded:
		return text.FgGreen.Sprintf("Added file %s", e.ToPath)
	case domain.ChangeDeleted:
		return text.FgRed.Sprintf("Deleted file %s", e.FromPath)
	case domain.ChangeRenamed:
		return text.FgYellow.Sprintf("Renamed file %s => %s", e.FromPath, e.ToPath) +
			fmt.Sprintf("\nSimilarity index %.2f%%", e.Similarity*100)
	case domain.ChangeModified:
		return colorizeDiff(e.Diff)
	default:
		return fmt.Sprintf("Changed file %s", e.Path())
	}
}

// colorizeDiff colors a unified diff line by line: headers and hunk markers
// yellow, additions green, removals red, context unchanged.
func colorizeDiff(diff string) string {
	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "@@"):
			lines[i] = text.FgYellow.Sprint(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = text.FgGreen.Sprint(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = text.FgRed.Sprint(line)
		}
	}
	return strings.Join(lines, "\n")
}
