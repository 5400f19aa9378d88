// Package format turns normalized backend results into display strings.
// The text-path transforms are best-effort prettification of payloads with
// undeclared structure, not authoritative parsing.
package format

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/veeragonivk/NTCT-gtm-web-app/internal/models"
)

// itemDetailsMarker flags an item-details-shaped text blob.
const itemDetailsMarker = "Item Name"

var pdfPattern = regexp.MustCompile(`https?://\S+\.pdf\S*`)

// Result renders a backend result for the chat window. It never fails:
// text that defeats the heuristics falls through as cleaned raw lines.
func Result(r *models.BackendResult) string {
	if r.IsText() {
		return formatText(r.Text)
	}

	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, r.Fields[k]))
	}
	return strings.Join(lines, "\n")
}

func formatText(txt string) string {
	txt = strings.TrimSpace(txt)

	// Item details: strip bold markers and re-flow label/value runs.
	if strings.Contains(txt, itemDetailsMarker) {
		cleaned := strings.ReplaceAll(txt, "**", "")
		if lines := reflowLabels(cleaned); len(lines) > 0 {
			return strings.Join(lines, "\n")
		}
	}

	// Make PDF URLs clickable.
	txt = pdfPattern.ReplaceAllString(txt, `<a href="$0" target="_blank">$0</a>`)

	// Drop blank lines.
	var out []string
	for _, line := range strings.Split(txt, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}

// reflowLabels extracts "Label: value" runs into aligned lines. The first
// label is the full word run from the start of the text; later labels are
// the final word before each colon, since a value may itself contain
// spaces and words.
func reflowLabels(txt string) []string {
	flat := strings.Join(strings.Fields(txt), " ")

	type span struct {
		labelStart, colon int
	}
	var spans []span
	for i := 0; i < len(flat); i++ {
		if flat[i] != ':' {
			continue
		}
		start := labelStart(flat, i, len(spans) == 0)
		if start == i {
			continue // colon with no label in front of it
		}
		spans = append(spans, span{start, i})
	}

	var lines []string
	for i, sp := range spans {
		end := len(flat)
		if i+1 < len(spans) {
			end = spans[i+1].labelStart
		}
		label := strings.TrimSpace(flat[sp.labelStart:sp.colon])
		value := strings.TrimSpace(flat[sp.colon+1 : end])
		if label == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-20s: %s", label, value))
	}
	return lines
}

// labelStart walks back from the colon at pos to the start of the label.
func labelStart(s string, pos int, fullRun bool) int {
	i := pos
	if fullRun {
		// Take the whole alphanumeric/space run.
		for i > 0 && isLabelChar(s[i-1]) {
			i--
		}
	} else {
		// Take only the last word.
		for i > 0 && isLabelChar(s[i-1]) && s[i-1] != ' ' {
			i--
		}
	}
	for i < pos && s[i] == ' ' {
		i++
	}
	return i
}

func isLabelChar(c byte) bool {
	return c == ' ' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
