package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"emotion-panel/emotion"
	"emotion-panel/history"
	"emotion-panel/preset"
)

// Markdown renders text for the terminal, or with the plain style when
// stdout is not a terminal.
func Markdown(text string) string {
	var opts []glamour.TermRendererOption
	if IsTerminal(os.Stdout) {
		opts = []glamour.TermRendererOption{
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(0),
		}
	} else {
		opts = []glamour.TermRendererOption{
			glamour.WithStandardStyle("notty"),
			glamour.WithWordWrap(0),
		}
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return text
	}
	rendered, err := r.Render(text)
	if err != nil {
		return text
	}
	return rendered
}

// TaxonomyTable lists labels in order with their images.
func TaxonomyTable(t *emotion.Taxonomy) string {
	var b strings.Builder
	b.WriteString("| # | Label | Image | |\n|---|---|---|---|\n")
	for i, l := range t.Labels() {
		url, _ := t.Image(l)
		if url == "" {
			url = "_none_"
		}
		mark := ""
		if emotion.IsProtected(l) {
			mark = "protected"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", i+1, cell(l), cell(url), mark)
	}
	return b.String()
}

// HistoryTable lists entries newest first.
func HistoryTable(entries []history.Entry) string {
	if len(entries) == 0 {
		return "_No emotions recorded yet._\n"
	}
	var b strings.Builder
	b.WriteString("| Time | Emotion |\n|---|---|\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "| %s | %s |\n", cell(e.Timestamp), cell(e.Label))
	}
	return b.String()
}

// PresetTable lists presets, marking the current character.
func PresetTable(presets []preset.Preset, current string) string {
	if len(presets) == 0 {
		return "_No saved characters._\n"
	}
	var b strings.Builder
	b.WriteString("| Character | Model | Labels | Auto | |\n|---|---|---|---|---|\n")
	for _, p := range presets {
		mark := ""
		if p.Name == current {
			mark = "current"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %t | %s |\n",
			cell(p.Name), cell(p.ModelName), p.Taxonomy.Len(), p.AutoAnalyze, mark)
	}
	return b.String()
}

// MaskKey hides all but the last four characters of an API key.
func MaskKey(key string) string {
	if key == "" {
		return "_not set_"
	}
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
