package app

import (
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	glamouransi "github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	xansi "github.com/charmbracelet/x/ansi"
)

var (
	rendererMu       sync.Mutex
	renderersByWidth = map[int]*glamour.TermRenderer{}
)

func renderMarkdown(input string, width int) string {
	input = strings.TrimRight(input, "\n")
	if input == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := getRenderer(width)
	if r == nil {
		return input
	}
	out, err := r.Render(input)
	if err != nil {
		return input
	}
	out = strings.TrimRight(out, "\n")
	out = xansi.Hardwrap(out, width, true)
	return strings.TrimRight(out, "\n")
}

func getRenderer(width int) *glamour.TermRenderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if renderer, ok := renderersByWidth[width]; ok && renderer != nil {
		return renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(buildStyleConfig()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderersByWidth[width] = r
	return r
}

func buildStyleConfig() glamouransi.StyleConfig {
	base := styles.DarkStyleConfig
	base.Document.StylePrimitive.BlockPrefix = ""
	base.Document.StylePrimitive.BlockSuffix = ""
	zero := uint(0)
	base.Document.Margin = &zero
	return base
}

// helpMarkdown lists every enabled binding as a markdown table per group.
func helpMarkdown(groups []helpGroup) string {
	var b strings.Builder
	b.WriteString("# Keys\n")
	for _, group := range groups {
		b.WriteString("\n## " + group.title + "\n\n| key | action |\n| --- | --- |\n")
		for _, binding := range group.bindings {
			if !binding.Enabled() {
				continue
			}
			h := binding.Help()
			b.WriteString("| `" + escapeTableCell(h.Key) + "` | " + escapeTableCell(h.Desc) + " |\n")
		}
	}
	return b.String()
}

type helpGroup struct {
	title    string
	bindings []key.Binding
}

func escapeTableCell(text string) string {
	return strings.ReplaceAll(text, "|", "\\|")
}
