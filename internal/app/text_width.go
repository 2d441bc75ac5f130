package app

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	if xansi.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return "…"
	}
	return xansi.Cut(text, 0, width-1) + "…"
}

func padToWidth(text string, width int) string {
	gap := width - xansi.StringWidth(text)
	if gap <= 0 {
		return text
	}
	return text + strings.Repeat(" ", gap)
}

// fitCell truncates or pads plain cell text to exactly width columns.
func fitCell(text string, width int, alignRight bool) string {
	if width <= 0 {
		return ""
	}
	text = runewidth.Truncate(text, width, "…")
	if alignRight {
		return runewidth.FillLeft(text, width)
	}
	return runewidth.FillRight(text, width)
}
