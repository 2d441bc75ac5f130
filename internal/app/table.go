package app

import (
	"fmt"
	"strconv"
	"strings"

	"notelist/internal/notes"
	"notelist/internal/types"
)

type tableColumn struct {
	title string
	field types.NoteField
	width int
}

var tableColumns = []tableColumn{
	{title: "Start", field: types.NoteFieldStartTime, width: 9},
	{title: "Pitch", field: types.NoteFieldPitch, width: 6},
	{title: "Velocity", field: types.NoteFieldVelocity, width: 9},
	{title: "Dur", field: types.NoteFieldDuration, width: 8},
	{title: "Prob", field: types.NoteFieldProbability, width: 6},
	{title: "Vel Dev", field: types.NoteFieldVelocityDeviation, width: 8},
}

const (
	markColumnWidth = 3
	columnGap       = 2
)

// tableView is everything renderTable needs; it holds no references back
// into the model.
type tableView struct {
	notes   []types.Note
	marked  func(index int) bool
	start   int
	end     int
	row     int
	col     int
	active  bool
	editing bool
	editor  string
}

func renderTable(v tableView) string {
	lines := make([]string, 0, v.end-v.start+1)
	header := strings.Repeat(" ", markColumnWidth)
	for _, column := range tableColumns {
		header += strings.Repeat(" ", columnGap) + fitCell(column.title, column.width, true)
	}
	lines = append(lines, columnHeaderStyle.Render(header))

	for i := v.start; i < v.end && i < len(v.notes); i++ {
		note := v.notes[i]
		isMarked := v.marked != nil && v.marked(i)
		mark := "[ ]"
		if isMarked {
			mark = "[x]"
		}
		style := rowStyle
		if isMarked {
			style = markedRowStyle
		}
		if v.active && i == v.row {
			style = selectedStyle
		}
		var b strings.Builder
		b.WriteString(style.Render(mark))
		for c, column := range tableColumns {
			b.WriteString(style.Render(strings.Repeat(" ", columnGap)))
			value, _ := note.Value(column.field)
			cell := fitCell(formatNoteValue(column.field, value), column.width, true)
			switch {
			case v.active && i == v.row && c == v.col && v.editing:
				b.WriteString(padToWidth(truncateToWidth(v.editor, column.width), column.width))
			case v.active && i == v.row && c == v.col:
				b.WriteString(cellCursorStyle.Render(cell))
			default:
				b.WriteString(style.Render(cell))
			}
		}
		lines = append(lines, b.String())
	}
	if len(v.notes) == 0 {
		lines = append(lines, subtleStyle.Render("No notes."))
	}
	return strings.Join(lines, "\n")
}

func formatNoteValue(field types.NoteField, value float64) string {
	if profile, ok := notes.ProfileFor(field); ok && profile.Integer() {
		return strconv.Itoa(int(value))
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func pageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// pageBounds returns the half-open index range shown on page.
func pageBounds(total, pageSize, page int) (int, int) {
	if pageSize <= 0 {
		return 0, total
	}
	start := page * pageSize
	if start > total {
		start = total
	}
	return start, min(total, start+pageSize)
}

func pagingLine(total, pageSize, page int) string {
	start, end := pageBounds(total, pageSize, page)
	if total == 0 {
		return "Showing 0 to 0 of 0 notes"
	}
	return fmt.Sprintf("Showing %d to %d of %d notes", start+1, end, total)
}
