package app

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"

	"notelist/internal/types"
)

func TestPagingLine(t *testing.T) {
	cases := []struct {
		total, size, page int
		want              string
	}{
		{0, 100, 0, "Showing 0 to 0 of 0 notes"},
		{3, 100, 0, "Showing 1 to 3 of 3 notes"},
		{250, 100, 1, "Showing 101 to 200 of 250 notes"},
		{250, 100, 2, "Showing 201 to 250 of 250 notes"},
	}
	for _, tc := range cases {
		if got := pagingLine(tc.total, tc.size, tc.page); got != tc.want {
			t.Fatalf("pagingLine(%d, %d, %d) = %q, want %q", tc.total, tc.size, tc.page, got, tc.want)
		}
	}
}

func TestPageCountAndBounds(t *testing.T) {
	if got := pageCount(0, 100); got != 1 {
		t.Fatalf("expected one page for empty list, got %d", got)
	}
	if got := pageCount(201, 100); got != 3 {
		t.Fatalf("expected three pages, got %d", got)
	}
	start, end := pageBounds(5, 2, 9)
	if start != 5 || end != 5 {
		t.Fatalf("expected empty range past the end, got [%d, %d)", start, end)
	}
}

func TestFormatNoteValue(t *testing.T) {
	if got := formatNoteValue(types.NoteFieldPitch, 60); got != "60" {
		t.Fatalf("unexpected pitch %q", got)
	}
	if got := formatNoteValue(types.NoteFieldDuration, 0.25); got != "0.25" {
		t.Fatalf("unexpected duration %q", got)
	}
	if got := formatNoteValue(types.NoteFieldVelocity, 100); got != "100" {
		t.Fatalf("unexpected velocity %q", got)
	}
}

func TestRenderTableMarksAndEmptyState(t *testing.T) {
	rows := seedNotes()
	out := xansi.Strip(renderTable(tableView{
		notes:  rows,
		marked: func(i int) bool { return i == 1 },
		start:  0,
		end:    len(rows),
		row:    0,
		active: true,
	}))
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus three rows, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Vel Dev") {
		t.Fatalf("expected column header, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "[x]") || !strings.HasPrefix(lines[1], "[ ]") {
		t.Fatalf("unexpected mark column:\n%s", out)
	}

	empty := xansi.Strip(renderTable(tableView{}))
	if !strings.Contains(empty, "No notes.") {
		t.Fatalf("expected empty state, got %q", empty)
	}
}

func TestRenderTableShowsEditorInActiveCell(t *testing.T) {
	rows := seedNotes()
	out := xansi.Strip(renderTable(tableView{
		notes:   rows,
		start:   0,
		end:     1,
		col:     1,
		active:  true,
		editing: true,
		editor:  "72",
	}))
	if !strings.Contains(out, "72") {
		t.Fatalf("expected editor text in table:\n%s", out)
	}
}
