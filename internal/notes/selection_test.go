package notes

import (
	"testing"

	"notelist/internal/types"
)

func TestDeleteMarkedRemovesMiddleNote(t *testing.T) {
	c := NewCollection(clippyNotes())
	sel := c.Selection()
	if !sel.Toggle(1) {
		t.Fatalf("expected toggle to mark")
	}

	marked := sel.MarkedIndices()
	if !equalInts(marked, []int{1}) {
		t.Fatalf("unexpected marked indices: %v", marked)
	}
	if removed := c.DeleteMarked(); removed != 1 {
		t.Fatalf("expected one removal, got %d", removed)
	}
	got := c.Notes()
	if len(got) != 2 || got[0].StartTime != 0 || got[0].Pitch != 60 || got[1].StartTime != 1.5 || got[1].Pitch != 67 {
		t.Fatalf("unexpected remaining notes: %#v", got)
	}
	if sel.Count() != 0 {
		t.Fatalf("expected selection cleared, got %d", sel.Count())
	}
}

func TestDeleteWorkflowThroughRemoveWhere(t *testing.T) {
	c := NewCollection(clippyNotes())
	sel := c.Selection()
	sel.Toggle(0)
	sel.Toggle(2)

	set := map[int]bool{}
	for _, idx := range sel.MarkedIndices() {
		set[idx] = true
	}
	c.RemoveWhere(func(index int, _ types.Note) bool { return set[index] })
	sel.Clear()

	if !equalInts(pitches(c.Notes()), []int{64}) {
		t.Fatalf("unexpected remaining: %v", pitches(c.Notes()))
	}
	if len(sel.MarkedIndices()) != 0 {
		t.Fatalf("expected empty selection")
	}
}

func TestMarksFollowNotesAcrossResort(t *testing.T) {
	c := NewCollection(clippyNotes())
	sel := c.Selection()
	sel.Toggle(0) // pitch 60

	if _, err := c.UpdateField(0, types.NoteFieldStartTime, "4"); err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	if !equalInts(sel.MarkedIndices(), []int{2}) {
		t.Fatalf("expected mark to follow note to index 2, got %v", sel.MarkedIndices())
	}
	c.Insert(types.NotePatch{StartTime: types.Float(0)})
	if !sel.IsMarked(3) || sel.IsMarked(0) {
		t.Fatalf("expected mark at index 3 after insert, got %v", sel.MarkedIndices())
	}
}

func TestReplaceAllClearsSelection(t *testing.T) {
	c := NewCollection(clippyNotes())
	c.Selection().Toggle(0)
	c.ReplaceAll(clippyNotes())
	if c.Selection().Count() != 0 {
		t.Fatalf("expected selection to be invalidated")
	}
}

func TestToggleAllMarksThenUnmarks(t *testing.T) {
	c := NewCollection(clippyNotes())
	sel := c.Selection()
	sel.Toggle(1)

	sel.ToggleAll([]int{0, 1, 2})
	if !equalInts(sel.MarkedIndices(), []int{0, 1, 2}) {
		t.Fatalf("expected all marked, got %v", sel.MarkedIndices())
	}
	sel.ToggleAll([]int{0, 1, 2})
	if sel.Count() != 0 {
		t.Fatalf("expected all unmarked, got %v", sel.MarkedIndices())
	}
	sel.ToggleAll([]int{5, -1})
	if sel.Count() != 0 {
		t.Fatalf("out of range indices must be ignored")
	}
}

func TestSelectionOnZeroValueCollection(t *testing.T) {
	var c Collection
	c.Insert(types.NotePatch{})
	if !c.Selection().Toggle(0) {
		t.Fatalf("expected toggle to mark on zero-value collection")
	}
}
