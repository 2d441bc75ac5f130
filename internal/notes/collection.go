package notes

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"notelist/internal/types"
)

var (
	ErrIndexOutOfRange = errors.New("note index out of range")
	ErrUnknownField    = errors.New("unknown note field")
)

// Defaults completes partial notes on insert.
var Defaults = types.Note{
	StartTime:         0,
	Pitch:             64,
	Velocity:          100,
	Duration:          1,
	Probability:       1,
	VelocityDeviation: 0,
	Mute:              0,
	ReleaseVelocity:   64,
	NoteID:            0,
}

// Collection is the editable, ordered note set of one clip. Notes are kept
// sorted by start time, then pitch, with ties in insertion order.
//
// Each entry carries a local sequence number so marks survive re-sorting.
type Collection struct {
	mu       sync.RWMutex
	entries  []entry
	nextSeq  uint64
	revision uint64
	marked   map[uint64]struct{}
}

type entry struct {
	seq  uint64
	note types.Note
}

// EditResult reports the outcome of a single field edit.
type EditResult struct {
	Note types.Note
	// Index is the note's position after any re-sort.
	Index int
	// Reverted is set when the input was rejected and the previous value kept.
	Reverted bool
}

func NewCollection(notes []types.Note) *Collection {
	c := &Collection{marked: map[uint64]struct{}{}}
	c.ReplaceAll(notes)
	return c
}

// ReplaceAll stores a sorted copy of notes as-is and drops all marks.
func (c *Collection) ReplaceAll(notes []types.Note) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make([]entry, 0, len(notes))
	for _, note := range notes {
		c.entries = append(c.entries, c.newEntryLocked(note))
	}
	c.sortLocked()
	c.marked = map[uint64]struct{}{}
	c.revision++
}

// UpdateField parses raw for field and writes the sanitized value to the note
// at index. Unparseable input leaves the note unchanged. Only precondition
// violations are reported as errors.
func (c *Collection) UpdateField(index int, field types.NoteField, raw string) (EditResult, error) {
	profile, ok := profiles[field]
	if !ok || field == FieldStep {
		return EditResult{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return c.update(index, field, func(previous float64) (float64, bool) {
		return profile.Sanitize(raw, previous)
	})
}

// UpdateFieldValue is UpdateField for numeric input. Integer fields are
// rounded; NaN and infinities are rejected.
func (c *Collection) UpdateFieldValue(index int, field types.NoteField, value float64) (EditResult, error) {
	profile, ok := profiles[field]
	if !ok || field == FieldStep {
		return EditResult{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return c.update(index, field, func(previous float64) (float64, bool) {
		return profile.Coerce(value, previous)
	})
}

func (c *Collection) update(index int, field types.NoteField, sanitize func(previous float64) (float64, bool)) (EditResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.entries) {
		return EditResult{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(c.entries))
	}
	current := c.entries[index]
	previous, _ := current.note.Value(field)
	value, accepted := sanitize(previous)
	if !accepted {
		return EditResult{Note: current.note, Index: index, Reverted: true}, nil
	}
	updated, _ := current.note.WithValue(field, value)
	c.entries[index].note = updated
	if field == types.NoteFieldStartTime || field == types.NoteFieldPitch {
		c.sortLocked()
		index = c.indexOfLocked(current.seq)
	}
	c.revision++
	return EditResult{Note: updated, Index: index}, nil
}

// Insert completes each patch with Defaults, clamps explicit values and adds
// the notes. It returns the post-sort indices of the inserted notes.
func (c *Collection) Insert(patches ...types.NotePatch) []int {
	if len(patches) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	seqs := make([]uint64, 0, len(patches))
	for _, patch := range patches {
		e := c.newEntryLocked(complete(patch))
		seqs = append(seqs, e.seq)
		c.entries = append(c.entries, e)
	}
	c.sortLocked()
	c.revision++
	indices := make([]int, 0, len(seqs))
	for _, seq := range seqs {
		indices = append(indices, c.indexOfLocked(seq))
	}
	return indices
}

// RemoveWhere drops every note for which pred returns true and returns how
// many were removed. Remaining notes keep their relative order.
func (c *Collection) RemoveWhere(pred func(index int, note types.Note) bool) int {
	if pred == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(pred)
}

func (c *Collection) removeLocked(pred func(index int, note types.Note) bool) int {
	kept := c.entries[:0]
	removed := 0
	for i, e := range c.entries {
		if pred(i, e.note) {
			delete(c.marked, e.seq)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(c.entries); i++ {
		c.entries[i] = entry{}
	}
	c.entries = kept
	if removed > 0 {
		c.revision++
	}
	return removed
}

// DeleteMarked removes every marked note and clears the marks.
func (c *Collection) DeleteMarked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	marked := c.markedIndicesLocked()
	if len(marked) == 0 {
		return 0
	}
	set := make(map[int]struct{}, len(marked))
	for _, idx := range marked {
		set[idx] = struct{}{}
	}
	removed := c.removeLocked(func(index int, _ types.Note) bool {
		_, ok := set[index]
		return ok
	})
	c.marked = map[uint64]struct{}{}
	return removed
}

// Notes returns a snapshot copy in display order.
func (c *Collection) Notes() []types.Note {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.Note, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.note
	}
	return out
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Collection) At(index int) (types.Note, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if index < 0 || index >= len(c.entries) {
		return types.Note{}, false
	}
	return c.entries[index].note, true
}

// Revision increases on every mutation.
func (c *Collection) Revision() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}

func (c *Collection) Selection() *Selection {
	return &Selection{c: c}
}

func (c *Collection) newEntryLocked(note types.Note) entry {
	c.nextSeq++
	return entry{seq: c.nextSeq, note: note}
}

func (c *Collection) sortLocked() {
	sort.SliceStable(c.entries, func(i, j int) bool {
		return less(c.entries[i].note, c.entries[j].note)
	})
}

func (c *Collection) indexOfLocked(seq uint64) int {
	for i, e := range c.entries {
		if e.seq == seq {
			return i
		}
	}
	return -1
}

func less(a, b types.Note) bool {
	if a.StartTime != b.StartTime {
		return a.StartTime < b.StartTime
	}
	return a.Pitch < b.Pitch
}

// Sorted reports whether notes satisfy the collection ordering.
func Sorted(notes []types.Note) bool {
	for i := 1; i < len(notes); i++ {
		if less(notes[i], notes[i-1]) {
			return false
		}
	}
	return true
}

func complete(patch types.NotePatch) types.Note {
	note := Defaults
	if patch.StartTime != nil {
		note.StartTime = coerce(types.NoteFieldStartTime, *patch.StartTime, note.StartTime)
	}
	if patch.Pitch != nil {
		note.Pitch = int(coerce(types.NoteFieldPitch, float64(*patch.Pitch), float64(note.Pitch)))
	}
	if patch.Velocity != nil {
		note.Velocity = coerce(types.NoteFieldVelocity, *patch.Velocity, note.Velocity)
	}
	if patch.Duration != nil {
		note.Duration = coerce(types.NoteFieldDuration, *patch.Duration, note.Duration)
	}
	if patch.Probability != nil {
		note.Probability = coerce(types.NoteFieldProbability, *patch.Probability, note.Probability)
	}
	if patch.VelocityDeviation != nil {
		note.VelocityDeviation = coerce(types.NoteFieldVelocityDeviation, *patch.VelocityDeviation, note.VelocityDeviation)
	}
	if patch.ReleaseVelocity != nil {
		note.ReleaseVelocity = *patch.ReleaseVelocity
	}
	if patch.Mute != nil {
		note.Mute = *patch.Mute
	}
	return note
}

func coerce(field types.NoteField, value, previous float64) float64 {
	out, _ := profiles[field].Coerce(value, previous)
	return out
}
