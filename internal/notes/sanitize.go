package notes

import (
	"math"
	"strconv"
	"strings"

	"notelist/internal/types"
)

// FieldStep is the insert cursor's advance amount. It is sanitized like a
// note field but never stored on a note.
const FieldStep types.NoteField = "step"

type valueKind int

const (
	kindNumber valueKind = iota
	kindInteger
)

// Profile describes how raw input for one field is parsed and bounded.
type Profile struct {
	kind   valueKind
	min    float64
	max    float64
	hasMax bool
}

var profiles = map[types.NoteField]Profile{
	types.NoteFieldStartTime:         {kind: kindNumber, min: 0},
	types.NoteFieldPitch:             {kind: kindInteger, min: 0, max: 127, hasMax: true},
	types.NoteFieldVelocity:          {kind: kindNumber, min: 0, max: 127, hasMax: true},
	types.NoteFieldDuration:          {kind: kindNumber, min: 0},
	types.NoteFieldProbability:       {kind: kindNumber, min: 0, max: 1, hasMax: true},
	types.NoteFieldVelocityDeviation: {kind: kindNumber, min: -127, max: 127, hasMax: true},
	FieldStep:                        {kind: kindNumber, min: 0},
}

func ProfileFor(field types.NoteField) (Profile, bool) {
	p, ok := profiles[field]
	return p, ok
}

func (p Profile) Integer() bool { return p.kind == kindInteger }

func (p Profile) Bounds() (min, max float64, hasMax bool) {
	return p.min, p.max, p.hasMax
}

// Sanitize parses raw and clamps it. When raw does not parse, previous is
// returned unchanged and ok is false.
func (p Profile) Sanitize(raw string, previous float64) (value float64, ok bool) {
	var parsed float64
	if p.kind == kindInteger {
		parsed, ok = parseLeadingInt(raw)
	} else {
		parsed, ok = parseNumber(raw)
	}
	if !ok {
		return previous, false
	}
	return p.clamp(parsed), true
}

// Coerce applies the same rules to an already numeric value.
func (p Profile) Coerce(value float64, previous float64) (float64, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return previous, false
	}
	if p.kind == kindInteger {
		value = math.Round(value)
	}
	return p.clamp(value), true
}

func (p Profile) clamp(value float64) float64 {
	if value < p.min {
		value = p.min
	}
	if p.hasMax && value > p.max {
		value = p.max
	}
	if value == 0 {
		// normalize negative zero
		return 0
	}
	return value
}

// parseLeadingInt reads an optional sign and the leading decimal digits,
// ignoring anything after them, so "12.7" yields 12 and "7th" yields 7.
func parseLeadingInt(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
