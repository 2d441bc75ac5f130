package types

import (
	"fmt"
	"strings"
)

type NoteField string

const (
	NoteFieldStartTime         NoteField = "start_time"
	NoteFieldPitch             NoteField = "pitch"
	NoteFieldVelocity          NoteField = "velocity"
	NoteFieldDuration          NoteField = "duration"
	NoteFieldProbability       NoteField = "probability"
	NoteFieldVelocityDeviation NoteField = "velocity_deviation"
)

// EditableNoteFields lists the fields a user may change, in display order.
var EditableNoteFields = []NoteField{
	NoteFieldStartTime,
	NoteFieldPitch,
	NoteFieldVelocity,
	NoteFieldDuration,
	NoteFieldProbability,
	NoteFieldVelocityDeviation,
}

func ParseNoteField(raw string) (NoteField, error) {
	field := NoteField(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range EditableNoteFields {
		if candidate == field {
			return field, nil
		}
	}
	return "", fmt.Errorf("unknown note field %q", raw)
}

// Note mirrors the remote host's note dictionary. NoteID is zero for notes
// that have not been saved yet.
type Note struct {
	StartTime         float64 `json:"start_time"`
	Pitch             int     `json:"pitch"`
	Velocity          float64 `json:"velocity"`
	Duration          float64 `json:"duration"`
	Probability       float64 `json:"probability"`
	VelocityDeviation float64 `json:"velocity_deviation"`
	ReleaseVelocity   float64 `json:"release_velocity"`
	Mute              int     `json:"mute"`
	NoteID            int     `json:"note_id"`
}

// NoteInput is the shape accepted by the remote when adding notes. It has no
// identity field; the remote assigns ids.
type NoteInput struct {
	StartTime         float64 `json:"start_time"`
	Pitch             int     `json:"pitch"`
	Velocity          float64 `json:"velocity"`
	Duration          float64 `json:"duration"`
	Probability       float64 `json:"probability"`
	VelocityDeviation float64 `json:"velocity_deviation"`
	ReleaseVelocity   float64 `json:"release_velocity"`
	Mute              int     `json:"mute"`
}

type NotesDictionary struct {
	Notes []NoteInput `json:"notes"`
}

// NotePatch is a partial note; nil fields take defaults on insert.
type NotePatch struct {
	StartTime         *float64 `json:"start_time,omitempty"`
	Pitch             *int     `json:"pitch,omitempty"`
	Velocity          *float64 `json:"velocity,omitempty"`
	Duration          *float64 `json:"duration,omitempty"`
	Probability       *float64 `json:"probability,omitempty"`
	VelocityDeviation *float64 `json:"velocity_deviation,omitempty"`
	ReleaseVelocity   *float64 `json:"release_velocity,omitempty"`
	Mute              *int     `json:"mute,omitempty"`
}

func (n Note) Input() NoteInput {
	return NoteInput{
		StartTime:         n.StartTime,
		Pitch:             n.Pitch,
		Velocity:          n.Velocity,
		Duration:          n.Duration,
		Probability:       n.Probability,
		VelocityDeviation: n.VelocityDeviation,
		ReleaseVelocity:   n.ReleaseVelocity,
		Mute:              n.Mute,
	}
}

func (in NoteInput) Note(id int) Note {
	return Note{
		StartTime:         in.StartTime,
		Pitch:             in.Pitch,
		Velocity:          in.Velocity,
		Duration:          in.Duration,
		Probability:       in.Probability,
		VelocityDeviation: in.VelocityDeviation,
		ReleaseVelocity:   in.ReleaseVelocity,
		Mute:              in.Mute,
		NoteID:            id,
	}
}

// Patch turns a full input into a patch with every field set.
func (in NoteInput) Patch() NotePatch {
	return NotePatch{
		StartTime:         Float(in.StartTime),
		Pitch:             Int(in.Pitch),
		Velocity:          Float(in.Velocity),
		Duration:          Float(in.Duration),
		Probability:       Float(in.Probability),
		VelocityDeviation: Float(in.VelocityDeviation),
		ReleaseVelocity:   Float(in.ReleaseVelocity),
		Mute:              Int(in.Mute),
	}
}

func NoteInputs(notes []Note) []NoteInput {
	out := make([]NoteInput, 0, len(notes))
	for _, note := range notes {
		out = append(out, note.Input())
	}
	return out
}

// Value returns the numeric value of an editable field.
func (n Note) Value(field NoteField) (float64, bool) {
	switch field {
	case NoteFieldStartTime:
		return n.StartTime, true
	case NoteFieldPitch:
		return float64(n.Pitch), true
	case NoteFieldVelocity:
		return n.Velocity, true
	case NoteFieldDuration:
		return n.Duration, true
	case NoteFieldProbability:
		return n.Probability, true
	case NoteFieldVelocityDeviation:
		return n.VelocityDeviation, true
	default:
		return 0, false
	}
}

// WithValue returns a copy of n with field set. Integer fields receive the
// value truncated toward zero; callers round beforehand when needed.
func (n Note) WithValue(field NoteField, value float64) (Note, bool) {
	switch field {
	case NoteFieldStartTime:
		n.StartTime = value
	case NoteFieldPitch:
		n.Pitch = int(value)
	case NoteFieldVelocity:
		n.Velocity = value
	case NoteFieldDuration:
		n.Duration = value
	case NoteFieldProbability:
		n.Probability = value
	case NoteFieldVelocityDeviation:
		n.VelocityDeviation = value
	default:
		return n, false
	}
	return n, true
}

func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }
