package notes

import "notelist/internal/types"

// InsertCursor holds the staged values used by the insert workflows.
type InsertCursor struct {
	StartTime float64
	Pitch     int
	Velocity  float64
	Duration  float64
	Step      float64
}

func NewInsertCursor(step float64) InsertCursor {
	cursor := InsertCursor{
		StartTime: Defaults.StartTime,
		Pitch:     Defaults.Pitch,
		Velocity:  Defaults.Velocity,
		Duration:  Defaults.Duration,
		Step:      1,
	}
	cursor.Step, _ = profiles[FieldStep].Coerce(step, cursor.Step)
	return cursor
}

var CursorFields = []types.NoteField{
	types.NoteFieldStartTime,
	types.NoteFieldPitch,
	types.NoteFieldVelocity,
	types.NoteFieldDuration,
	FieldStep,
}

func (c InsertCursor) Value(field types.NoteField) float64 {
	switch field {
	case types.NoteFieldStartTime:
		return c.StartTime
	case types.NoteFieldPitch:
		return float64(c.Pitch)
	case types.NoteFieldVelocity:
		return c.Velocity
	case types.NoteFieldDuration:
		return c.Duration
	case FieldStep:
		return c.Step
	default:
		return 0
	}
}

// Set commits raw to field. Invalid input keeps the previous value; the
// committed value is returned either way.
func (c *InsertCursor) Set(field types.NoteField, raw string) float64 {
	profile, ok := profiles[field]
	if !ok {
		return 0
	}
	value, _ := profile.Sanitize(raw, c.Value(field))
	switch field {
	case types.NoteFieldStartTime:
		c.StartTime = value
	case types.NoteFieldPitch:
		c.Pitch = int(value)
	case types.NoteFieldVelocity:
		c.Velocity = value
	case types.NoteFieldDuration:
		c.Duration = value
	case FieldStep:
		c.Step = value
	default:
		return 0
	}
	return value
}

func (c InsertCursor) Patch() types.NotePatch {
	return types.NotePatch{
		StartTime: types.Float(c.StartTime),
		Pitch:     types.Int(c.Pitch),
		Velocity:  types.Float(c.Velocity),
		Duration:  types.Float(c.Duration),
	}
}

// Advance moves the start time forward by one step.
func (c *InsertCursor) Advance() {
	c.StartTime += c.Step
}

// Insert adds one note at the cursor and returns its index.
func (c *InsertCursor) Insert(coll *Collection) int {
	indices := coll.Insert(c.Patch())
	if len(indices) == 0 {
		return -1
	}
	return indices[0]
}

func (c *InsertCursor) InsertAndStep(coll *Collection) int {
	index := c.Insert(coll)
	c.Advance()
	return index
}
