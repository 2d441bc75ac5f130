// Package smfio converts clip notes to and from Standard MIDI Files.
package smfio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"notelist/internal/types"
)

// TicksPerBeat is the resolution of written files. One clip beat is one
// quarter note.
const TicksPerBeat = 960

type Options struct {
	BPM         float64
	Channel     uint8
	TrackName   string
	Numerator   uint8
	Denominator uint8
}

func (o Options) normalized() Options {
	if o.BPM <= 0 {
		o.BPM = 120
	}
	if o.Channel > 15 {
		o.Channel = 0
	}
	if o.Numerator == 0 {
		o.Numerator = 4
	}
	if o.Denominator == 0 {
		o.Denominator = 4
	}
	return o
}

// Import is the result of reading a file.
type Import struct {
	Notes      []types.NotePatch
	BPM        float64
	Resolution uint16
}

type event struct {
	tick uint32
	off  bool
	key  uint8
	vel  uint8
}

// Write encodes notes as a format-1 file with a tempo track and one note
// track. Muted notes are skipped and every note lasts at least one tick.
func Write(w io.Writer, notes []types.Note, opts Options) (int64, error) {
	sm, err := build(notes, opts.normalized())
	if err != nil {
		return 0, err
	}
	return sm.WriteTo(w)
}

func WriteFile(path string, notes []types.Note, opts Options) error {
	sm, err := build(notes, opts.normalized())
	if err != nil {
		return err
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("write midi file: %w", err)
	}
	return nil
}

func build(notes []types.Note, opts Options) (*smf.SMF, error) {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerBeat)

	var meta smf.Track
	meta.Add(0, smf.MetaMeter(opts.Numerator, opts.Denominator))
	meta.Add(0, smf.MetaTempo(opts.BPM))
	meta.Close(0)
	if err := sm.Add(meta); err != nil {
		return nil, fmt.Errorf("add tempo track: %w", err)
	}

	events := make([]event, 0, len(notes)*2)
	for _, note := range notes {
		if note.Mute != 0 || note.Pitch < 0 || note.Pitch > 127 {
			continue
		}
		start := toTicks(note.StartTime)
		end := toTicks(note.StartTime + note.Duration)
		if end <= start {
			end = start + 1
		}
		key := uint8(note.Pitch)
		events = append(events,
			event{tick: start, key: key, vel: velocity(note.Velocity)},
			event{tick: end, off: true, key: key},
		)
	}
	// Offs sort before ons at the same tick so back-to-back notes on one key
	// do not cut each other short.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	var track smf.Track
	if opts.TrackName != "" {
		track.Add(0, smf.MetaTrackSequenceName(opts.TrackName))
	}
	var last uint32
	for _, ev := range events {
		delta := ev.tick - last
		last = ev.tick
		if ev.off {
			track.Add(delta, midi.NoteOff(opts.Channel, ev.key))
			continue
		}
		track.Add(delta, midi.NoteOn(opts.Channel, ev.key, ev.vel))
	}
	track.Close(0)
	if err := sm.Add(track); err != nil {
		return nil, fmt.Errorf("add note track: %w", err)
	}
	return sm, nil
}

func toTicks(beats float64) uint32 {
	if math.IsNaN(beats) || beats <= 0 {
		return 0
	}
	ticks := math.Round(beats * TicksPerBeat)
	if ticks > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(ticks)
}

func velocity(v float64) uint8 {
	rounded := math.Round(v)
	switch {
	case math.IsNaN(rounded) || rounded < 1:
		return 1
	case rounded > 127:
		return 127
	default:
		return uint8(rounded)
	}
}

// Read decodes note-on/note-off pairs from every track. Start and duration
// are returned in beats. A note still sounding at the end of its track is
// dropped.
func Read(r io.Reader) (out Import, e error) {
	// smf can panic on malformed input.
	defer func() {
		if rec := recover(); rec != nil {
			out = Import{}
			e = fmt.Errorf("parse midi file: %v", rec)
		}
	}()

	sm, err := smf.ReadFrom(r)
	if err != nil {
		return Import{}, fmt.Errorf("parse midi file: %w", err)
	}
	ticks, ok := sm.TimeFormat.(smf.MetricTicks)
	if !ok {
		return Import{}, errors.New("unsupported time format: only metric ticks are supported")
	}
	res := ticks.Resolution()
	if res == 0 {
		return Import{}, errors.New("invalid resolution 0")
	}
	out.Resolution = res
	if tempos := sm.TempoChanges(); len(tempos) > 0 {
		out.BPM = tempos[0].BPM
	}

	type pendingKey struct{ ch, key uint8 }
	type pendingNote struct {
		tick uint64
		vel  uint8
	}
	type found struct {
		tick  uint64
		patch types.NotePatch
	}
	var notes []found
	for _, track := range sm.Tracks {
		var abs uint64
		pending := map[pendingKey][]pendingNote{}
		for _, ev := range track {
			abs += uint64(ev.Delta)
			msg := midi.Message(ev.Message)
			var ch, key, vel uint8
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				k := pendingKey{ch, key}
				pending[k] = append(pending[k], pendingNote{tick: abs, vel: vel})
			case msg.GetNoteEnd(&ch, &key):
				k := pendingKey{ch, key}
				queue := pending[k]
				if len(queue) == 0 {
					continue
				}
				start := queue[0]
				pending[k] = queue[1:]
				notes = append(notes, found{
					tick: start.tick,
					patch: types.NotePatch{
						StartTime: types.Float(float64(start.tick) / float64(res)),
						Pitch:     types.Int(int(key)),
						Velocity:  types.Float(float64(start.vel)),
						Duration:  types.Float(float64(abs-start.tick) / float64(res)),
					},
				})
			}
		}
	}
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].tick != notes[j].tick {
			return notes[i].tick < notes[j].tick
		}
		return *notes[i].patch.Pitch < *notes[j].patch.Pitch
	})
	out.Notes = make([]types.NotePatch, 0, len(notes))
	for _, n := range notes {
		out.Notes = append(out.Notes, n.patch)
	}
	return out, nil
}

func ReadFile(path string) (Import, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Import{}, fmt.Errorf("read midi file: %w", err)
	}
	return Read(bytes.NewReader(data))
}
