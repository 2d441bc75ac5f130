package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// LiveFlag decodes the host's 0/1 flags. Booleans are accepted as well.
type LiveFlag bool

func (f LiveFlag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *LiveFlag) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	switch raw {
	case "null", "0", "false":
		*f = false
		return nil
	case "1", "true":
		*f = true
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid flag value %s", raw)
	}
	*f = n != 0
	return nil
}

type LiveSet struct {
	ID   int         `json:"id"`
	View LiveSetView `json:"view"`
}

type LiveSetView struct {
	SelectedTrack *Track `json:"selected_track"`
	DetailClip    *Clip  `json:"detail_clip"`
}

type Track struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Clip struct {
	ID                   int      `json:"id"`
	Name                 string   `json:"name"`
	StartTime            float64  `json:"start_time"`
	EndTime              float64  `json:"end_time"`
	Length               float64  `json:"length"`
	SignatureNumerator   int      `json:"signature_numerator"`
	SignatureDenominator int      `json:"signature_denominator"`
	IsMidiClip           LiveFlag `json:"is_midi_clip"`
	IsArrangementClip    LiveFlag `json:"is_arrangement_clip"`
	Notes                []Note   `json:"notes"`
}

// ClipContext identifies the clip a note collection was loaded from.
type ClipContext struct {
	ClipID               int     `json:"clip_id"`
	ClipName             string  `json:"clip_name"`
	TrackID              int     `json:"track_id"`
	TrackName            string  `json:"track_name"`
	SongID               int     `json:"song_id"`
	IsArrangementClip    bool    `json:"is_arrangement_clip"`
	StartTime            float64 `json:"start_time"`
	EndTime              float64 `json:"end_time"`
	Length               float64 `json:"length"`
	SignatureNumerator   int     `json:"signature_numerator"`
	SignatureDenominator int     `json:"signature_denominator"`
}

// Eligible reports whether the live set has exactly one MIDI clip in detail
// view.
func (s *LiveSet) Eligible() bool {
	return s != nil && s.View.DetailClip != nil && bool(s.View.DetailClip.IsMidiClip)
}

// Context builds the clip context for an eligible live set.
func (s *LiveSet) Context() (ClipContext, bool) {
	if !s.Eligible() {
		return ClipContext{}, false
	}
	clip := s.View.DetailClip
	ctx := ClipContext{
		ClipID:               clip.ID,
		ClipName:             clip.Name,
		SongID:               s.ID,
		IsArrangementClip:    bool(clip.IsArrangementClip),
		StartTime:            clip.StartTime,
		EndTime:              clip.EndTime,
		Length:               clip.Length,
		SignatureNumerator:   clip.SignatureNumerator,
		SignatureDenominator: clip.SignatureDenominator,
	}
	if track := s.View.SelectedTrack; track != nil {
		ctx.TrackID = track.ID
		ctx.TrackName = track.Name
	}
	return ctx, true
}

// Title renders the heading shown above a clip's notes.
func (c ClipContext) Title() string {
	name := strings.TrimSpace(c.ClipName)
	if name == "" {
		name = "Untitled"
	}
	track := strings.TrimSpace(c.TrackName)
	if track == "" {
		return name
	}
	return name + " on " + track + " track"
}

func (c ClipContext) Signature() string {
	if c.SignatureNumerator <= 0 || c.SignatureDenominator <= 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", c.SignatureNumerator, c.SignatureDenominator)
}
