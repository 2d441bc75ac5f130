package host

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"notelist/internal/logging"
	"notelist/internal/types"
)

// RemoveRange bounds the notes a replace clears before adding the new set.
type RemoveRange struct {
	FromPitch int     `json:"from_pitch"`
	PitchSpan int     `json:"pitch_span"`
	FromTime  float64 `json:"from_time"`
	TimeSpan  float64 `json:"time_span"`
}

func (r RemoveRange) contains(note types.Note) bool {
	return note.Pitch >= r.FromPitch &&
		note.Pitch < r.FromPitch+r.PitchSpan &&
		note.StartTime >= r.FromTime &&
		note.StartTime < r.FromTime+r.TimeSpan
}

// FullRange covers every pitch and any realistic clip length.
var FullRange = RemoveRange{FromPitch: 0, PitchSpan: 128, FromTime: 0, TimeSpan: 1000000}

// ReplaceResult carries both halves of the replace mutation.
type ReplaceResult struct {
	Removed types.Clip
	Added   types.Clip
}

// Service implements the host operations over a Store.
type Service struct {
	store  *Store
	logger logging.Logger
}

func NewService(store *Store, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{store: store, logger: logger}
}

// SelectedClip returns the live set with its selected track and detail clip.
func (s *Service) SelectedClip(ctx context.Context) (*types.LiveSet, error) {
	var out *types.LiveSet
	err := s.store.view(ctx, func(tx *storeTx) error {
		state, err := tx.liveSet()
		if err != nil {
			return err
		}
		out = &types.LiveSet{ID: state.SongID}
		for i := range state.Tracks {
			if state.Tracks[i].ID == state.SelectedTrackID {
				track := state.Tracks[i]
				out.View.SelectedTrack = &track
			}
		}
		if state.DetailClipID == 0 {
			return nil
		}
		record, ok, err := tx.clip(state.DetailClipID)
		if err != nil || !ok {
			return err
		}
		clip := record.Clip
		out.View.DetailClip = &clip
		return nil
	})
	if err != nil {
		return nil, asServiceError("read live set", err)
	}
	return out, nil
}

// ReplaceAllNotes clears the clip's notes inside rng and adds notes with
// fresh ids. Every note is validated first; any invalid note rejects the
// whole request and storage is left unchanged.
func (s *Service) ReplaceAllNotes(ctx context.Context, clipID int, rng RemoveRange, notes []types.NoteInput) (ReplaceResult, error) {
	if problems := validateNotes(notes); len(problems) > 0 {
		return ReplaceResult{}, invalidError("invalid notes", problems)
	}
	var result ReplaceResult
	err := s.store.update(ctx, func(tx *storeTx) error {
		state, err := tx.liveSet()
		if err != nil {
			return err
		}
		record, ok, err := tx.clip(clipID)
		if err != nil {
			return err
		}
		if !ok {
			return notFoundError("no clip with id %d", clipID)
		}
		if !record.Clip.IsMidiClip {
			return invalidError(fmt.Sprintf("clip %d is not a midi clip", clipID), nil)
		}
		kept := make([]types.Note, 0, len(record.Clip.Notes)+len(notes))
		for _, note := range record.Clip.Notes {
			if !rng.contains(note) {
				kept = append(kept, note)
			}
		}
		result.Removed = types.Clip{ID: record.Clip.ID, Name: record.Clip.Name, Notes: append([]types.Note(nil), kept...)}
		for _, input := range notes {
			kept = append(kept, input.Note(state.NextNoteID))
			state.NextNoteID++
		}
		record.Clip.Notes = kept
		if err := tx.putClip(record); err != nil {
			return err
		}
		if err := tx.putLiveSet(state); err != nil {
			return err
		}
		result.Added = types.Clip{ID: record.Clip.ID, Name: record.Clip.Name, Notes: record.Clip.Notes}
		return nil
	})
	if err != nil {
		return ReplaceResult{}, asServiceError("replace notes", err)
	}
	s.logger.Info("notes_replaced",
		logging.F("clip_id", clipID),
		logging.F("notes", len(result.Added.Notes)),
	)
	return result, nil
}

func (s *Service) FireClip(ctx context.Context, clipID int) error {
	err := s.store.update(ctx, func(tx *storeTx) error {
		record, ok, err := tx.clip(clipID)
		if err != nil {
			return err
		}
		if !ok {
			return notFoundError("no clip with id %d", clipID)
		}
		state, err := tx.liveSet()
		if err != nil {
			return err
		}
		clips, err := tx.clips()
		if err != nil {
			return err
		}
		for _, other := range clips {
			if other.TrackID == record.TrackID && other.Clip.ID != clipID && other.Playing {
				other.Playing = false
				if err := tx.putClip(other); err != nil {
					return err
				}
			}
		}
		record.Playing = true
		record.FireCount++
		state.Playing = true
		if err := tx.putClip(record); err != nil {
			return err
		}
		return tx.putLiveSet(state)
	})
	if err != nil {
		return asServiceError("fire clip", err)
	}
	s.logger.Info("clip_fired", logging.F("clip_id", clipID))
	return nil
}

func (s *Service) StartSong(ctx context.Context, songID int) error {
	return s.setPlaying(ctx, songID, true)
}

func (s *Service) StopSong(ctx context.Context, songID int) error {
	return s.setPlaying(ctx, songID, false)
}

func (s *Service) setPlaying(ctx context.Context, songID int, playing bool) error {
	err := s.store.update(ctx, func(tx *storeTx) error {
		state, err := tx.liveSet()
		if err != nil {
			return err
		}
		if state.SongID != songID {
			return notFoundError("no song with id %d", songID)
		}
		state.Playing = playing
		if !playing {
			clips, err := tx.clips()
			if err != nil {
				return err
			}
			for _, record := range clips {
				if record.Playing {
					record.Playing = false
					if err := tx.putClip(record); err != nil {
						return err
					}
				}
			}
		}
		return tx.putLiveSet(state)
	})
	if err != nil {
		return asServiceError("set transport", err)
	}
	s.logger.Info("transport_changed", logging.F("song_id", songID), logging.F("playing", playing))
	return nil
}

// SelectDetailClip changes which clip the host shows in its detail view.
// Zero clears the selection.
func (s *Service) SelectDetailClip(ctx context.Context, clipID int) error {
	err := s.store.update(ctx, func(tx *storeTx) error {
		state, err := tx.liveSet()
		if err != nil {
			return err
		}
		if clipID != 0 {
			record, ok, err := tx.clip(clipID)
			if err != nil {
				return err
			}
			if !ok {
				return notFoundError("no clip with id %d", clipID)
			}
			state.SelectedTrackID = record.TrackID
		}
		state.DetailClipID = clipID
		return tx.putLiveSet(state)
	})
	if err != nil {
		return asServiceError("select clip", err)
	}
	return nil
}

// Transport reports whether the song is playing and the fire count of a clip.
func (s *Service) Transport(ctx context.Context, clipID int) (playing bool, fired int, err error) {
	err = s.store.view(ctx, func(tx *storeTx) error {
		state, err := tx.liveSet()
		if err != nil {
			return err
		}
		playing = state.Playing
		record, ok, err := tx.clip(clipID)
		if err != nil || !ok {
			return err
		}
		fired = record.FireCount
		return nil
	})
	if err != nil {
		return false, 0, asServiceError("read transport", err)
	}
	return playing, fired, nil
}

// validateNotes returns one message per invalid note.
func validateNotes(notes []types.NoteInput) []string {
	var problems []string
	for i, note := range notes {
		var bad []string
		check := func(field string, value, min, max float64) {
			if math.IsNaN(value) || value < min || value > max {
				bad = append(bad, fmt.Sprintf("%s %v out of range [%v, %v]", field, value, min, max))
			}
		}
		check("start_time", note.StartTime, 0, math.MaxFloat64)
		check("pitch", float64(note.Pitch), 0, 127)
		check("velocity", note.Velocity, 0, 127)
		check("duration", note.Duration, 0, math.MaxFloat64)
		check("probability", note.Probability, 0, 1)
		check("velocity_deviation", note.VelocityDeviation, -127, 127)
		check("release_velocity", note.ReleaseVelocity, 0, 127)
		if note.Mute != 0 && note.Mute != 1 {
			bad = append(bad, fmt.Sprintf("mute %d must be 0 or 1", note.Mute))
		}
		if len(bad) > 0 {
			problems = append(problems, fmt.Sprintf("notes[%d]: %s", i, strings.Join(bad, "; ")))
		}
	}
	return problems
}

func asServiceError(message string, err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return internalError(message, err)
}
