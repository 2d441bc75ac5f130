package host

import (
	bolt "go.etcd.io/bbolt"

	"notelist/internal/types"
)

// Seed identifiers for the fixture live set.
const (
	SeedSongID      = 1
	SeedTrackID     = 3
	SeedMidiClipID  = 17
	SeedAudioClipID = 18
)

func seedNote(id int, start float64, pitch int) types.Note {
	return types.Note{
		StartTime:       start,
		Pitch:           pitch,
		Velocity:        100,
		Duration:        0.25,
		Probability:     1,
		ReleaseVelocity: 64,
		NoteID:          id,
	}
}

func seed(tx *bolt.Tx) error {
	t := &storeTx{tx: tx}
	clips := []*ClipRecord{
		{
			TrackID: SeedTrackID,
			Clip: types.Clip{
				ID:                   SeedMidiClipID,
				Name:                 "Clippy",
				StartTime:            0,
				EndTime:              4,
				Length:               4,
				SignatureNumerator:   4,
				SignatureDenominator: 4,
				IsMidiClip:           true,
				Notes: []types.Note{
					seedNote(99, 0, 60),
					seedNote(100, 1, 64),
					seedNote(101, 1.5, 67),
				},
			},
		},
		{
			TrackID: SeedTrackID,
			Clip: types.Clip{
				ID:                   SeedAudioClipID,
				Name:                 "Breakbeat",
				EndTime:              8,
				Length:               8,
				SignatureNumerator:   4,
				SignatureDenominator: 4,
				Notes:                []types.Note{},
			},
		},
	}
	for _, record := range clips {
		if err := t.putClip(record); err != nil {
			return err
		}
	}
	return t.putLiveSet(&LiveSetState{
		SongID:          SeedSongID,
		Tracks:          []types.Track{{ID: SeedTrackID, Name: "Track Name3"}},
		SelectedTrackID: SeedTrackID,
		DetailClipID:    SeedMidiClipID,
		NextNoteID:      102,
	})
}
