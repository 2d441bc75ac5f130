package client

const noteFields = `
      start_time
      pitch
      velocity
      duration
      probability
      velocity_deviation
      release_velocity
      mute
      note_id`

const (
	OpSelectedTrackDetailClip = "SelectedTrackDetailClip"
	OpReplaceAllNotes         = "ReplaceAllNotes"
	OpFireClip                = "FireClip"
	OpStartSong               = "StartSong"
	OpStopSong                = "StopSong"
)

const selectedTrackDetailClipQuery = `query SelectedTrackDetailClip {
  live_set {
    id
    view {
      selected_track {
        id
        name
      }
      detail_clip {
        id
        name
        start_time
        end_time
        length
        signature_numerator
        signature_denominator
        is_midi_clip
        is_arrangement_clip
        notes {` + noteFields + `
        }
      }
    }
  }
}`

// Range cleared by ReplaceAllNotes before the new notes are added.
const (
	RemoveFromPitch = 0
	RemovePitchSpan = 128
	RemoveFromTime  = 0
	RemoveTimeSpan  = 1000000
)

const replaceAllNotesMutation = `mutation ReplaceAllNotes($id: Int!, $notesDictionary: NotesDictionaryInput!) {
  clip_remove_notes_extended(
    id: $id
    from_pitch: 0
    pitch_span: 128
    from_time: 0
    time_span: 1000000
  ) {
    id
    name
    notes {` + noteFields + `
    }
  }
  clip_add_new_notes(id: $id, notes_dictionary: $notesDictionary) {
    id
    name
    notes {` + noteFields + `
    }
  }
}`

const fireClipMutation = `mutation FireClip($id: Int!) {
  clip_fire(id: $id) {
    id
  }
}`

const startSongMutation = `mutation StartSong($id: Int!) {
  song_start_playing(id: $id) {
    id
  }
}`

const stopSongMutation = `mutation StopSong($id: Int!) {
  song_stop_playing(id: $id) {
    id
  }
}`
