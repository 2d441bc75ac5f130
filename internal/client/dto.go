package client

import (
	"encoding/json"

	"notelist/internal/types"
)

// Request is the body of a GraphQL-over-HTTP POST.
type Request struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []ErrorEntry    `json:"errors,omitempty"`
}

type ErrorEntry struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

type SelectedClipData struct {
	LiveSet *types.LiveSet `json:"live_set"`
}

type ClipNotes struct {
	ID    int          `json:"id"`
	Name  string       `json:"name"`
	Notes []types.Note `json:"notes"`
}

type ReplaceAllNotesData struct {
	Removed *ClipNotes `json:"clip_remove_notes_extended"`
	Added   *ClipNotes `json:"clip_add_new_notes"`
}

type IDRef struct {
	ID int `json:"id"`
}

type FireClipData struct {
	Clip *IDRef `json:"clip_fire"`
}

type StartSongData struct {
	Song *IDRef `json:"song_start_playing"`
}

type StopSongData struct {
	Song *IDRef `json:"song_stop_playing"`
}
