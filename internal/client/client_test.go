package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"notelist/internal/types"
)

func newTestClient(url string) *Client {
	return NewWithEndpoint(url, 2*time.Second)
}

func TestSelectedClipDecodesLiveSet(t *testing.T) {
	var gotOp string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Errorf("expected request id header")
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotOp = req.OperationName
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"live_set":{"id":1,"view":{"selected_track":{"id":3,"name":"Track Name3"},"detail_clip":{"id":17,"name":"Clippy","length":4,"signature_numerator":4,"signature_denominator":4,"is_midi_clip":1,"is_arrangement_clip":0,"notes":[{"start_time":0,"pitch":60,"velocity":100,"duration":0.25,"probability":1,"velocity_deviation":0,"release_velocity":64,"mute":0,"note_id":99}]}}}}}`)
	}))
	defer server.Close()

	set, err := newTestClient(server.URL).SelectedClip(context.Background())
	if err != nil {
		t.Fatalf("SelectedClip: %v", err)
	}
	if gotOp != OpSelectedTrackDetailClip {
		t.Fatalf("unexpected operation: %q", gotOp)
	}
	if !set.Eligible() {
		t.Fatalf("expected eligible live set: %#v", set)
	}
	clip := set.View.DetailClip
	if clip.ID != 17 || len(clip.Notes) != 1 || clip.Notes[0].NoteID != 99 {
		t.Fatalf("unexpected clip: %#v", clip)
	}
}

func TestReplaceAllNotesSendsNotesWithoutIDs(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = io.WriteString(w, `{"data":{"clip_remove_notes_extended":{"id":17,"name":"Clippy","notes":[]},"clip_add_new_notes":{"id":17,"name":"Clippy","notes":[{"start_time":0,"pitch":60,"velocity":100,"duration":1,"probability":1,"velocity_deviation":0,"release_velocity":64,"mute":0,"note_id":102}]}}}`)
	}))
	defer server.Close()

	notes := []types.NoteInput{(types.Note{Pitch: 60, Velocity: 100, Duration: 1, Probability: 1, ReleaseVelocity: 64, NoteID: 99}).Input()}
	saved, err := newTestClient(server.URL).ReplaceAllNotes(context.Background(), 17, notes)
	if err != nil {
		t.Fatalf("ReplaceAllNotes: %v", err)
	}
	if len(saved) != 1 || saved[0].NoteID != 102 {
		t.Fatalf("unexpected saved notes: %#v", saved)
	}
	if body["operationName"] != OpReplaceAllNotes {
		t.Fatalf("unexpected operation: %v", body["operationName"])
	}
	query, _ := body["query"].(string)
	if !strings.Contains(query, "time_span: 1000000") || !strings.Contains(query, "pitch_span: 128") {
		t.Fatalf("unexpected query: %s", query)
	}
	vars := body["variables"].(map[string]any)
	if vars["id"] != float64(17) {
		t.Fatalf("unexpected id variable: %v", vars["id"])
	}
	dict := vars["notesDictionary"].(map[string]any)
	sent := dict["notes"].([]any)
	if len(sent) != 1 {
		t.Fatalf("unexpected notes variable: %v", dict)
	}
	if _, ok := sent[0].(map[string]any)["note_id"]; ok {
		t.Fatalf("note_id must not be sent: %v", sent[0])
	}
}

func TestReplaceAllNotesSendsEmptyArray(t *testing.T) {
	var raw string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		raw = string(data)
		_, _ = io.WriteString(w, `{"data":{"clip_add_new_notes":{"id":17,"name":"Clippy","notes":null}}}`)
	}))
	defer server.Close()

	saved, err := newTestClient(server.URL).ReplaceAllNotes(context.Background(), 17, nil)
	if err != nil {
		t.Fatalf("ReplaceAllNotes: %v", err)
	}
	if saved == nil || len(saved) != 0 {
		t.Fatalf("expected empty, non-nil result, got %#v", saved)
	}
	if !strings.Contains(raw, `"notes":[]`) {
		t.Fatalf("expected empty notes array in request, got %s", raw)
	}
}

func TestGraphQLErrorsAreSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"errors":[{"message":"pitch out of range"},{"message":"velocity out of range"}],"data":null}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ReplaceAllNotes(context.Background(), 17, nil)
	var gqlErr *GraphQLError
	if !errors.As(err, &gqlErr) {
		t.Fatalf("expected GraphQLError, got %T %v", err, err)
	}
	if len(gqlErr.Messages) != 2 || gqlErr.Error() != "pitch out of range" {
		t.Fatalf("unexpected error: %#v", gqlErr)
	}
	if IsUnavailable(err) {
		t.Fatalf("graphql errors are not availability failures")
	}
}

func TestGraphQLErrorsOnBadRequestStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"errors":[{"message":"Variable \"$id\" got invalid value"}]}`)
	}))
	defer server.Close()

	err := newTestClient(server.URL).FireClip(context.Background(), 17)
	var gqlErr *GraphQLError
	if !errors.As(err, &gqlErr) {
		t.Fatalf("expected GraphQLError, got %T %v", err, err)
	}
}

func TestNonGraphQLFailureIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error":"upstream down"}`)
	}))
	defer server.Close()

	err := newTestClient(server.URL).StartSong(context.Background(), 1)
	apiErr := asAPIError(err)
	if apiErr == nil || apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "upstream down" {
		t.Fatalf("unexpected error: %#v", err)
	}
	if !IsUnavailable(err) {
		t.Fatalf("expected 502 to count as unavailable")
	}
}

func TestUnreachableHostIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	err := newTestClient(url).StopSong(context.Background(), 1)
	if err == nil {
		t.Fatalf("expected error for closed server")
	}
	if !IsUnavailable(err) {
		t.Fatalf("expected connection failure to be unavailable, got %v", err)
	}
}

func TestMissingDataIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":null}`)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).SelectedClip(context.Background()); err == nil {
		t.Fatalf("expected error for null data")
	}
}
