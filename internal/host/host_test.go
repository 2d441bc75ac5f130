package host

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"notelist/internal/client"
	"notelist/internal/logging"
	"notelist/internal/types"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "host.db")
	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func newTestHost(t *testing.T) (*Service, *client.Client) {
	t.Helper()
	store, _ := openTestStore(t)
	service := NewService(store, nil)
	server := httptest.NewServer(NewServer("", "test", service, nil).Handler())
	t.Cleanup(server.Close)
	return service, client.NewWithEndpoint(server.URL+"/graphql", 2*time.Second)
}

func TestSeededLiveSet(t *testing.T) {
	_, c := newTestHost(t)
	set, err := c.SelectedClip(context.Background())
	if err != nil {
		t.Fatalf("SelectedClip: %v", err)
	}
	clipCtx, ok := set.Context()
	if !ok {
		t.Fatalf("expected eligible seed: %#v", set)
	}
	if clipCtx.ClipID != SeedMidiClipID || clipCtx.SongID != SeedSongID || clipCtx.TrackName != "Track Name3" {
		t.Fatalf("unexpected context: %#v", clipCtx)
	}
	if got := clipCtx.Title(); got != "Clippy on Track Name3 track" {
		t.Fatalf("unexpected title: %q", got)
	}
	notes := set.View.DetailClip.Notes
	if len(notes) != 3 {
		t.Fatalf("expected 3 seed notes, got %d", len(notes))
	}
	for i, want := range []int{99, 100, 101} {
		if notes[i].NoteID != want {
			t.Fatalf("note %d: expected id %d, got %d", i, want, notes[i].NoteID)
		}
	}
}

func TestReplaceAllNotesAssignsFreshIDsAndSorts(t *testing.T) {
	_, c := newTestHost(t)
	input := []types.NoteInput{
		{StartTime: 2, Pitch: 50, Velocity: 90, Duration: 1, Probability: 1},
		{StartTime: 0.5, Pitch: 72, Velocity: 80, Duration: 0.5, Probability: 0.5},
	}
	saved, err := c.ReplaceAllNotes(context.Background(), SeedMidiClipID, input)
	if err != nil {
		t.Fatalf("ReplaceAllNotes: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 notes, got %#v", saved)
	}
	if saved[0].StartTime != 0.5 || saved[1].StartTime != 2 {
		t.Fatalf("expected sorted notes, got %#v", saved)
	}
	if saved[0].NoteID != 103 || saved[1].NoteID != 102 {
		t.Fatalf("expected ids assigned in request order, got %d and %d", saved[0].NoteID, saved[1].NoteID)
	}

	set, err := c.SelectedClip(context.Background())
	if err != nil {
		t.Fatalf("SelectedClip: %v", err)
	}
	if got := len(set.View.DetailClip.Notes); got != 2 {
		t.Fatalf("expected stored notes replaced, got %d", got)
	}
}

func TestReplaceAllNotesWithEmptyListClearsClip(t *testing.T) {
	_, c := newTestHost(t)
	saved, err := c.ReplaceAllNotes(context.Background(), SeedMidiClipID, nil)
	if err != nil {
		t.Fatalf("ReplaceAllNotes: %v", err)
	}
	if saved == nil || len(saved) != 0 {
		t.Fatalf("expected empty non-nil notes, got %#v", saved)
	}
}

func TestReplaceAllNotesRejectsInvalidNotes(t *testing.T) {
	_, c := newTestHost(t)
	input := []types.NoteInput{
		{StartTime: 0, Pitch: 60, Velocity: 100, Duration: 1, Probability: 1},
		{StartTime: 0, Pitch: 130, Velocity: 100, Duration: 1, Probability: 1},
		{StartTime: -1, Pitch: 60, Velocity: 100, Duration: 1, Probability: 2},
	}
	_, err := c.ReplaceAllNotes(context.Background(), SeedMidiClipID, input)
	var gqlErr *client.GraphQLError
	if !errors.As(err, &gqlErr) {
		t.Fatalf("expected GraphQLError, got %v", err)
	}
	if len(gqlErr.Messages) != 2 {
		t.Fatalf("expected one message per invalid note, got %#v", gqlErr.Messages)
	}
	if !strings.HasPrefix(gqlErr.Messages[0], "notes[1]:") || !strings.Contains(gqlErr.Messages[1], "probability") {
		t.Fatalf("unexpected messages: %#v", gqlErr.Messages)
	}

	set, err := c.SelectedClip(context.Background())
	if err != nil {
		t.Fatalf("SelectedClip: %v", err)
	}
	if got := len(set.View.DetailClip.Notes); got != 3 {
		t.Fatalf("expected stored notes untouched, got %d", got)
	}
}

func TestReplaceAllNotesUnknownClip(t *testing.T) {
	_, c := newTestHost(t)
	_, err := c.ReplaceAllNotes(context.Background(), 999, nil)
	var gqlErr *client.GraphQLError
	if !errors.As(err, &gqlErr) || gqlErr.FirstMessage() != "no clip with id 999" {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestReplaceRangeKeepsNotesOutside(t *testing.T) {
	store, _ := openTestStore(t)
	service := NewService(store, nil)
	rng := RemoveRange{FromPitch: 60, PitchSpan: 5, FromTime: 0, TimeSpan: 4}
	result, err := service.ReplaceAllNotes(context.Background(), SeedMidiClipID, rng, nil)
	if err != nil {
		t.Fatalf("ReplaceAllNotes: %v", err)
	}
	if len(result.Added.Notes) != 1 || result.Added.Notes[0].Pitch != 67 {
		t.Fatalf("expected only pitch 67 to survive, got %#v", result.Added.Notes)
	}
}

func TestTransportCommands(t *testing.T) {
	service, c := newTestHost(t)
	ctx := context.Background()
	if err := c.FireClip(ctx, SeedMidiClipID); err != nil {
		t.Fatalf("FireClip: %v", err)
	}
	playing, fired, err := service.Transport(ctx, SeedMidiClipID)
	if err != nil {
		t.Fatalf("Transport: %v", err)
	}
	if !playing || fired != 1 {
		t.Fatalf("expected playing with one fire, got playing=%v fired=%d", playing, fired)
	}
	if err := c.StopSong(ctx, SeedSongID); err != nil {
		t.Fatalf("StopSong: %v", err)
	}
	if playing, _, _ = service.Transport(ctx, SeedMidiClipID); playing {
		t.Fatalf("expected stopped song")
	}
	if err := c.StartSong(ctx, SeedSongID); err != nil {
		t.Fatalf("StartSong: %v", err)
	}
	if playing, _, _ = service.Transport(ctx, SeedMidiClipID); !playing {
		t.Fatalf("expected playing song")
	}
	if err := c.StartSong(ctx, 42); err == nil {
		t.Fatalf("expected unknown song error")
	}
	if err := c.FireClip(ctx, 999); err == nil {
		t.Fatalf("expected unknown clip error")
	}
}

func TestSelectingAudioClipIsIneligible(t *testing.T) {
	service, c := newTestHost(t)
	if err := service.SelectDetailClip(context.Background(), SeedAudioClipID); err != nil {
		t.Fatalf("SelectDetailClip: %v", err)
	}
	set, err := c.SelectedClip(context.Background())
	if err != nil {
		t.Fatalf("SelectedClip: %v", err)
	}
	if set.Eligible() {
		t.Fatalf("expected audio clip to be ineligible")
	}
	if _, err := c.ReplaceAllNotes(context.Background(), SeedAudioClipID, nil); err == nil {
		t.Fatalf("expected replace on audio clip to fail")
	}

	if err := service.SelectDetailClip(context.Background(), 0); err != nil {
		t.Fatalf("SelectDetailClip(0): %v", err)
	}
	set, err = c.SelectedClip(context.Background())
	if err != nil {
		t.Fatalf("SelectedClip: %v", err)
	}
	if set.View.DetailClip != nil {
		t.Fatalf("expected no detail clip")
	}
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	store, path := openTestStore(t)
	service := NewService(store, nil)
	input := []types.NoteInput{{StartTime: 1, Pitch: 40, Velocity: 64, Duration: 1, Probability: 1}}
	if _, err := service.ReplaceAllNotes(context.Background(), SeedMidiClipID, FullRange, input); err != nil {
		t.Fatalf("ReplaceAllNotes: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	set, err := NewService(reopened, nil).SelectedClip(context.Background())
	if err != nil {
		t.Fatalf("SelectedClip: %v", err)
	}
	notes := set.View.DetailClip.Notes
	if len(notes) != 1 || notes[0].Pitch != 40 || notes[0].NoteID != 102 {
		t.Fatalf("expected persisted replacement, got %#v", notes)
	}
}

func TestUnsupportedOperation(t *testing.T) {
	store, _ := openTestStore(t)
	handler := NewServer("", "test", NewService(store, nil), nil).Handler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"operationName":"DeleteSong","query":"mutation DeleteSong { x }"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `unsupported operation \"DeleteSong\"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHealthAndRequestID(t *testing.T) {
	store, _ := openTestStore(t)
	var logs bytes.Buffer
	handler := NewServer("", "v1.2.3", NewService(store, nil), logging.New(&logs, logging.Debug)).Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Request-Id"); got != "req-1" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), `"version":"v1.2.3"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "request_id=req-1") || !strings.Contains(logs.String(), "path=/health") {
		t.Fatalf("expected request log line, got %q", logs.String())
	}
}

func TestRequestLogIncludesOperation(t *testing.T) {
	store, _ := openTestStore(t)
	var logs bytes.Buffer
	handler := NewServer("", "test", NewService(store, nil), logging.New(&logs, logging.Info)).Handler()
	body := `{"operationName":"SelectedTrackDetailClip","query":"query SelectedTrackDetailClip { live_set { id } }"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(logs.String(), "operation=SelectedTrackDetailClip") {
		t.Fatalf("expected operation in log, got %q", logs.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	store, _ := openTestStore(t)
	handler := NewServer("", "test", NewService(store, nil), nil).Handler()
	req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}

func TestAdminSelect(t *testing.T) {
	store, _ := openTestStore(t)
	handler := NewServer("", "test", NewService(store, nil), nil).Handler()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/select", strings.NewReader(`{"clip_id":404}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/select", strings.NewReader(`{"clip_id":18}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	store, _ := openTestStore(t)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	server := NewServer("", "test", NewService(store, nil), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, listener) }()

	c := client.NewWithEndpoint("http://"+listener.Addr().String()+"/", 2*time.Second)
	if _, err := c.SelectedClip(context.Background()); err != nil {
		t.Fatalf("SelectedClip: %v", err)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}
