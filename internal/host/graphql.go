package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"notelist/internal/client"
	"notelist/internal/types"
)

const (
	requestIDHeader = "X-Request-Id"
	maxRequestBytes = 4 << 20
)

type operationKey struct{}

// operationRecorder lets the logging middleware see which GraphQL operation a
// request resolved to.
type operationRecorder struct {
	name string
}

func withOperationRecorder(ctx context.Context) (context.Context, *operationRecorder) {
	rec := &operationRecorder{}
	return context.WithValue(ctx, operationKey{}, rec), rec
}

func operationFromContext(ctx context.Context) string {
	rec, _ := ctx.Value(operationKey{}).(*operationRecorder)
	if rec == nil {
		return ""
	}
	return rec.name
}

type idVariables struct {
	ID *int `json:"id"`
}

type replaceVariables struct {
	ID              *int                   `json:"id"`
	NotesDictionary *types.NotesDictionary `json:"notesDictionary"`
}

// graphqlHandler dispatches on operationName. The query document itself is
// not parsed; each supported operation has a fixed selection.
type graphqlHandler struct {
	service *Service
}

func (h *graphqlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req client.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeGraphQLErrors(w, http.StatusBadRequest, "decode request: "+err.Error())
		return
	}
	if rec, _ := r.Context().Value(operationKey{}).(*operationRecorder); rec != nil {
		rec.name = req.OperationName
	}
	data, err := h.execute(r.Context(), req)
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			status := http.StatusOK
			if svcErr.Kind == ServiceErrorInternal {
				status = http.StatusInternalServerError
			}
			writeGraphQLErrors(w, status, svcErr.Messages()...)
			return
		}
		writeGraphQLErrors(w, http.StatusBadRequest, err.Error())
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		writeGraphQLErrors(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, client.Response{Data: raw})
}

func (h *graphqlHandler) execute(ctx context.Context, req client.Request) (any, error) {
	vars, err := json.Marshal(req.Variables)
	if err != nil {
		return nil, err
	}
	switch req.OperationName {
	case client.OpSelectedTrackDetailClip:
		set, err := h.service.SelectedClip(ctx)
		if err != nil {
			return nil, err
		}
		return client.SelectedClipData{LiveSet: set}, nil
	case client.OpReplaceAllNotes:
		var in replaceVariables
		if err := json.Unmarshal(vars, &in); err != nil {
			return nil, fmt.Errorf("variables: %w", err)
		}
		if in.ID == nil || in.NotesDictionary == nil {
			return nil, errors.New("variables id and notesDictionary are required")
		}
		result, err := h.service.ReplaceAllNotes(ctx, *in.ID, FullRange, in.NotesDictionary.Notes)
		if err != nil {
			return nil, err
		}
		return client.ReplaceAllNotesData{
			Removed: clipNotes(result.Removed),
			Added:   clipNotes(result.Added),
		}, nil
	case client.OpFireClip, client.OpStartSong, client.OpStopSong:
		var in idVariables
		if err := json.Unmarshal(vars, &in); err != nil {
			return nil, fmt.Errorf("variables: %w", err)
		}
		if in.ID == nil {
			return nil, errors.New("variable id is required")
		}
		ref := &client.IDRef{ID: *in.ID}
		switch req.OperationName {
		case client.OpFireClip:
			if err := h.service.FireClip(ctx, *in.ID); err != nil {
				return nil, err
			}
			return client.FireClipData{Clip: ref}, nil
		case client.OpStartSong:
			if err := h.service.StartSong(ctx, *in.ID); err != nil {
				return nil, err
			}
			return client.StartSongData{Song: ref}, nil
		default:
			if err := h.service.StopSong(ctx, *in.ID); err != nil {
				return nil, err
			}
			return client.StopSongData{Song: ref}, nil
		}
	case "":
		return nil, errors.New("operationName is required")
	default:
		return nil, fmt.Errorf("unsupported operation %q", req.OperationName)
	}
}

func clipNotes(clip types.Clip) *client.ClipNotes {
	notes := clip.Notes
	if notes == nil {
		notes = []types.Note{}
	}
	return &client.ClipNotes{ID: clip.ID, Name: clip.Name, Notes: notes}
}

func writeGraphQLErrors(w http.ResponseWriter, status int, messages ...string) {
	entries := make([]client.ErrorEntry, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, client.ErrorEntry{Message: msg})
	}
	writeJSON(w, status, client.Response{Data: json.RawMessage("null"), Errors: entries})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
