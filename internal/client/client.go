package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"notelist/internal/config"
	"notelist/internal/logging"
	"notelist/internal/types"
)

const defaultEndpoint = "http://127.0.0.1:4000/"

// Client talks to the host's GraphQL endpoint. It is safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
	logger   logging.Logger
}

func New(cfg config.Config, logger logging.Logger) *Client {
	c := NewWithEndpoint(cfg.RemoteURL(), cfg.RemoteTimeout())
	if logger != nil {
		c.logger = logger
	}
	return c
}

func NewWithEndpoint(endpoint string, timeout time.Duration) *Client {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: timeout,
		},
		logger: logging.Nop(),
	}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// SelectedClip returns the live set with the currently selected track and
// detail clip. Eligibility is left to the caller.
func (c *Client) SelectedClip(ctx context.Context) (*types.LiveSet, error) {
	var data SelectedClipData
	if err := c.do(ctx, OpSelectedTrackDetailClip, selectedTrackDetailClipQuery, nil, &data); err != nil {
		return nil, err
	}
	if data.LiveSet == nil {
		return nil, fmt.Errorf("%s: response has no live_set", OpSelectedTrackDetailClip)
	}
	return data.LiveSet, nil
}

// ReplaceAllNotes clears the clip and adds notes in one mutation. It returns
// the clip's notes as stored by the host.
func (c *Client) ReplaceAllNotes(ctx context.Context, clipID int, notes []types.NoteInput) ([]types.Note, error) {
	if notes == nil {
		notes = []types.NoteInput{}
	}
	vars := map[string]any{
		"id":              clipID,
		"notesDictionary": types.NotesDictionary{Notes: notes},
	}
	var data ReplaceAllNotesData
	if err := c.do(ctx, OpReplaceAllNotes, replaceAllNotesMutation, vars, &data); err != nil {
		return nil, err
	}
	if data.Added == nil {
		return nil, fmt.Errorf("%s: response has no clip_add_new_notes", OpReplaceAllNotes)
	}
	if data.Added.Notes == nil {
		return []types.Note{}, nil
	}
	return data.Added.Notes, nil
}

func (c *Client) FireClip(ctx context.Context, clipID int) error {
	var data FireClipData
	return c.do(ctx, OpFireClip, fireClipMutation, map[string]any{"id": clipID}, &data)
}

func (c *Client) StartSong(ctx context.Context, songID int) error {
	var data StartSongData
	return c.do(ctx, OpStartSong, startSongMutation, map[string]any{"id": songID}, &data)
}

func (c *Client) StopSong(ctx context.Context, songID int) error {
	var data StopSongData
	return c.do(ctx, OpStopSong, stopSongMutation, map[string]any{"id": songID}, &data)
}

func (c *Client) do(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	buf, err := json.Marshal(Request{OperationName: operation, Query: query, Variables: variables})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	reqID := logging.NewRequestID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)

	httpClient := c.http
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := c.logger
	if logger == nil {
		logger = logging.Nop()
	}
	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		logger.Warn("graphql_request_failed",
			logging.F("operation", operation),
			logging.F("request_id", reqID),
			logging.Err(err),
		)
		return err
	}
	defer resp.Body.Close()
	logger.Debug("graphql_request",
		logging.F("operation", operation),
		logging.F("request_id", reqID),
		logging.F("status", resp.StatusCode),
		logging.F("latency_ms", time.Since(start).Milliseconds()),
	)
	return decodeResponse(resp, operation, out)
}

func decodeResponse(resp *http.Response, operation string, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var payload Response
	decodeErr := json.Unmarshal(body, &payload)
	if decodeErr == nil && len(payload.Errors) > 0 {
		return newGraphQLError(operation, payload.Errors)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp, body)
	}
	if decodeErr != nil {
		return fmt.Errorf("%s: decode response: %w", operation, decodeErr)
	}
	if out == nil || len(payload.Data) == 0 || string(payload.Data) == "null" {
		if out != nil {
			return fmt.Errorf("%s: response has no data", operation)
		}
		return nil
	}
	return json.Unmarshal(payload.Data, out)
}

func decodeAPIError(resp *http.Response, body []byte) error {
	type errorPayload struct {
		Error string `json:"error"`
	}
	var payload errorPayload
	_ = json.Unmarshal(body, &payload)
	if payload.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
}

// IsUnavailable reports whether err means the host could not be reached or
// answered with a server error.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if apiErr := asAPIError(err); apiErr != nil {
		return apiErr.StatusCode >= 500
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return !errors.Is(err, context.Canceled)
	}
	return false
}
