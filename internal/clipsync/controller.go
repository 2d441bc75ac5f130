package clipsync

import (
	"context"
	"sync"

	"notelist/internal/logging"
	"notelist/internal/notes"
	"notelist/internal/types"
)

// Remote is the host surface the controller needs. *client.Client satisfies
// it.
type Remote interface {
	SelectedClip(ctx context.Context) (*types.LiveSet, error)
	ReplaceAllNotes(ctx context.Context, clipID int, notes []types.NoteInput) ([]types.Note, error)
	FireClip(ctx context.Context, clipID int) error
	StartSong(ctx context.Context, songID int) error
	StopSong(ctx context.Context, songID int) error
}

// Controller keeps a note collection in step with the clip selected in the
// host. Fetch loads the clip; Save replaces the clip's notes wholesale.
//
// Every fetch, save and detach is stamped with a generation. A response whose
// generation has been superseded by a later Fetch or Detach is dropped.
type Controller struct {
	remote Remote
	notes  *notes.Collection
	logger logging.Logger

	mu             sync.Mutex
	clip           *types.ClipContext
	generation     uint64
	saving         bool
	syncedRevision uint64
}

func NewController(remote Remote, coll *notes.Collection, logger logging.Logger) *Controller {
	if coll == nil {
		coll = notes.NewCollection(nil)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Controller{
		remote:         remote,
		notes:          coll,
		logger:         logger.With(logging.F("component", "clipsync")),
		syncedRevision: coll.Revision(),
	}
}

func (c *Controller) Notes() *notes.Collection {
	return c.notes
}

// Clip returns the context of the last successful fetch.
func (c *Controller) Clip() (types.ClipContext, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clip == nil {
		return types.ClipContext{}, false
	}
	return *c.clip, true
}

func (c *Controller) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

// Dirty reports whether the collection changed since the last fetch or save.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clip != nil && c.notes.Revision() != c.syncedRevision
}

// Fetch loads the selected clip. An ineligible selection clears the
// collection; a transport failure leaves it untouched.
func (c *Controller) Fetch(ctx context.Context) (types.ClipContext, error) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	set, err := c.remote.SelectedClip(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("fetch_discarded", logging.F("generation", gen))
		return types.ClipContext{}, staleError("fetch clip")
	}
	if err != nil {
		c.logger.Warn("fetch_failed", logging.Err(err))
		return types.ClipContext{}, transportError("fetch clip", err)
	}
	// Applying a result supersedes any save that started before it.
	c.generation++
	clipCtx, ok := set.Context()
	if !ok {
		c.clip = nil
		c.notes.ReplaceAll(nil)
		c.syncedRevision = c.notes.Revision()
		c.logger.Info("fetch_ineligible")
		return types.ClipContext{}, ineligibleError("detail clip missing or not midi")
	}
	c.notes.ReplaceAll(set.View.DetailClip.Notes)
	c.clip = &clipCtx
	c.syncedRevision = c.notes.Revision()
	c.logger.Info("fetch_ok",
		logging.F("clip_id", clipCtx.ClipID),
		logging.F("notes", c.notes.Len()),
	)
	return clipCtx, nil
}

// Save sends the whole collection to the host in one replace request. On
// success the collection is replaced by the host's stored notes; on failure
// it is left as it was.
func (c *Controller) Save(ctx context.Context) ([]types.Note, error) {
	c.mu.Lock()
	if c.clip == nil {
		c.mu.Unlock()
		return nil, ineligibleError("save without a fetched clip")
	}
	if c.saving {
		c.mu.Unlock()
		return nil, busyError()
	}
	c.saving = true
	gen := c.generation
	clipID := c.clip.ClipID
	payload := types.NoteInputs(c.notes.Notes())
	c.mu.Unlock()

	saved, err := c.remote.ReplaceAllNotes(ctx, clipID, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.saving = false
	if gen != c.generation || c.clip == nil || c.clip.ClipID != clipID {
		c.logger.Debug("save_discarded", logging.F("clip_id", clipID))
		return nil, staleError("save notes")
	}
	if err != nil {
		c.logger.Warn("save_failed", logging.F("clip_id", clipID), logging.Err(err))
		return nil, transportError("save notes", err)
	}
	c.notes.ReplaceAll(saved)
	c.syncedRevision = c.notes.Revision()
	c.logger.Info("save_ok",
		logging.F("clip_id", clipID),
		logging.F("sent", len(payload)),
		logging.F("stored", len(saved)),
	)
	return c.notes.Notes(), nil
}

// Detach forgets the current clip, clears the collection and invalidates
// any response still in flight.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.clip = nil
	c.notes.ReplaceAll(nil)
	c.syncedRevision = c.notes.Revision()
}

func (c *Controller) Fire(ctx context.Context) error {
	clip, ok := c.Clip()
	if !ok {
		return ineligibleError("fire without a fetched clip")
	}
	if err := c.remote.FireClip(ctx, clip.ClipID); err != nil {
		c.logger.Warn("fire_failed", logging.F("clip_id", clip.ClipID), logging.Err(err))
		return transportError("fire clip", err)
	}
	return nil
}

func (c *Controller) Start(ctx context.Context) error {
	clip, ok := c.Clip()
	if !ok {
		return ineligibleError("start without a fetched clip")
	}
	if err := c.remote.StartSong(ctx, clip.SongID); err != nil {
		c.logger.Warn("start_failed", logging.F("song_id", clip.SongID), logging.Err(err))
		return transportError("start song", err)
	}
	return nil
}

func (c *Controller) Stop(ctx context.Context) error {
	clip, ok := c.Clip()
	if !ok {
		return ineligibleError("stop without a fetched clip")
	}
	if err := c.remote.StopSong(ctx, clip.SongID); err != nil {
		c.logger.Warn("stop_failed", logging.F("song_id", clip.SongID), logging.Err(err))
		return transportError("stop song", err)
	}
	return nil
}
