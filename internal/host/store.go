package host

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"notelist/internal/types"
)

var (
	bucketLiveSet = []byte("live_set")
	bucketClips   = []byte("clips")
	keyLiveSet    = []byte("state")
)

// LiveSetState is the persisted song-level state of the simulated host.
type LiveSetState struct {
	SongID          int           `json:"song_id"`
	Playing         bool          `json:"playing"`
	Tracks          []types.Track `json:"tracks"`
	SelectedTrackID int           `json:"selected_track_id"`
	DetailClipID    int           `json:"detail_clip_id"`
	NextNoteID      int           `json:"next_note_id"`
}

// ClipRecord is one stored clip. Notes live on the embedded clip.
type ClipRecord struct {
	Clip      types.Clip `json:"clip"`
	TrackID   int        `json:"track_id"`
	Playing   bool       `json:"playing"`
	FireCount int        `json:"fire_count"`
}

type Store struct {
	db *bolt.DB
}

func OpenStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("host db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketLiveSet); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketClips); err != nil {
			return err
		}
		if len(tx.Bucket(bucketLiveSet).Get(keyLiveSet)) > 0 {
			return nil
		}
		return seed(tx)
	})
}

// storeTx wraps one bbolt transaction with typed accessors.
type storeTx struct {
	tx *bolt.Tx
}

func (s *Store) view(ctx context.Context, fn func(*storeTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		return fn(&storeTx{tx: tx})
	})
}

func (s *Store) update(ctx context.Context, fn func(*storeTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&storeTx{tx: tx})
	})
}

func (t *storeTx) liveSet() (*LiveSetState, error) {
	raw := t.tx.Bucket(bucketLiveSet).Get(keyLiveSet)
	if len(raw) == 0 {
		return nil, errors.New("live set not initialized")
	}
	state := &LiveSetState{}
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (t *storeTx) putLiveSet(state *LiveSetState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return t.tx.Bucket(bucketLiveSet).Put(keyLiveSet, raw)
}

func (t *storeTx) clip(id int) (*ClipRecord, bool, error) {
	raw := t.tx.Bucket(bucketClips).Get(itob(id))
	if len(raw) == 0 {
		return nil, false, nil
	}
	record := &ClipRecord{}
	if err := json.Unmarshal(raw, record); err != nil {
		return nil, false, err
	}
	return record, true, nil
}

func (t *storeTx) putClip(record *ClipRecord) error {
	if record == nil {
		return errors.New("clip record is required")
	}
	sortNotes(record.Clip.Notes)
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return t.tx.Bucket(bucketClips).Put(itob(record.Clip.ID), raw)
}

func (t *storeTx) clips() ([]*ClipRecord, error) {
	var out []*ClipRecord
	err := t.tx.Bucket(bucketClips).ForEach(func(_, raw []byte) error {
		record := &ClipRecord{}
		if err := json.Unmarshal(raw, record); err != nil {
			return err
		}
		out = append(out, record)
		return nil
	})
	return out, err
}

func itob(id int) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	return buf[:]
}

func sortNotes(notes []types.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].StartTime != notes[j].StartTime {
			return notes[i].StartTime < notes[j].StartTime
		}
		return notes[i].Pitch < notes[j].Pitch
	})
}
