package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/minutes/core"
	"github.com/poiesic/minutes/storage"
)

// TranscriptRepository implements storage.TranscriptRepository for BadgerDB.
type TranscriptRepository struct {
	backend *Backend
}

var _ storage.TranscriptRepository = (*TranscriptRepository)(nil)

// NewTranscriptRepository creates a transcript repository on an open backend.
// The backend stays owned by the caller.
func NewTranscriptRepository(backend *Backend) (storage.TranscriptRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &TranscriptRepository{backend: backend}, nil
}

// Close is a no-op; the backend is closed by its owner.
func (r *TranscriptRepository) Close() error {
	return nil
}

// SaveTranscript stores the document and its meeting index entry.
func (r *TranscriptRepository) SaveTranscript(ctx context.Context, t *core.Transcript) error {
	if err := core.ValidateTranscript(t); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrInvalidRecord, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	value, err := storage.MarshalTranscript(t)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeTranscriptKey(t.ID)

		// Drop a stale meeting index entry when a transcript is re-attached.
		old, err := readTranscript(tx, key)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if old != nil && old.MeetingID != "" && old.MeetingID != t.MeetingID {
			if err := tx.Delete(makeTranscriptMeetingKey(old.MeetingID, old.ID)); err != nil {
				return err
			}
		}

		if err := tx.Set(key, value); err != nil {
			return err
		}
		if t.MeetingID != "" {
			if err := tx.Set(makeTranscriptMeetingKey(t.MeetingID, t.ID), nil); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetTranscript retrieves a transcript by id.
func (r *TranscriptRepository) GetTranscript(ctx context.Context, id string) (*core.Transcript, error) {
	var result *core.Transcript
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readTranscript(tx, makeTranscriptKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListTranscriptsByMeeting walks the meeting index and loads each document.
func (r *TranscriptRepository) ListTranscriptsByMeeting(ctx context.Context, meetingID string) ([]*core.Transcript, error) {
	var results []*core.Transcript

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makeTranscriptMeetingPrefix(meetingID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		var ids []string
		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			ids = append(ids, extractTranscriptID(iter.Item().KeyCopy(nil)))
		}

		for _, id := range ids {
			t, err := readTranscript(tx, makeTranscriptKey(id))
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			results = append(results, t)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b *core.Transcript) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return results, nil
}

func readTranscript(tx *badger.Txn, key []byte) (*core.Transcript, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var t *core.Transcript
	err = item.Value(func(val []byte) error {
		var err error
		t, err = storage.UnmarshalTranscript(val)
		return err
	})
	return t, err
}
