package badger

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/namescan/core"
	"github.com/poiesic/namescan/storage"
)

// AuditRepository implements storage.AuditRepository for BadgerDB.
type AuditRepository struct {
	backend     *Backend
	idSeq       *badger.Sequence
	ownsBackend bool
}

var _ storage.AuditRepository = (*AuditRepository)(nil)

// NewAuditRepository creates an AuditRepository on an open backend.
// Closing the repository leaves the backend open.
func NewAuditRepository(backend *Backend) (*AuditRepository, error) {
	idSeq, err := backend.GetSequence(auditIDSeq)
	if err != nil {
		return nil, err
	}

	return &AuditRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Open opens the BadgerDB directory at path and returns an audit repository
// that closes it on Close.
func Open(path string, logger *slog.Logger) (storage.AuditRepository, error) {
	backend, err := OpenBackend(path, false, logger)
	if err != nil {
		return nil, err
	}

	repo, err := NewAuditRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	repo.ownsBackend = true
	return repo, nil
}

// Close releases the ID sequence, and the backend if the repository owns it.
func (r *AuditRepository) Close() error {
	err := r.idSeq.Release()
	if r.ownsBackend {
		if cerr := r.backend.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Append stores entries in order within one transaction.
func (r *AuditRepository) Append(ctx context.Context, entries ...*core.AuditEntry) ([]*core.AuditEntry, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	for _, entry := range entries {
		if err := storage.ValidateAuditEntry(entry); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			entry.ID = core.ID(nextID)
			if entry.CreatedAt.IsZero() {
				entry.CreatedAt = time.Now().UTC()
			}

			value, err := storage.MarshalAuditEntry(entry)
			if err != nil {
				return err
			}
			if err := tx.Set(makeAuditKey(entry.ID), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// List returns entries oldest first.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]*core.AuditEntry, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	entries := []*core.AuditEntry{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(auditEntryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.AuditEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalAuditEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
