// Package gormstore keeps the audit log in a results table of a SQL source.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/namescan/config"
	"github.com/poiesic/namescan/core"
	"github.com/poiesic/namescan/source"
	"github.com/poiesic/namescan/storage"
	"gorm.io/gorm"
)

// DefaultTable is the results table used when none is configured.
const DefaultTable = "identified_names"

var (
	// ErrDBRequired is returned when a gorm handle is not provided.
	ErrDBRequired = errors.New("database handle required")

	// ErrUnknownAuditSource is returned when the audit source is not configured.
	ErrUnknownAuditSource = errors.New("audit source not configured")
)

// auditRow mirrors the results table. Key, encrypt_key, source, name and
// probability are the columns downstream consumers read.
type auditRow struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Key           string    `gorm:"column:key;size:255;not null"`
	EncryptionKey string    `gorm:"column:encrypt_key;size:255;not null"`
	Source        string    `gorm:"column:source;size:512"`
	Name          string    `gorm:"column:name;size:1024"`
	Probability   float64   `gorm:"column:probability"`
	Action        string    `gorm:"column:action;size:16"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func rowFromEntry(e *core.AuditEntry) auditRow {
	return auditRow{
		Key:           e.Key,
		EncryptionKey: e.EncryptionKey,
		Source:        e.Source,
		Name:          e.Name,
		Probability:   e.Probability,
		Action:        string(e.Action),
		CreatedAt:     e.CreatedAt,
	}
}

func (r auditRow) entry() *core.AuditEntry {
	return &core.AuditEntry{
		ID:            core.ID(r.ID),
		Key:           r.Key,
		EncryptionKey: r.EncryptionKey,
		Source:        r.Source,
		Name:          r.Name,
		Probability:   r.Probability,
		Action:        core.Action(r.Action),
		CreatedAt:     r.CreatedAt,
	}
}

// AuditRepository implements storage.AuditRepository on a SQL table.
type AuditRepository struct {
	db    *gorm.DB
	table string
}

var _ storage.AuditRepository = (*AuditRepository)(nil)

// New creates the repository on db, creating or extending table as needed.
// Close closes db.
func New(db *gorm.DB, table string) (*AuditRepository, error) {
	if db == nil {
		return nil, ErrDBRequired
	}
	if table == "" {
		table = DefaultTable
	}
	if err := core.ValidateIdentifier(table); err != nil {
		return nil, err
	}

	if err := db.Table(table).AutoMigrate(&auditRow{}); err != nil {
		return nil, fmt.Errorf("migrating %s: %w", table, err)
	}

	return &AuditRepository{db: db, table: table}, nil
}

// Open connects to the source named by cfg.Audit.Source and returns its
// audit repository.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.AuditRepository, error) {
	src, ok := cfg.Source(cfg.Audit.Source)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAuditSource, cfg.Audit.Source)
	}

	db, _, err := source.OpenDB(ctx, src, cfg.Search.ConnectTimeout, logger)
	if err != nil {
		return nil, &core.ConnectionError{SourceID: src.ID, Err: err}
	}

	repo, err := New(db, cfg.Audit.Table)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, err
	}
	return repo, nil
}

// Append inserts entries in one transaction.
func (r *AuditRepository) Append(ctx context.Context, entries ...*core.AuditEntry) ([]*core.AuditEntry, error) {
	for _, entry := range entries {
		if err := storage.ValidateAuditEntry(entry); err != nil {
			return nil, err
		}
	}
	if len(entries) == 0 {
		return entries, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			if entry.CreatedAt.IsZero() {
				entry.CreatedAt = time.Now().UTC()
			}
			row := rowFromEntry(entry)
			if err := tx.Table(r.table).Create(&row).Error; err != nil {
				return err
			}
			entry.ID = core.ID(row.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// List returns rows ordered by id.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]*core.AuditEntry, error) {
	var rows []auditRow
	q := r.db.WithContext(ctx).Table(r.table)
	if limit > 0 {
		q = q.Order("id DESC").Limit(limit)
	} else {
		q = q.Order("id")
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	if limit > 0 {
		slices.Reverse(rows)
	}

	entries := make([]*core.AuditEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.entry()
	}
	return entries, nil
}

// Close closes the underlying connection.
func (r *AuditRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
