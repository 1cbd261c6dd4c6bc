// Package storage persists normalized financial records and finished
// analysis reports in PostgreSQL. It stores what callers hand it; fetching
// and normalizing statements from vendors happens upstream.
package storage

import (
	"context"
	_ "embed"
	"errors"

	"github.com/wonny/fundalyze/pkg/database"
	"github.com/wonny/fundalyze/pkg/logger"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("storage: not found")

//go:embed schema.sql
var schemaSQL string

// Store bundles the repositories over one connection pool
type Store struct {
	Records *RecordRepository
	Reports *ReportRepository

	db *database.DB
}

func NewStore(db *database.DB, log *logger.Logger) *Store {
	return &Store{
		Records: NewRecordRepository(db, log),
		Reports: NewReportRepository(db, log),
		db:      db,
	}
}

// EnsureSchema creates the tables if they do not exist yet
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Pool.Exec(ctx, schemaSQL)
	return err
}
