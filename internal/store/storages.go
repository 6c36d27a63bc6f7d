package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-list-sync/internal/config"
	"github.com/MKhiriev/go-list-sync/internal/logger"
)

// Storages groups every repository the service layer needs.
type Storages struct {
	Groups      GroupRepository
	Cycles      CycleRepository
	Credentials CredentialRepository

	// Backend names the selected engine: "postgres", "sqlite" or "memory".
	Backend string

	db *DB
}

// NewStorages selects the storage backend from cfg.DB.DSN:
//   - postgres:// or postgresql:// opens PostgreSQL;
//   - any other non-empty value is a SQLite file path;
//   - an empty DSN keeps everything in memory.
//
// SQL backends are migrated before the repositories are returned.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	log.Info().Msg("creating new storages...")

	dsn := cfg.DB.DSN
	if dsn == "" {
		log.Warn().Msg("no database configured, state is kept in memory only")
		return NewMemoryStorages(), nil
	}

	var (
		db      *DB
		err     error
		backend string
	)
	if IsPostgresDSN(dsn) {
		backend = "postgres"
		db, err = NewConnectPostgres(ctx, cfg.DB, log)
	} else {
		backend = "sqlite"
		db, err = NewConnectSQLite(ctx, cfg.DB, log)
	}
	if err != nil {
		return nil, fmt.Errorf("%s connection error: %w", backend, err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	s := NewSQLStorages(db, log)
	s.Backend = backend
	return s, nil
}

// NewSQLStorages wires the SQL repositories to an open connection.
func NewSQLStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		Groups:      NewGroupRepository(db, log),
		Cycles:      NewCycleRepository(db, log),
		Credentials: NewCredentialRepository(db, log),
		Backend:     db.Dialect(),
		db:          db,
	}
}

// NewMemoryStorages wires every repository to one [MemoryStore].
func NewMemoryStorages() *Storages {
	mem := NewMemoryStore()
	return &Storages{
		Groups:      mem,
		Cycles:      mem,
		Credentials: mem,
		Backend:     "memory",
	}
}

// IsPostgresDSN reports whether dsn addresses a PostgreSQL server.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Close releases the database connection, if any.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
