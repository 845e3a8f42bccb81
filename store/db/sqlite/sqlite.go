package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/dentkao/dentkao/internal/profile"
	"github.com/dentkao/dentkao/store"
)

// ============================================================================
// SQLITE SUPPORT (Default - Full Support)
// ============================================================================
// SQLite is the PRIMARY database for personal use.
//
// The whole study state lives in a single file next to the question data,
// which makes backup a plain file copy. The modernc.org/sqlite driver is
// pure Go, so the binary stays cgo-free and cross-compiles cleanly.
//
// When adding new features, SQLite is the reference implementation.
// ============================================================================

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a SQLite database using the DSN from the profile.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// Connection settings:
	// - busy_timeout(10000): wait up to 10s instead of failing on a locked db.
	// - journal_mode(WAL): readers never block the writer.
	//
	// With the modernc.org/sqlite driver each pragma must be passed as a
	// `_pragma=` query parameter, see https://pkg.go.dev/modernc.org/sqlite.
	sqliteDB, err := sql.Open("sqlite", profile.DSN+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	var driver store.Driver = &DB{
		db:      sqliteDB,
		profile: profile,
	}
	return driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) IsInitialized(ctx context.Context) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'study_state')").Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "failed to check if database is initialized")
	}
	return exists, nil
}
