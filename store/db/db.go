package db

import (
	"github.com/pkg/errors"

	"github.com/dentkao/dentkao/internal/profile"
	"github.com/dentkao/dentkao/store"
	"github.com/dentkao/dentkao/store/db/postgres"
	"github.com/dentkao/dentkao/store/db/sqlite"
)

// ============================================================================
// DATABASE SUPPORT POLICY
// ============================================================================
// This project supports only SQLite and PostgreSQL databases.
//
// SQLite: Default for personal/desktop use. Zero setup, single file, pure Go.
// PostgreSQL: For shared or server deployments.
// MySQL: NOT SUPPORTED.
//
// When adding new features:
// - Implement fully for SQLite (the reference implementation)
// - Implement for PostgreSQL in the same change
// - Do NOT add MySQL support under any circumstances
// ============================================================================

// NewDBDriver creates new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.New("unknown db driver: only 'sqlite' and 'postgres' are supported")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
