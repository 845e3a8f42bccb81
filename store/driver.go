package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// StateBlob model related methods.
	UpsertStateBlob(ctx context.Context, upsert *StateBlob) (*StateBlob, error)
	GetStateBlob(ctx context.Context, find *FindStateBlob) (*StateBlob, error)
	ListStateBlobs(ctx context.Context, find *FindStateBlob) ([]*StateBlob, error)
	DeleteStateBlob(ctx context.Context, delete *DeleteStateBlob) error
}
