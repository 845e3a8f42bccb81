package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dentkao/dentkao/store"
)

func (d *DB) UpsertStateBlob(ctx context.Context, upsert *store.StateBlob) (*store.StateBlob, error) {
	updatedTs := upsert.UpdatedTs
	if updatedTs == 0 {
		updatedTs = time.Now().Unix()
	}

	stmt := `
		INSERT INTO study_state (key, value, updated_ts)
		VALUES (` + placeholders(3) + `)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_ts = EXCLUDED.updated_ts
		RETURNING key, value, updated_ts`

	blob := &store.StateBlob{}
	if err := d.db.QueryRowContext(ctx, stmt, upsert.Key, upsert.Value, updatedTs).Scan(
		&blob.Key,
		&blob.Value,
		&blob.UpdatedTs,
	); err != nil {
		return nil, errors.Wrapf(err, "failed to upsert state blob %q", upsert.Key)
	}
	return blob, nil
}

func (d *DB) GetStateBlob(ctx context.Context, find *store.FindStateBlob) (*store.StateBlob, error) {
	if find.Key == nil {
		return nil, errors.New("key is required")
	}

	stmt := `SELECT key, value, updated_ts FROM study_state WHERE key = ` + placeholder(1)

	blob := &store.StateBlob{}
	if err := d.db.QueryRowContext(ctx, stmt, *find.Key).Scan(
		&blob.Key,
		&blob.Value,
		&blob.UpdatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to get state blob %q", *find.Key)
	}
	return blob, nil
}

func (d *DB) ListStateBlobs(ctx context.Context, find *store.FindStateBlob) ([]*store.StateBlob, error) {
	where, args := []string{"TRUE"}, []any{}
	if v := find.Key; v != nil {
		where, args = append(where, "key = "+placeholder(len(args)+1)), append(args, *v)
	}

	stmt := `SELECT key, value, updated_ts FROM study_state WHERE ` + strings.Join(where, " AND ") + ` ORDER BY key`

	rows, err := d.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list state blobs")
	}
	defer rows.Close()

	list := []*store.StateBlob{}
	for rows.Next() {
		blob := &store.StateBlob{}
		if err := rows.Scan(&blob.Key, &blob.Value, &blob.UpdatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan state blob")
		}
		list = append(list, blob)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate state blobs")
	}
	return list, nil
}

func (d *DB) DeleteStateBlob(ctx context.Context, delete *store.DeleteStateBlob) error {
	stmt := `DELETE FROM study_state WHERE key = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.Key); err != nil {
		return errors.Wrapf(err, "failed to delete state blob %q", delete.Key)
	}
	return nil
}
