package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// GetAll returns every record of a collection keyed by id. Bodies are left
// encoded so callers decode into their own types.
func (d *DB) GetAll(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, body FROM records WHERE collection = ?`, collection)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", collection, err)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		out[id] = json.RawMessage(body)
	}
	return out, rows.Err()
}

// Put stores value (JSON encoded) under collection/id, replacing any
// previous record.
func (d *DB) Put(ctx context.Context, collection, id string, value any) error {
	return put(ctx, d.conn, collection, id, value)
}

// Delete removes collection/id. Deleting a missing record is not an error.
func (d *DB) Delete(ctx context.Context, collection, id string) error {
	return del(ctx, d.conn, collection, id)
}

// GetMeta decodes the meta value for key into dst. It reports false when
// the key has never been written.
func (d *DB) GetMeta(ctx context.Context, key string, dst any) (bool, error) {
	var raw string
	err := d.conn.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading meta %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decoding meta %s: %w", key, err)
	}
	return true, nil
}

// PutMeta stores value (JSON encoded) under key.
func (d *DB) PutMeta(ctx context.Context, key string, value any) error {
	return putMeta(ctx, d.conn, key, value)
}

// Writer is the write half of the store, usable inside a transaction.
type Writer interface {
	Put(ctx context.Context, collection, id string, value any) error
	Delete(ctx context.Context, collection, id string) error
	PutMeta(ctx context.Context, key string, value any) error
}

type txWriter struct {
	tx *sql.Tx
}

func (w txWriter) Put(ctx context.Context, collection, id string, value any) error {
	return put(ctx, w.tx, collection, id, value)
}

func (w txWriter) Delete(ctx context.Context, collection, id string) error {
	return del(ctx, w.tx, collection, id)
}

func (w txWriter) PutMeta(ctx context.Context, key string, value any) error {
	return putMeta(ctx, w.tx, key, value)
}

// Atomic runs fn inside a transaction. Every write fn makes through the
// given Writer commits together or not at all.
func (d *DB) Atomic(ctx context.Context, fn func(w Writer) error) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(txWriter{tx: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func put(ctx context.Context, ex execer, collection, id string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", collection, id, err)
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO records (collection, id, body, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, collection, id, string(body), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	return nil
}

func del(ctx context.Context, ex execer, collection, id string) error {
	if _, err := ex.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id = ?`, collection, id); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

func putMeta(ctx context.Context, ex execer, key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding meta %s: %w", key, err)
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO meta (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(body), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("writing meta %s: %w", key, err)
	}
	return nil
}
