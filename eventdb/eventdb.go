// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb persists signed records in sqlite. Replaceable kinds keep
// only the newest record per (author, kind, identifier).
package eventdb

import (
	"context"
	"database/sql"
	"slices"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/qianbin/directcache"

	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
)

const recordCacheSize = 8 * 1024 * 1024

// EventDB is the record store.
type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	cache         *directcache.Cache
}

// New creates or opens the record store at the given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(recordTableSchema + recordTagTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		cache:         directcache.New(recordCacheSize),
	}, nil
}

// NewMem creates a record store in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close closes the record store.
func (db *EventDB) Close() error {
	return db.db.Close()
}

// Path returns the database path.
func (db *EventDB) Path() string {
	return db.path
}

func (db *EventDB) execInTx(proc func(*sql.Tx) error) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Store saves the record and its tags. It reports false without error when
// the record is already stored, or when a replaceable record is not newer
// than the stored one.
func (db *EventDB) Store(r *record.Record) (bool, error) {
	data, err := rlp.EncodeToBytes(r)
	if err != nil {
		return false, err
	}
	id := r.ID()

	stored := false
	err = db.execInTx(func(tx *sql.Tx) error {
		if moot.IsReplaceableKind(r.Kind()) {
			var latest uint64
			row := tx.QueryRow(
				"SELECT createdAt FROM record WHERE author = ? AND kind = ? AND identifier = ? ORDER BY createdAt DESC LIMIT 1",
				r.Author().Bytes(), r.Kind(), r.Identifier())
			switch err := row.Scan(&latest); err {
			case nil:
				if latest >= r.CreatedAt() {
					return nil
				}
				if _, err := tx.Exec(
					"DELETE FROM recordTag WHERE recordID IN (SELECT id FROM record WHERE author = ? AND kind = ? AND identifier = ?);",
					r.Author().Bytes(), r.Kind(), r.Identifier()); err != nil {
					return err
				}
				if _, err := tx.Exec(
					"DELETE FROM record WHERE author = ? AND kind = ? AND identifier = ?;",
					r.Author().Bytes(), r.Kind(), r.Identifier()); err != nil {
					return err
				}
			case sql.ErrNoRows:
			default:
				return err
			}
		}

		res, err := tx.Exec(
			"INSERT OR IGNORE INTO record(id, author, createdAt, kind, identifier, data) VALUES(?, ?, ?, ?, ?, ?);",
			id.Bytes(), r.Author().Bytes(), r.CreatedAt(), r.Kind(), r.Identifier(), snappy.Encode(nil, data))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		for _, t := range r.Tags() {
			if t.Name() == "" {
				continue
			}
			if _, err := tx.Exec(
				"INSERT INTO recordTag(recordID, name, value) VALUES(?, ?, ?);",
				id.Bytes(), t.Name(), t.Value()); err != nil {
				return err
			}
		}
		stored = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if stored {
		_ = db.cache.Set(id.Bytes(), data)
		metricStoredCounter().AddWithLabel(1, map[string]string{"outcome": "stored"})
	} else {
		metricStoredCounter().AddWithLabel(1, map[string]string{"outcome": "skipped"})
	}
	return stored, nil
}

// Get returns the record with the given id, or nil when not stored.
func (db *EventDB) Get(ctx context.Context, id moot.Bytes32) (*record.Record, error) {
	var raw []byte
	if db.cache.AdvGet(id.Bytes(), func(val []byte) {
		raw = slices.Clone(val)
	}, false) && len(raw) > 0 {
		metricCacheHitMiss().AddWithLabel(1, map[string]string{"event": "hit"})
		r := new(record.Record)
		if err := rlp.DecodeBytes(raw, r); err != nil {
			return nil, err
		}
		return r, nil
	}

	row := db.db.QueryRowContext(ctx, "SELECT data FROM record WHERE id = ?", id.Bytes())
	var compressed []byte
	if err := row.Scan(&compressed); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return db.loadRecord(id.Bytes(), compressed)
}

// Query returns stored records matching the filter, newest first. A nil
// filter returns everything.
func (db *EventDB) Query(ctx context.Context, filter *record.Filter) ([]*record.Record, error) {
	metricQueryCounter().Add(1)
	if filter == nil {
		return db.queryRecords(ctx, "SELECT id, data FROM record ORDER BY createdAt DESC, id ASC")
	}

	var args []interface{}
	stmt := "SELECT id, data FROM record WHERE 1"
	if len(filter.IDs) > 0 {
		for i, id := range filter.IDs {
			if i == 0 {
				stmt += " AND ( id = ?"
			} else {
				stmt += " OR id = ?"
			}
			args = append(args, id.Bytes())
		}
		stmt += " )"
	}
	if len(filter.Kinds) > 0 {
		for i, kind := range filter.Kinds {
			if i == 0 {
				stmt += " AND ( kind = ?"
			} else {
				stmt += " OR kind = ?"
			}
			args = append(args, kind)
		}
		stmt += " )"
	}
	if len(filter.Authors) > 0 {
		for i, author := range filter.Authors {
			if i == 0 {
				stmt += " AND ( author = ?"
			} else {
				stmt += " OR author = ?"
			}
			args = append(args, author.Bytes())
		}
		stmt += " )"
	}
	if filter.Since > 0 {
		stmt += " AND createdAt >= ? "
		args = append(args, filter.Since)
	}
	if filter.Until > 0 {
		stmt += " AND createdAt <= ? "
		args = append(args, filter.Until)
	}
	if len(filter.Tags) > 0 {
		names := make([]string, 0, len(filter.Tags))
		for name := range filter.Tags {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			stmt += " AND id IN (SELECT recordID FROM recordTag WHERE name = ?"
			args = append(args, name)
			for i, value := range filter.Tags[name] {
				if i == 0 {
					stmt += " AND ( value = ?"
				} else {
					stmt += " OR value = ?"
				}
				args = append(args, value)
			}
			if len(filter.Tags[name]) > 0 {
				stmt += " )"
			}
			stmt += ")"
		}
	}

	stmt += " ORDER BY createdAt DESC, id ASC"
	if filter.Limit > 0 {
		stmt += " limit ?"
		args = append(args, filter.Limit)
	}
	return db.queryRecords(ctx, stmt, args...)
}

func (db *EventDB) queryRecords(ctx context.Context, stmt string, args ...interface{}) ([]*record.Record, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*record.Record
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			id         []byte
			compressed []byte
		)
		if err := rows.Scan(&id, &compressed); err != nil {
			return nil, err
		}
		r, err := db.loadRecord(id, compressed)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	metricResultBucket().Observe(int64(len(records)))
	return records, nil
}

func (db *EventDB) loadRecord(id []byte, compressed []byte) (*record.Record, error) {
	var raw []byte
	if db.cache.AdvGet(id, func(val []byte) {
		raw = slices.Clone(val)
	}, false) && len(raw) > 0 {
		metricCacheHitMiss().AddWithLabel(1, map[string]string{"event": "hit"})
	} else {
		metricCacheHitMiss().AddWithLabel(1, map[string]string{"event": "miss"})
		var err error
		if raw, err = snappy.Decode(nil, compressed); err != nil {
			return nil, err
		}
		_ = db.cache.Set(id, raw)
	}

	r := new(record.Record)
	if err := rlp.DecodeBytes(raw, r); err != nil {
		return nil, err
	}
	return r, nil
}
