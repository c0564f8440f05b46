// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sqlitedb provides a persistent implementation of database.DB that
// keeps each DB in its own SQLite file. SQLite compares BLOBs with memcmp,
// which is the same order as bytes.Compare, so range reads map directly onto
// the primary key index. It's registered under the name "sqlite".
package sqlitedb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ebay/tristore/database"
	pbytes "github.com/ebay/tristore/util/bytes"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

func init() {
	database.Register(New, "sqlite")
}

// enumeratePageSize is how many rows Enumerate reads per query. Rows are
// read in full before being emitted so that the single connection is free
// for the callback to use.
const enumeratePageSize = 512

const schema = `CREATE TABLE IF NOT EXISTS kv (
	k BLOB PRIMARY KEY,
	v BLOB
) WITHOUT ROWID`

// DB is an ordered key-value store held in a SQLite database.
type DB struct {
	db   *sql.DB
	path string
}

// New will create or open the database for the supplied FactoryArgs. The file
// is named after args.Name within args.Dir. If args.Dir is empty, the
// database is kept in memory.
func New(args database.FactoryArgs) (database.DB, error) {
	path := ":memory:"
	if args.Dir != "" {
		if err := os.MkdirAll(args.Dir, 0755); err != nil {
			return nil, fmt.Errorf("sqlitedb: unable to create directory: %w", err)
		}
		name := args.Name
		if name == "" {
			name = "kv"
		}
		path = filepath.Join(args.Dir, name+".db")
	}
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Open will open the SQLite database at 'path', creating it if needed.
func Open(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitedb: opening %v returned error: %w", path, err)
	}
	// Each connection to ":memory:" is a distinct database, and a single
	// connection serializes writers for files too.
	sqldb.SetMaxOpenConns(1)
	stmts := []string{schema}
	if path != ":memory:" {
		stmts = append([]string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL"}, stmts...)
	}
	for _, stmt := range stmts {
		if _, err := sqldb.Exec(stmt); err != nil {
			sqldb.Close()
			return nil, fmt.Errorf("sqlitedb: executing %q returned error: %w", stmt, err)
		}
	}
	log.WithField("path", path).Debug("Opened SQLite database")
	return &DB{db: sqldb, path: path}, nil
}

// Close closes the underlying SQLite database.
func (db *DB) Close() error {
	return db.db.Close()
}

// Read returns the value currently stored for the provided key, or
// database.ErrKeyNotFound.
func (db *DB) Read(key []byte) ([]byte, error) {
	var value []byte
	err := db.db.QueryRow(`SELECT v FROM kv WHERE k = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// ReadFirst implements database.Reader.
func (db *DB) ReadFirst(low, high []byte) ([]byte, []byte, error) {
	return db.readOne(low, high, "ASC")
}

// ReadLast implements database.Reader.
func (db *DB) ReadLast(low, high []byte) ([]byte, []byte, error) {
	return db.readOne(low, high, "DESC")
}

func (db *DB) readOne(low, high []byte, dir string) ([]byte, []byte, error) {
	where, args := rangeClause(low, high)
	var key, value []byte
	err := db.db.QueryRow(`SELECT k, v FROM kv`+where+` ORDER BY k `+dir+` LIMIT 1`, args...).
		Scan(&key, &value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, database.ErrKeyNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return key, value, nil
}

// rangeClause returns a WHERE clause and its arguments for keys in
// [low, high). Either may be nil for unbounded.
func rangeClause(low, high []byte) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if low != nil {
		conds = append(conds, "k >= ?")
		args = append(args, low)
	}
	if high != nil {
		conds = append(conds, "k < ?")
		args = append(args, high)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Write will update the database with the one provided key/value pair.
func (db *DB) Write(key []byte, value []byte) error {
	_, err := db.db.Exec(`INSERT OR REPLACE INTO kv (k, v) VALUES (?, ?)`, key, value)
	return err
}

// Writes will write a batch of key/values to the database in one transaction.
func (db *DB) Writes(writes []database.KV) error {
	return db.insertTx(writes)
}

func (db *DB) insertTx(writes []database.KV) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO kv (k, v) VALUES (?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, kv := range writes {
		if _, err := stmt.Exec(kv.Key, kv.Value); err != nil {
			stmt.Close()
			tx.Rollback()
			return err
		}
	}
	if err := stmt.Close(); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Count returns the number of keys in the DB.
func (db *DB) Count() (int64, error) {
	var n int64
	err := db.db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n)
	return n, err
}

// Enumerate implements database.DB. It reads the range a page at a time, so
// it's not a consistent snapshot if there are concurrent writes.
func (db *DB) Enumerate(startKey, endKey []byte, emit func(key []byte, value []byte) error) error {
	low := startKey
	for {
		page, err := db.readPage(low, endKey)
		if err != nil {
			return err
		}
		for _, kv := range page {
			if err := emit(kv.Key, kv.Value); err != nil {
				if err == database.ErrHalt {
					return nil
				}
				return err
			}
		}
		if len(page) < enumeratePageSize {
			return nil
		}
		low = pbytes.Successor(page[len(page)-1].Key)
	}
}

func (db *DB) readPage(low, high []byte) ([]database.KV, error) {
	where, args := rangeClause(low, high)
	args = append(args, enumeratePageSize)
	rows, err := db.db.Query(`SELECT k, v FROM kv`+where+` ORDER BY k LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	page := make([]database.KV, 0, enumeratePageSize)
	for rows.Next() {
		var kv database.KV
		if err := rows.Scan(&kv.Key, &kv.Value); err != nil {
			return nil, err
		}
		page = append(page, kv)
	}
	return page, rows.Err()
}

type bulkWriter struct {
	db     *DB
	writes []database.KV
}

// BulkWrite returns a new BulkWriter which can be used to buffer up a series
// of writes, which are applied in chunks, one transaction per chunk. You must
// call Close() to ensure the last chunk is written.
func (db *DB) BulkWrite() database.BulkWriter {
	return &bulkWriter{db: db}
}

const bulkWriteChunkCount = 1024

// Buffer will buffer for write a single key/value pair, it may cause the
// current chunk to be written to the database.
func (writer *bulkWriter) Buffer(key []byte, value []byte) error {
	writer.writes = append(writer.writes, database.KV{
		Key:   pbytes.Copy(key),
		Value: pbytes.Copy(value),
	})
	if len(writer.writes) >= bulkWriteChunkCount {
		return writer.Close()
	}
	return nil
}

// Close writes any pending writes and clears the buffer. The bulkWriter is
// still valid to use after calling Close, and Close can be called multiple
// times.
func (writer *bulkWriter) Close() error {
	if len(writer.writes) == 0 {
		return nil
	}
	err := writer.db.insertTx(writer.writes)
	if err == nil {
		writer.writes = writer.writes[:0]
	}
	return err
}
