/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

package certstorage

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SQLiteStore reads a cert_storage snapshot that has been exported to
// a sqlite table of (key BLOB, value INTEGER) rows.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the snapshot database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open cert_storage snapshot at %s", path)
	}
	// sql.Open is lazy, so poke the file before handing it out.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to open cert_storage snapshot at %s", path)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Iter begins a single ordered pass over the snapshot.
func (s *SQLiteStore) Iter() (Iter, error) {
	rows, err := s.db.Query(`SELECT key, value FROM cert_storage ORDER BY key`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query cert_storage snapshot")
	}
	return &sqliteIter{rows: rows}, nil
}

type sqliteIter struct {
	rows  *sql.Rows
	key   []byte
	value *int64
	err   error
}

func (i *sqliteIter) Next() bool {
	if i.err != nil {
		return false
	}
	if !i.rows.Next() {
		i.err = i.rows.Err()
		i.rows.Close()
		return false
	}
	var value sql.NullInt64
	if err := i.rows.Scan(&i.key, &value); err != nil {
		i.err = err
		i.rows.Close()
		return false
	}
	if value.Valid {
		v := value.Int64
		i.value = &v
	} else {
		i.value = nil
	}
	return true
}

func (i *sqliteIter) Pair() ([]byte, *int64) {
	return i.key, i.value
}

func (i *sqliteIter) Err() error {
	return i.err
}
