// Package testutil provides common test utilities: an in-memory SQLite
// database shaped like the historical ERP tables, and helpers for driving
// the HTTP surface in tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// historySchema mirrors the production migrations closely enough for the
// read-only queries exercised in tests.
const historySchema = `
CREATE TABLE kas_bank (
    kode            TEXT PRIMARY KEY,
    tanggal         DATETIME NOT NULL,
    keterangan      TEXT NOT NULL DEFAULT '',
    kode_akun       TEXT NOT NULL DEFAULT '',
    nominal         NUMERIC NOT NULL DEFAULT 0,
    akun_lawan1     TEXT NOT NULL DEFAULT '',
    nominal_lawan1  NUMERIC NOT NULL DEFAULT 0,
    jenis_lawan1    TEXT NOT NULL DEFAULT '',
    akun_lawan2     TEXT NOT NULL DEFAULT '',
    nominal_lawan2  NUMERIC NOT NULL DEFAULT 0,
    jenis_lawan2    TEXT NOT NULL DEFAULT '',
    akun_lawan3     TEXT NOT NULL DEFAULT '',
    nominal_lawan3  NUMERIC NOT NULL DEFAULT 0,
    jenis_lawan3    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE jurnal (
    kode        TEXT PRIMARY KEY,
    tanggal     DATETIME NOT NULL,
    no_voucher  TEXT NOT NULL DEFAULT '',
    keterangan  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE jurnal_detil (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    kode_jurnal  TEXT NOT NULL,
    kode_akun    TEXT NOT NULL DEFAULT '',
    debit        NUMERIC NOT NULL DEFAULT 0,
    kredit       NUMERIC NOT NULL DEFAULT 0
);
`

// NewHistoryDB opens an in-memory SQLite database carrying the historical
// table layout. Each call returns an isolated database.
func NewHistoryDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "failed to open in-memory sqlite")

	require.NoError(t, db.Exec(historySchema).Error, "failed to create history schema")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
