// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"budgeter/internal/db"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens a migrated SQLite database in a per-test temp directory
func New(t *testing.T) *gorm.DB {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	entry := logrus.NewEntry(log)

	dsn := filepath.Join(t.TempDir(), "test.db")
	gdb, err := db.Open(db.Options{Driver: db.DriverSQLite, DSN: dsn, LogLevel: logger.Silent}, entry)
	if err != nil {
		t.Fatalf("dbtest: failed to open db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(gdb); err != nil {
			t.Logf("dbtest: error closing database: %v", err)
		}
	})

	if err := db.Migrate(gdb, entry); err != nil {
		t.Fatalf("dbtest: failed to migrate: %v", err)
	}
	return gdb
}
