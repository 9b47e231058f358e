// Package testkit opens throwaway SQLite databases and loggers for package tests.
package testkit

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ovaphlow/pitchfork/service-hive-go/pkg/database"
)

// OpenSQLite returns a file-backed SQLite handle in t's temp dir together with
// a statement cache. Both are closed when the test ends.
func OpenSQLite(t testing.TB) (*sqlx.DB, *database.StmtCache) {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver: database.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "hive.db"),
	})
	require.NoError(t, err)
	stmts := database.NewStmtCache(db)
	t.Cleanup(func() {
		_ = stmts.Close()
		_ = db.Close()
	})
	return db, stmts
}

// ObservedLogger returns a sugared logger whose entries can be inspected.
func ObservedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}
