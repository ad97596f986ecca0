// Package storetest opens throwaway SQLite stores for tests.
package storetest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cppla/gram/config"
	"github.com/cppla/gram/models"
	"github.com/cppla/gram/store"
)

// New returns a migrated in-memory store closed at test cleanup.
func New(t testing.TB) *store.GormStore {
	t.Helper()
	db, err := config.InitDatabase(config.AppConfig{
		DBDriver: "sqlite",
		DBName:   ":memory:",
		LogLevel: "silent",
	}, zap.NewNop(), models.All()...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return store.NewGormStore(db)
}
