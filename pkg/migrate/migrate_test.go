package migrate

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Tests run from the package directory, so the goose dir is relative here.
const sqliteTestDir = "migrations/sqlite"

func newTestSQLDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return conn
}

func TestDirFor(t *testing.T) {
	assert.Equal(t, SQLiteDir, DirFor("sqlite3"))
	assert.Equal(t, DefaultDir, DirFor("postgres"))
	assert.Equal(t, DefaultDir, DirFor(""))
}

func TestRunSQLiteUp(t *testing.T) {
	conn := newTestSQLDB(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	err = Run(context.Background(), sqlDB, "sqlite3", sqliteTestDir, "up")
	require.NoError(t, err)

	for _, table := range []string{
		"events", "line_items", "ingredients", "recipes", "recipe_ingredients", "outbox_events",
	} {
		var count int64
		err = conn.Raw(
			"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&count).Error
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "table %s should exist", table)
	}

	var count int64
	err = conn.Raw(
		"SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_outbox_events_unpublished'",
	).Scan(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRunSQLiteDown(t *testing.T) {
	conn := newTestSQLDB(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	require.NoError(t, Run(context.Background(), sqlDB, "sqlite3", sqliteTestDir, "up"))
	require.NoError(t, Run(context.Background(), sqlDB, "sqlite3", sqliteTestDir, "down"))

	var count int64
	err = conn.Raw(
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'events'",
	).Scan(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRunValidation(t *testing.T) {
	err := Run(context.Background(), nil, "sqlite3", sqliteTestDir, "up")
	assert.Error(t, err)

	conn := newTestSQLDB(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	err = Run(context.Background(), sqlDB, "sqlite3", "", "up")
	assert.Error(t, err)
}
