package database

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	require.NoError(t, err)

	var ups, downs int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs, "every up migration needs a down migration")
	assert.GreaterOrEqual(t, ups, 1)

	schema, err := fs.ReadFile(migrationFS, "migrations/000001_init_schema.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"users", "categories", "articles", "settings"} {
		assert.Contains(t, string(schema), "CREATE TABLE IF NOT EXISTS "+table)
	}
}

func TestHealthCheck(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectPing()

	db := Wrap(sqlDB, zerolog.Nop())
	require.NoError(t, db.HealthCheck(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
