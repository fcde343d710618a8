package db_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cartkeep/pkg/db"
)

func TestOpenSQLite(t *testing.T) {
	t.Parallel()

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		_, err := db.OpenSQLite(context.Background(), "")
		require.ErrorIs(t, err, db.ErrEmptySQLitePath)
	})

	t.Run("in memory", func(t *testing.T) {
		t.Parallel()

		conn, err := db.OpenSQLite(context.Background(), ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })

		require.NoError(t, db.SQLHealthcheck(conn)(context.Background()))
	})
}

func TestMigrate_SQLite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	migrations := fstest.MapFS{
		"00001_things.sql": &fstest.MapFile{Data: []byte(`-- +goose Up
CREATE TABLE things (id INTEGER PRIMARY KEY);

-- +goose Down
DROP TABLE things;
`)},
	}

	require.NoError(t, db.Migrate(ctx, conn, db.DialectSQLite, migrations, "test_migrations", nil))

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM things").Scan(&n))
	require.Zero(t, n)
}

func TestMigrate_BadDialect(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	err = db.Migrate(ctx, conn, "oracle-ish", fstest.MapFS{}, "m", nil)
	require.ErrorIs(t, err, db.ErrSetDialect)
}
