package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const schema = `
create table if not exists item (
    id integer primary key,
    name text not null unique
);`

func TestOpenAndMigrateDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	for i := 0; i < 2; i++ {
		db, err := OpenAndMigrateDB(context.Background(), Target{File: path}, schema)
		require.NoError(t, err)

		_, err = db.Exec("insert into item(name) values (?) on conflict(name) do nothing", "a")
		require.NoError(t, err)

		var count int
		require.NoError(t, db.QueryRow("select count(*) from item").Scan(&count))
		require.Equal(t, 1, count)
		require.NoError(t, db.Close())
	}
}

func TestIsRemote(t *testing.T) {
	require.True(t, isRemote("libsql://reviews-org.turso.io"))
	require.True(t, isRemote("https://reviews-org.turso.io"))
	require.False(t, isRemote("/var/lib/reviewscope/reviews.db"))
	require.False(t, isRemote(":memory:"))
}
