package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.db")

	conn, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	// Reopening must not re-run applied migrations
	conn, err = Open(path)
	require.NoError(t, err)
	defer conn.Close()

	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count))
	assert.Equal(t, 1, count)

	for _, table := range []string{"records", "history_entries", "audit_log"} {
		var name string
		err := conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestHistoryEntriesAreImmutable(t *testing.T) {
	conn, err := Open(filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(`
		INSERT INTO history_entries (id, resource_kind, resource_key, action, before_json, after_json,
			reason, actor_id, actor_role, version_before, version_after, created_at)
		VALUES ('h1', 'setting', 'k', 'update', '{}', '{}', 'a long enough reason', 'u1', 'admin', 1, 2, CURRENT_TIMESTAMP)
	`)
	require.NoError(t, err)

	_, err = conn.Exec("UPDATE history_entries SET reason = 'x' WHERE id = 'h1'")
	assert.Error(t, err)

	_, err = conn.Exec("DELETE FROM history_entries WHERE id = 'h1'")
	assert.Error(t, err)

	// versionAfter must equal versionBefore + 1
	_, err = conn.Exec(`
		INSERT INTO history_entries (id, resource_kind, resource_key, action, before_json, after_json,
			reason, actor_id, actor_role, version_before, version_after, created_at)
		VALUES ('h2', 'setting', 'k', 'update', '{}', '{}', 'a long enough reason', 'u1', 'admin', 2, 4, CURRENT_TIMESTAMP)
	`)
	assert.Error(t, err)
}

func TestLoadMigrationsSorted(t *testing.T) {
	fsys := fstest.MapFS{
		"m/002_b.sql":  {Data: []byte("SELECT 2;")},
		"m/001_a.sql":  {Data: []byte("SELECT 1;")},
		"m/readme.txt": {Data: []byte("ignored")},
	}

	migrations, err := loadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "001_a", migrations[0].Version)
	assert.Equal(t, "002_b", migrations[1].Version)

	_, err = loadMigrations(fstest.MapFS{"m/readme.txt": {Data: []byte("x")}}, "m")
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	dsn := DSN("/tmp/x.db")
	assert.Contains(t, dsn, "file:/tmp/x.db?")
	assert.Contains(t, dsn, "_txlock=immediate")
	assert.Contains(t, dsn, "_busy_timeout=5000")
}
