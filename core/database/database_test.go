package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigConnectionStrings(t *testing.T) {
	cfg := Config{Host: "db", User: "bot", Password: "p@ss", Name: "themes"}

	assert.True(t, cfg.Enabled())
	assert.Equal(t, "user=bot password=p@ss host=db port=5432 dbname=themes sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://bot:p%40ss@db:5432/themes?sslmode=disable", cfg.URL())
	assert.False(t, Config{}.Enabled())
}

func TestMigrationFileSelection(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_status.up.sql", "0001_orders.up.sql", "0001_orders.down.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}

	files := listMigrationFiles(dir)
	assert.Equal(t, []string{"0001_orders.up.sql", "0002_status.up.sql"}, files)
	assert.Equal(t, []string{"0002_status.up.sql"}, selectApplied(files, 1, 2))
	assert.Empty(t, selectApplied(files, 2, 2))
	assert.Equal(t, uint64(1), parseVersion("0001_orders.up.sql"))
	assert.Zero(t, parseVersion("orders.up.sql"))
}

func TestResolveMigrationsDir(t *testing.T) {
	abs, err := resolveMigrationsDir("/srv/migrations")
	require.NoError(t, err)
	assert.Equal(t, "/srv/migrations", abs)

	rel, err := resolveMigrationsDir("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(rel))
	assert.Equal(t, "migrations", filepath.Base(rel))
}
