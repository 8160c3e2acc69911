package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Fatalf("unexpected migration file %s", name)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestSettingsTablesDeclareUniqueOwnerKey(t *testing.T) {
	raw, err := fs.ReadFile(migrationFiles, "sql/000001_settings_meta.up.sql")
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "UNIQUE (owner_id, section, meta_key)")
	assert.Contains(t, body, "CREATE TABLE IF NOT EXISTS user_meta")
}
