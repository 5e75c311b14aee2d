package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMigrationFiles(t *testing.T) {
	migFS := fstest.MapFS{
		"0002_b.sql":    {Data: []byte("SELECT 2")},
		"0001_a.sql":    {Data: []byte("SELECT 1")},
		"README.md":     {Data: []byte("docs")},
		"nested/x.sql":  {Data: []byte("SELECT 3")},
		"0010_last.sql": {Data: []byte("SELECT 10")},
	}

	files, err := listMigrationFiles(migFS)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_a.sql", "0002_b.sql", "0010_last.sql"}, files)
}
