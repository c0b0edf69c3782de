package nickdb_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-overlay/bwoverlay/internal/nickdb"
)

func TestDatabase_SetThenGet(t *testing.T) {
	db := nickdb.New()
	id := uuid.New()
	db.Set("sneakyNick", id)

	got, ok := db.Get("sneakyNick")
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestDatabase_UnknownNickNotFound(t *testing.T) {
	db := nickdb.New()
	_, ok := db.Get("nope")
	assert.False(t, ok)
}

func TestDatabase_LoadLayerTakesPrecedenceOverDefault(t *testing.T) {
	db := nickdb.New()
	defaultID := uuid.New()
	db.Set("shared", defaultID)

	layerID := uuid.New()
	path := filepath.Join(t.TempDir(), "layer.json")
	content := `{"shared": "` + layerID.String() + `"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, db.LoadLayer(path))

	got, ok := db.Get("shared")
	require.True(t, ok)
	assert.Equal(t, layerID, got)
}
