package bolt

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoelJacobStephen/litxplore"
)

func createStore(t *testing.T) *MetadataStore {
	driver := &Driver{}
	require.NoError(t, driver.Open(filepath.Join(t.TempDir(), "metadata.db")))
	t.Cleanup(func() { driver.Close() })

	return &MetadataStore{Driver: driver}
}

func TestMetadataStore_PutGet(t *testing.T) {
	store := createStore(t)

	paper := &litxplore.Paper{
		ID:        "upload_ab12cd34ef56ab12",
		Title:     "Attention Is All You Need",
		Authors:   []string{"Ashish Vaswani"},
		Summary:   "The dominant sequence transduction models...",
		Published: time.Date(2017, 6, 12, 0, 0, 0, 0, time.UTC),
		URL:       "/uploads/ab12cd34ef56ab12.pdf",
	}
	require.NoError(t, store.Put("ab12cd34ef56ab12", paper))

	got, err := store.Get("ab12cd34ef56ab12")
	require.NoError(t, err)
	assert.Equal(t, paper, got)
}

func TestMetadataStore_GetMissing(t *testing.T) {
	store := createStore(t)

	got, err := store.Get("deadbeef")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMetadataStore_Delete(t *testing.T) {
	store := createStore(t)

	require.NoError(t, store.Put("ab12", &litxplore.Paper{Title: "t"}))
	require.NoError(t, store.Delete("ab12"))

	got, err := store.Get("ab12")
	require.NoError(t, err)
	assert.Nil(t, got)
}
