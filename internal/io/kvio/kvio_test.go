package kvio_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzlab/quantprot/internal/ent/kv"
	"github.com/mzlab/quantprot/internal/io/kvio"
)

func TestSetAndGet(t *testing.T) {
	assert := assert.New(t)
	dir := filepath.Join(t.TempDir(), "kv")

	store, err := kvio.New(dir)
	require.Nil(t, err)
	require.Nil(t, store.Open())
	defer store.Close()

	recs := []kv.Record{
		{Key: []byte("P1"), Value: []byte("Serum albumin")},
		{Key: []byte("P2"), Value: []byte("Hemoglobin")},
	}
	require.Nil(t, store.SetRecords(recs))

	val, err := store.GetValue([]byte("P1"))
	require.Nil(t, err)
	assert.Equal("Serum albumin", string(val))

	// Missing keys are not an error.
	val, err = store.GetValue([]byte("P404"))
	require.Nil(t, err)
	assert.Nil(val)
}

func TestNotOpen(t *testing.T) {
	store, err := kvio.New(filepath.Join(t.TempDir(), "kv"))
	require.Nil(t, err)

	_, err = store.GetValue([]byte("P1"))
	assert.NotNil(t, err)
	assert.NotNil(t, store.SetRecords(nil))
}
