package stream

import (
	"path/filepath"
	"testing"

	"github.com/aristath/vigil/internal/config"
	testingpkg "github.com/aristath/vigil/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store := FileStore{Dir: filepath.Join(t.TempDir(), "state")}

	_, ok, err := store.Load("AAA")
	require.NoError(t, err)
	assert.False(t, ok)

	tr := newTracker(t, "AAA")
	_, err = tr.Seed(testingpkg.RandomWalk("AAA", 30, 5, 0.01))
	require.NoError(t, err)
	data, err := tr.Snapshot()
	require.NoError(t, err)
	require.NoError(t, store.Save("aaa", data))

	got, ok, err := store.Load("AAA")
	require.NoError(t, err)
	require.True(t, ok)

	restored, err := Restore(got, config.Default().Indicators, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, tr.Latest(), restored.Latest())
}
