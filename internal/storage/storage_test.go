package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStagingSaveAndRemove(t *testing.T) {
	t.Parallel()

	staging, err := New(filepath.Join(t.TempDir(), "temp"))
	require.NoError(t, err)

	path, err := staging.Save("../../My Clip.MP4", strings.NewReader("frames"))
	require.NoError(t, err)
	require.Equal(t, staging.RootAbs(), filepath.Dir(path))
	require.Equal(t, ".mp4", filepath.Ext(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "frames", string(content))

	staging.Remove(path)
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestStagingIgnoresForeignPaths(t *testing.T) {
	t.Parallel()

	staging, err := New(t.TempDir())
	require.NoError(t, err)

	outside := filepath.Join(t.TempDir(), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	staging.Remove(outside)
	_, err = os.Stat(outside)
	require.NoError(t, err)
}

func TestStagingNamesAreUnique(t *testing.T) {
	t.Parallel()

	staging, err := New(t.TempDir())
	require.NoError(t, err)

	first, err := staging.Save("avatar.png", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := staging.Save("avatar.png", strings.NewReader("b"))
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
