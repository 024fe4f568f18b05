package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathValidatorResolveName(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	validator, err := NewPathValidator(root)
	require.NoError(t, err)

	t.Run("plain name resolves inside root", func(t *testing.T) {
		resolved, resolveErr := validator.ResolveName("clip.mp4")
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(validator.RootAbs(), "clip.mp4"), resolved)
	})

	t.Run("separators are rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolveName("../secrets.txt")
		require.Error(t, resolveErr)

		_, resolveErr = validator.ResolveName(`nested\clip.mp4`)
		require.Error(t, resolveErr)
	})

	t.Run("dot names are rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolveName("..")
		require.Error(t, resolveErr)
	})

	t.Run("control characters are rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolveName("clip\n.mp4")
		require.Error(t, resolveErr)
	})

	t.Run("null bytes are rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolveName("clip\x00.mp4")
		require.Error(t, resolveErr)
	})

	t.Run("root itself is not contained", func(t *testing.T) {
		require.False(t, validator.Contains(validator.RootAbs()))
		require.True(t, validator.Contains(filepath.Join(validator.RootAbs(), "a.png")))
		require.False(t, isWithinRoot("/tmp/Root", "/tmp/RootOther/file.txt"))
	})
}
