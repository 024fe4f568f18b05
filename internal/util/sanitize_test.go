package util

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	t.Run("sanitizes invalid characters", func(t *testing.T) {
		actual, err := SanitizeFilename(` clip<2026>?.mp4 `)
		require.NoError(t, err)
		require.Equal(t, "clip_2026__.mp4", actual)
	})

	t.Run("drops directory components", func(t *testing.T) {
		actual, err := SanitizeFilename(`..\..\etc/passwd`)
		require.NoError(t, err)
		require.Equal(t, "passwd", actual)
	})

	t.Run("strips leading dots", func(t *testing.T) {
		actual, err := SanitizeFilename(".avatar.png")
		require.NoError(t, err)
		require.Equal(t, "avatar.png", actual)
	})

	t.Run("rejects empty filenames", func(t *testing.T) {
		_, err := SanitizeFilename("   ")
		require.Error(t, err)
	})

	t.Run("removes zero-width characters", func(t *testing.T) {
		actual, err := SanitizeFilename("thumb\u200bnail.jpg")
		require.NoError(t, err)
		require.Equal(t, "thumbnail.jpg", actual)
	})

	t.Run("truncates by runes", func(t *testing.T) {
		actual, err := SanitizeFilename(strings.Repeat("é", 300))
		require.NoError(t, err)
		require.Equal(t, 200, utf8.RuneCountInString(actual))
		require.True(t, utf8.ValidString(actual))
	})
}

func TestSafeExtension(t *testing.T) {
	t.Parallel()

	require.Equal(t, ".mp4", SafeExtension("Movie.MP4"))
	require.Equal(t, ".jpeg", SafeExtension("a.b.jpeg"))
	require.Equal(t, "", SafeExtension("noext"))
	require.Equal(t, "", SafeExtension("weird.$$$"))
}
