package util

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"go-vidtube/pkg/apierror"
)

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

var allowedExtension = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// SanitizeFilename strips control and invisible characters and replaces
// characters that are unsafe on common filesystems.
func SanitizeFilename(name string) (string, error) {
	trimmed := strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	if trimmed == "" || trimmed == "." || trimmed == ".." || trimmed == "/" {
		return "", apierror.BadRequest("filename cannot be empty", "filename")
	}

	builder := strings.Builder{}
	builder.Grow(len(trimmed))
	for _, char := range trimmed {
		if unicode.IsControl(char) || unicode.Is(unicode.Cf, char) {
			continue
		}
		builder.WriteRune(char)
	}

	cleaned := strings.TrimSpace(invalidFilenameChars.ReplaceAllString(builder.String(), "_"))
	cleaned = strings.TrimLeft(cleaned, ".")
	if cleaned == "" {
		return "", apierror.BadRequest("filename is invalid after sanitization", "filename")
	}

	runes := []rune(cleaned)
	if len(runes) > 200 {
		runes = runes[:200]
	}

	return string(runes), nil
}

// SafeExtension returns the lower-cased extension of name, or "" when it is
// not a short alphanumeric extension.
func SafeExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	if !allowedExtension.MatchString(ext) {
		return ""
	}
	return ext
}
