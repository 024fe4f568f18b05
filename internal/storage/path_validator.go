package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"go-vidtube/pkg/apierror"
)

// PathValidator keeps every staged file inside the staging root.
type PathValidator struct {
	rootAbs string
}

func NewPathValidator(root string) (*PathValidator, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("root path cannot be empty")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve staging root: %w", err)
	}

	return &PathValidator{rootAbs: rootAbs}, nil
}

func (v *PathValidator) RootAbs() string {
	return v.rootAbs
}

// ResolveName maps a single file name to an absolute path directly under the root.
func (v *PathValidator) ResolveName(name string) (string, error) {
	normalized := strings.TrimSpace(name)
	if normalized == "" || normalized == "." || normalized == ".." {
		return "", apierror.BadRequest("invalid staged file name", "filename")
	}

	if strings.Contains(normalized, "\x00") || hasControlCharacters(normalized) {
		return "", apierror.BadRequest("staged file name contains invalid characters", "filename")
	}

	if strings.ContainsAny(normalized, `/\`) {
		return "", apierror.BadRequest("staged file name must not contain separators", "filename")
	}

	resolvedAbs, err := filepath.Abs(filepath.Join(v.rootAbs, normalized))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	if !v.Contains(resolvedAbs) {
		return "", apierror.BadRequest("staged file resolves outside the staging root", "filename")
	}

	return resolvedAbs, nil
}

// Contains reports whether an absolute path lies strictly below the root.
func (v *PathValidator) Contains(candidate string) bool {
	candidateAbs, err := filepath.Abs(candidate)
	if err != nil {
		return false
	}
	return isWithinRoot(v.rootAbs, candidateAbs)
}

func hasControlCharacters(value string) bool {
	for _, char := range value {
		if unicode.IsControl(char) {
			return true
		}
	}

	return false
}

func isWithinRoot(rootAbs string, candidateAbs string) bool {
	rootWithSeparator := rootAbs + string(filepath.Separator)
	return strings.HasPrefix(candidateAbs, rootWithSeparator)
}
