package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"go-vidtube/internal/util"
)

// Staging is the local directory multipart uploads are streamed into before
// they are handed to the media host.
type Staging struct {
	validator *PathValidator
}

func New(root string) (*Staging, error) {
	validator, err := NewPathValidator(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(validator.RootAbs(), 0o755); err != nil {
		return nil, fmt.Errorf("create staging root: %w", err)
	}

	return &Staging{validator: validator}, nil
}

func (s *Staging) RootAbs() string {
	return s.validator.RootAbs()
}

// Save copies reader into a uniquely named file and returns its absolute path.
// The client file name only contributes its extension.
func (s *Staging) Save(originalName string, reader io.Reader) (string, error) {
	name := uuid.NewString()
	if sanitized, err := util.SanitizeFilename(originalName); err == nil {
		name += util.SafeExtension(sanitized)
	}

	target, err := s.validator.ResolveName(name)
	if err != nil {
		return "", err
	}

	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}

	if _, err := io.CopyBuffer(file, reader, make([]byte, 32*1024)); err != nil {
		_ = file.Close()
		_ = os.Remove(target)
		return "", err
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("close staged file: %w", err)
	}

	return target, nil
}

// Remove deletes a staged file. Paths outside the root and missing files are ignored.
func (s *Staging) Remove(path string) {
	if path == "" || !s.validator.Contains(path) {
		return
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove staged upload", "path", path, "error", err)
	}
}
