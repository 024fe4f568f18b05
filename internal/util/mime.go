package util

import (
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"go-vidtube/pkg/apierror"
)

// ImageInfo describes a decodable image on disk.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

func DetectMIME(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	return http.DetectContentType(buffer[:n]), nil
}

// InspectImage decodes only the image header, so large files are cheap to check.
func InspectImage(path string, field string) (ImageInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("open %s: %w", field, err)
	}
	defer file.Close()

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return ImageInfo{}, apierror.BadRequest(field+" must be an image", field)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ImageInfo{}, apierror.BadRequest(field+" has invalid dimensions", field)
	}

	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// EnsureVideo fails with BadRequest unless the staged file looks like a video,
// by content sniffing or, for containers net/http does not sniff, by extension.
func EnsureVideo(path string, field string) error {
	mimeType, err := DetectMIME(path)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", field, err)
	}

	if IsVideoMIME(mimeType) {
		return nil
	}
	if strings.EqualFold(mimeType, "application/octet-stream") && IsVideoExtension(filepath.Ext(path)) {
		return nil
	}

	return apierror.BadRequest(field+" must be a video", field)
}

func IsVideoMIME(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "video/")
}

func IsVideoExtension(extension string) bool {
	switch strings.ToLower(strings.TrimSpace(extension)) {
	case ".mp4", ".m4v", ".mov", ".webm", ".mkv", ".avi", ".wmv", ".flv", ".mpeg", ".mpg", ".3gp", ".ts", ".ogv", ".qt":
		return true
	default:
		return false
	}
}

// ContentTypeFor maps a staged file extension to the Content-Type stored on the media host.
func ContentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov", ".qt":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".avi":
		return "video/x-msvideo"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}
