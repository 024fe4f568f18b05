package handler

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"go-vidtube/internal/storage"
)

type filePart struct {
	field    string
	filename string
	content  []byte
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, method string, target string, values map[string]string, files ...filePart) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range values {
		require.NoError(t, writer.WriteField(name, value))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func newStaging(t *testing.T) *storage.Staging {
	t.Helper()

	staging, err := storage.New(t.TempDir())
	require.NoError(t, err)
	return staging
}

func requireStagingEmpty(t *testing.T, staging *storage.Staging) {
	t.Helper()

	entries, err := os.ReadDir(staging.RootAbs())
	require.NoError(t, err)
	require.Empty(t, entries)
}
