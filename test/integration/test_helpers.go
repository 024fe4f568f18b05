//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"go-vidtube/internal/config"
	"go-vidtube/internal/database"
	"go-vidtube/internal/event"
	"go-vidtube/internal/handler"
	"go-vidtube/internal/media"
	"go-vidtube/internal/middleware"
	"go-vidtube/internal/repository"
	"go-vidtube/internal/router"
	"go-vidtube/internal/service"
	"go-vidtube/internal/storage"
)

// memoryHost hands out deterministic URLs instead of talking to an object store.
type memoryHost struct {
	next atomic.Int64
}

func (h *memoryHost) Upload(_ context.Context, localPath string) (media.Asset, error) {
	ext := filepath.Ext(localPath)
	asset := media.Asset{URL: fmt.Sprintf("https://media.test/%d%s", h.next.Add(1), ext)}
	if ext == ".mp4" {
		asset.Duration = 12.5
	}
	return asset, nil
}

func (h *memoryHost) Delete(context.Context, string) error { return nil }

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, databaseURL, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))

	userRepo := repository.NewUserRepository(db.Pool)
	tokenRepo := repository.NewTokenRepository(db.Pool)
	videoRepo := repository.NewVideoRepository(db.Pool)

	staging, err := storage.New(t.TempDir())
	require.NoError(t, err)

	host := &memoryHost{}
	bus := event.NewBus()

	tokens, err := service.NewTokenService(userRepo, tokenRepo, "access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	users := service.NewUserService(userRepo, tokens, host, bus)
	users.SetPasswordCost(4)
	videos := service.NewVideoService(videoRepo, host, nil, bus)

	cfg := &config.Config{
		RequestTimeout:   30 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
		MaxUploadSize:    10 * 1024 * 1024,
		UploadTimeout:    time.Minute,
	}

	server := httptest.NewServer(router.New(cfg, middleware.NewAuthMiddleware(tokens, users), router.Handlers{
		User:   handler.NewUserHandler(users, staging, cfg.MaxUploadSize, false),
		Video:  handler.NewVideoHandler(videos, staging, cfg.MaxUploadSize),
		Health: handler.NewHealthHandler(db),
	}))
	t.Cleanup(server.Close)
	return server
}

// newClient returns a client that keeps session cookies between calls.
func newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

type filePart struct {
	field    string
	filename string
	content  []byte
}

func doMultipart(t *testing.T, client *http.Client, method string, url string, values map[string]string, files ...filePart) (*http.Response, envelope) {
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

	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return doRequest(t, client, req)
}

func doJSON(t *testing.T, client *http.Client, method string, url string, payload any) (*http.Response, envelope) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return doRequest(t, client, req)
}

func doRequest(t *testing.T, client *http.Client, req *http.Request) (*http.Response, envelope) {
	t.Helper()

	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var parsed envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

type account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

// registerAndLogin creates a fresh account and leaves its session cookies in
// the client's jar.
func registerAndLogin(t *testing.T, server *httptest.Server, client *http.Client) (account, string) {
	t.Helper()

	suffix := uuid.NewString()[:8]
	username := "user" + suffix
	password := "Sup3r-secret"

	resp, body := doMultipart(t, client, http.MethodPost, server.URL+"/api/v1/users/register", map[string]string{
		"fullName": "Test User",
		"email":    username + "@example.com",
		"username": username,
		"password": password,
	}, filePart{field: "avatar", filename: "avatar.png", content: pngBytes(t)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, body.Success)

	var created account
	require.NoError(t, json.Unmarshal(body.Data, &created))
	require.Equal(t, username, created.Username)

	resp, body = doJSON(t, client, http.MethodPost, server.URL+"/api/v1/users/login", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login struct {
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &login))
	require.NotEmpty(t, login.RefreshToken)

	return created, password
}
