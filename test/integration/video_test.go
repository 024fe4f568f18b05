//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type videoDoc struct {
	ID          string  `json:"id"`
	Owner       string  `json:"owner"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	VideoFile   string  `json:"videoFile"`
	Duration    float64 `json:"duration"`
	IsPublished bool    `json:"isPublished"`
}

func TestVideoLifecycle(t *testing.T) {
	server := newServer(t)
	client := newClient(t)

	owner, _ := registerAndLogin(t, server, client)

	resp, body := doMultipart(t, client, http.MethodPost, server.URL+"/api/v1/videos", map[string]string{
		"title":       "First upload",
		"description": "hello",
	},
		filePart{field: "videoFile", filename: "clip.mp4", content: make([]byte, 64)},
		filePart{field: "thumbnail", filename: "thumb.png", content: pngBytes(t)},
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var video videoDoc
	require.NoError(t, json.Unmarshal(body.Data, &video))
	require.Equal(t, owner.ID, video.Owner)
	require.Equal(t, 12.5, video.Duration)
	require.True(t, video.IsPublished)

	anonymous := newClient(t)
	resp, _ = doJSON(t, anonymous, http.MethodGet, server.URL+"/api/v1/videos/"+video.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, anonymous, http.MethodGet, server.URL+"/api/v1/videos?userId="+owner.ID+"&sortBy=title&sortType=asc", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		TotalVideos int64      `json:"totalVideos"`
		Results     []videoDoc `json:"results"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &page))
	require.EqualValues(t, 1, page.TotalVideos)
	require.Len(t, page.Results, 1)

	resp, body = doJSON(t, client, http.MethodPatch, server.URL+"/api/v1/videos/"+video.ID, map[string]string{
		"title": "Renamed",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated videoDoc
	require.NoError(t, json.Unmarshal(body.Data, &updated))
	require.Equal(t, "Renamed", updated.Title)
	require.Equal(t, "hello", updated.Description)

	resp, body = doJSON(t, client, http.MethodPatch, server.URL+"/api/v1/videos/"+video.ID+"/publish", map[string]bool{
		"isPublished": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body.Data, &updated))
	require.False(t, updated.IsPublished)

	resp, body = doJSON(t, client, http.MethodDelete, server.URL+"/api/v1/videos/"+video.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &deleted))
	require.EqualValues(t, 1, deleted.DeletedCount)

	resp, _ = doJSON(t, anonymous, http.MethodGet, server.URL+"/api/v1/videos/"+video.ID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVideoListRejectsBadQuery(t *testing.T) {
	server := newServer(t)

	resp, body := doJSON(t, newClient(t), http.MethodGet, server.URL+"/api/v1/videos?sortBy=password", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.False(t, body.Success)
}
