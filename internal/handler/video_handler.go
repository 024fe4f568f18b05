package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-vidtube/internal/model"
	"go-vidtube/internal/service"
	"go-vidtube/internal/storage"
)

type VideoHandler struct {
	videos *service.VideoService
	forms  *formParser
}

func NewVideoHandler(videos *service.VideoService, staging *storage.Staging, maxUploadSize int64) *VideoHandler {
	return &VideoHandler{
		videos: videos,
		forms:  &formParser{staging: staging, maxBytes: maxUploadSize},
	}
}

func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}

	form, err := h.forms.parse(w, r, "videoFile", "thumbnail")
	if err != nil {
		return err
	}
	defer h.forms.cleanup(form)

	video, err := h.videos.Publish(r.Context(), user.ID, model.PublishVideoInput{
		Title:         form.Values["title"],
		Description:   form.Values["description"],
		VideoPath:     form.Files["videoFile"],
		ThumbnailPath: form.Files["thumbnail"],
	})
	if err != nil {
		return err
	}

	return writeSuccess(w, http.StatusCreated, video, "Video published successfully")
}

func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	page, err := h.videos.List(r.Context(), model.VideoListQuery{
		Page:     q.Get("page"),
		Limit:    q.Get("limit"),
		Query:    q.Get("query"),
		SortBy:   q.Get("sortBy"),
		SortType: q.Get("sortType"),
		UserID:   q.Get("userId"),
	})
	if err != nil {
		return err
	}

	return writeSuccess(w, http.StatusOK, page, "Videos fetched successfully")
}

func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) error {
	video, err := h.videos.Get(r.Context(), chi.URLParam(r, "videoId"))
	if err != nil {
		return err
	}

	return writeSuccess(w, http.StatusOK, video, "Video fetched successfully")
}

// Update accepts either a multipart form (optionally carrying a new
// thumbnail) or a JSON body with title and description.
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}

	var in model.UpdateVideoInput

	if isMultipart(r) {
		form, err := h.forms.parse(w, r, "thumbnail")
		if err != nil {
			return err
		}
		defer h.forms.cleanup(form)

		if form.has("title") {
			title := form.Values["title"]
			in.Title = &title
		}
		if form.has("description") {
			description := form.Values["description"]
			in.Description = &description
		}
		in.ThumbnailPath = form.Files["thumbnail"]
	} else {
		var body struct {
			Title       *string `json:"title"`
			Description *string `json:"description"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			return err
		}
		in.Title = body.Title
		in.Description = body.Description
	}

	video, err := h.videos.Update(r.Context(), user.ID, chi.URLParam(r, "videoId"), in)
	if err != nil {
		return err
	}

	return writeSuccess(w, http.StatusOK, video, "Video updated successfully")
}

func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}

	result, err := h.videos.Delete(r.Context(), user.ID, chi.URLParam(r, "videoId"))
	if err != nil {
		return err
	}

	return writeSuccess(w, http.StatusOK, result, "Video deleted successfully")
}

func (h *VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}

	var req model.TogglePublishRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	video, err := h.videos.SetPublished(r.Context(), user.ID, chi.URLParam(r, "videoId"), req.IsPublished)
	if err != nil {
		return err
	}

	return writeSuccess(w, http.StatusOK, video, "Video publish status updated successfully")
}
