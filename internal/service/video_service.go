package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go-vidtube/internal/event"
	"go-vidtube/internal/media"
	"go-vidtube/internal/metrics"
	"go-vidtube/internal/model"
	"go-vidtube/internal/repository"
	"go-vidtube/internal/util"
	"go-vidtube/pkg/apierror"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type VideoService struct {
	videos VideoStore
	media  MediaHost
	cache  VideoCache
	bus    event.Bus
}

// NewVideoService accepts a nil cache, in which case every read goes to the
// store.
func NewVideoService(videos VideoStore, host MediaHost, cache VideoCache, bus event.Bus) *VideoService {
	return &VideoService{videos: videos, media: host, cache: cache, bus: bus}
}

func (s *VideoService) Publish(ctx context.Context, ownerID string, in model.PublishVideoInput) (model.Video, error) {
	if err := util.RequireFields(
		util.Field{Name: "title", Value: in.Title},
		util.Field{Name: "description", Value: in.Description},
	); err != nil {
		return model.Video{}, err
	}

	var missing []string
	if in.VideoPath == "" {
		missing = append(missing, "videoFile is required")
	}
	if in.ThumbnailPath == "" {
		missing = append(missing, "thumbnail is required")
	}
	if len(missing) > 0 {
		return model.Video{}, apierror.BadRequest("Thumbnail and video file are required", missing...)
	}

	if err := util.EnsureVideo(in.VideoPath, "videoFile"); err != nil {
		return model.Video{}, err
	}
	if _, err := util.InspectImage(in.ThumbnailPath, "thumbnail"); err != nil {
		return model.Video{}, err
	}

	var videoAsset, thumbAsset media.Asset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		asset, err := upload(gctx, s.media, in.VideoPath)
		videoAsset = asset
		return err
	})
	g.Go(func() error {
		asset, err := upload(gctx, s.media, in.ThumbnailPath)
		thumbAsset = asset
		return err
	})
	if err := g.Wait(); err != nil {
		discard(ctx, s.media, videoAsset.URL, thumbAsset.URL)
		return model.Video{}, apierror.BadRequest("Problem occurred while uploading", "videoFile", "thumbnail").WithCause(err)
	}

	now := time.Now().UTC()
	video := model.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		VideoFile:   videoAsset.URL,
		Thumbnail:   thumbAsset.URL,
		Duration:    videoAsset.Duration,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.videos.Create(ctx, video); err != nil {
		discard(ctx, s.media, videoAsset.URL, thumbAsset.URL)
		if errors.Is(err, model.ErrUserNotFound) {
			return model.Video{}, apierror.NotFound("Owner does not exist")
		}
		return model.Video{}, apierror.Internal("Something went wrong while publishing the video", err)
	}

	created, err := s.videos.FindByID(ctx, video.ID)
	if err != nil {
		return model.Video{}, apierror.Internal("Something went wrong while publishing the video", err)
	}

	slog.Info("video published", "video_id", created.ID, "owner_id", ownerID, "duration_s", created.Duration)
	s.bus.Publish(event.New(event.TypeVideoPublished, ownerID, map[string]string{"videoId": created.ID}))

	return created, nil
}

func (s *VideoService) List(ctx context.Context, q model.VideoListQuery) (model.VideoPage, error) {
	filter, err := parseVideoListQuery(q)
	if err != nil {
		return model.VideoPage{}, err
	}

	videos, total, err := s.videos.List(ctx, filter)
	if err != nil {
		return model.VideoPage{}, apierror.Internal("Something went wrong while fetching videos", err)
	}
	if videos == nil {
		videos = []model.Video{}
	}

	return model.VideoPage{
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalVideos: total,
		Results:     videos,
	}, nil
}

func parseVideoListQuery(q model.VideoListQuery) (model.VideoFilter, error) {
	filter := model.VideoFilter{
		Page:  defaultPage,
		Limit: defaultLimit,
		Query: strings.TrimSpace(q.Query),
	}

	if raw := strings.TrimSpace(q.Page); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return model.VideoFilter{}, apierror.BadRequest("page must be a positive integer", "page")
		}
		filter.Page = page
	}

	if raw := strings.TrimSpace(q.Limit); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return model.VideoFilter{}, apierror.BadRequest("limit must be a positive integer", "limit")
		}
		filter.Limit = min(limit, maxLimit)
	}

	// The row offset (page-1)*limit must fit in an int.
	if filter.Page > math.MaxInt/filter.Limit {
		return model.VideoFilter{}, apierror.BadRequest("page is out of range", "page")
	}

	if raw := strings.TrimSpace(q.UserID); raw != "" {
		ownerID, err := util.ParseID(raw, "userId")
		if err != nil {
			return model.VideoFilter{}, err
		}
		filter.OwnerID = ownerID
	}

	if sortBy := strings.TrimSpace(q.SortBy); sortBy != "" {
		if !repository.IsSortableVideoField(sortBy) {
			return model.VideoFilter{}, apierror.BadRequest("sortBy is not a sortable field", "sortBy")
		}
		filter.SortBy = sortBy

		switch strings.ToLower(strings.TrimSpace(q.SortType)) {
		case "", "desc":
			filter.SortDesc = true
		case "asc":
			filter.SortDesc = false
		default:
			return model.VideoFilter{}, apierror.BadRequest("sortType must be asc or desc", "sortType")
		}
	}

	return filter, nil
}

func (s *VideoService) Get(ctx context.Context, rawID string) (model.Video, error) {
	id, err := util.ParseID(rawID, "videoId")
	if err != nil {
		return model.Video{}, err
	}

	var fence int64
	fill := false
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, id)
		switch {
		case err != nil:
			metrics.VideoCacheLookups.WithLabelValues("error").Inc()
			slog.Warn("video cache read failed", "video_id", id, "error", err)
		case ok:
			metrics.VideoCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.VideoCacheLookups.WithLabelValues("miss").Inc()
		}

		if fence, err = s.cache.Fence(ctx, id); err != nil {
			slog.Warn("video cache fence failed", "video_id", id, "error", err)
		} else {
			fill = true
		}
	}

	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return model.Video{}, mapVideoError(err, "Something went wrong while fetching the video")
	}

	if fill {
		stored, err := s.cache.Fill(ctx, video, fence)
		switch {
		case err != nil:
			slog.Warn("video cache write failed", "video_id", id, "error", err)
		case !stored:
			slog.Debug("video cache fill superseded", "video_id", id)
		}
	}

	return video, nil
}

func (s *VideoService) Update(ctx context.Context, actorID string, rawID string, in model.UpdateVideoInput) (model.Video, error) {
	id, err := util.ParseID(rawID, "videoId")
	if err != nil {
		return model.Video{}, err
	}

	title := trimmedOrNil(in.Title)
	description := trimmedOrNil(in.Description)
	if title == nil && description == nil {
		return model.Video{}, apierror.BadRequest("title or description is required", "title", "description")
	}

	var previousThumbnail, thumbnailURL string
	if in.ThumbnailPath != "" {
		if _, err := util.InspectImage(in.ThumbnailPath, "thumbnail"); err != nil {
			return model.Video{}, err
		}

		current, err := s.videos.FindByID(ctx, id)
		if err != nil {
			return model.Video{}, mapVideoError(err, "Something went wrong while updating the video")
		}
		previousThumbnail = current.Thumbnail

		asset, err := upload(ctx, s.media, in.ThumbnailPath)
		if err != nil {
			return model.Video{}, apierror.BadRequest("Error while uploading thumbnail", "thumbnail").WithCause(err)
		}
		thumbnailURL = asset.URL
	}

	video, err := s.videos.Update(ctx, id, title, description, thumbnailURL)
	if err != nil {
		discard(ctx, s.media, thumbnailURL)
		return model.Video{}, mapVideoError(err, "Something went wrong while updating the video")
	}

	if thumbnailURL != "" && previousThumbnail != "" && previousThumbnail != thumbnailURL {
		discard(ctx, s.media, previousThumbnail)
	}

	s.evict(ctx, id)
	s.bus.Publish(event.New(event.TypeVideoUpdated, actorID, map[string]string{"videoId": id}))

	return video, nil
}

// Delete reports how many records went away; deleting an unknown id is not an
// error.
func (s *VideoService) Delete(ctx context.Context, actorID string, rawID string) (model.DeleteResult, error) {
	id, err := util.ParseID(rawID, "videoId")
	if err != nil {
		return model.DeleteResult{}, err
	}

	current, err := s.videos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrVideoNotFound) {
			return model.DeleteResult{DeletedCount: 0}, nil
		}
		return model.DeleteResult{}, apierror.Internal("Something went wrong while deleting the video", err)
	}

	deleted, err := s.videos.Delete(ctx, id)
	if err != nil {
		return model.DeleteResult{}, apierror.Internal("Something went wrong while deleting the video", err)
	}

	s.evict(ctx, id)

	if deleted > 0 {
		discard(ctx, s.media, current.VideoFile, current.Thumbnail)
		slog.Info("video deleted", "video_id", id, "actor_id", actorID)
		s.bus.Publish(event.New(event.TypeVideoDeleted, actorID, map[string]string{"videoId": id}))
	}

	return model.DeleteResult{DeletedCount: deleted}, nil
}

func (s *VideoService) SetPublished(ctx context.Context, actorID string, rawID string, published *bool) (model.Video, error) {
	id, err := util.ParseID(rawID, "videoId")
	if err != nil {
		return model.Video{}, err
	}
	if published == nil {
		return model.Video{}, apierror.BadRequest("isPublished must be true or false", "isPublished")
	}

	video, err := s.videos.SetPublished(ctx, id, *published)
	if err != nil {
		return model.Video{}, mapVideoError(err, "Something went wrong while updating the video")
	}

	s.evict(ctx, id)
	s.bus.Publish(event.New(event.TypeVideoPublishToggled, actorID, map[string]any{
		"videoId":     id,
		"isPublished": video.IsPublished,
	}))

	return video, nil
}

func (s *VideoService) evict(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		slog.Warn("video cache eviction failed", "video_id", id, "error", err)
	}
}

func mapVideoError(err error, internalMessage string) error {
	if errors.Is(err, model.ErrVideoNotFound) {
		return apierror.NotFound("Video not found")
	}
	return apierror.Internal(internalMessage, err)
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
