package service

import (
	"context"
	"log/slog"

	"go-vidtube/internal/media"
	"go-vidtube/internal/metrics"
)

func upload(ctx context.Context, host MediaHost, localPath string) (media.Asset, error) {
	asset, err := host.Upload(ctx, localPath)
	metrics.ObserveUpload(err)
	if err != nil {
		slog.Error("media upload failed", "path", localPath, "error", err)
		return media.Asset{}, err
	}
	if asset.URL == "" {
		slog.Error("media host returned no url", "path", localPath)
		return media.Asset{}, errEmptyAsset
	}
	return asset, nil
}

// discard removes assets that were uploaded for an operation that then
// failed. It keeps going after a cancelled request.
func discard(ctx context.Context, host MediaHost, urls ...string) {
	ctx = context.WithoutCancel(ctx)
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := host.Delete(ctx, url); err != nil {
			slog.Warn("failed to delete orphaned media", "url", url, "error", err)
		}
	}
}
