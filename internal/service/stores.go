package service

import (
	"context"

	"go-vidtube/internal/media"
	"go-vidtube/internal/model"
)

type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByUsernameOrEmail(ctx context.Context, username string, email string) (model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error)
	Create(ctx context.Context, u model.User) error
	UpdateAccount(ctx context.Context, id string, fullName string, email string) (model.User, error)
	UpdateAvatar(ctx context.Context, id string, url string) (model.User, error)
	UpdateCoverImage(ctx context.Context, id string, url string) (model.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

// TokenStore holds the single live refresh token of each user.
type TokenStore interface {
	Store(ctx context.Context, userID string, token string) error
	// Swap replaces presented with next only if presented is still the
	// stored token, reporting whether it did.
	Swap(ctx context.Context, userID string, presented string, next string) (bool, error)
	Revoke(ctx context.Context, userID string) error
}

type VideoStore interface {
	Create(ctx context.Context, v model.Video) error
	FindByID(ctx context.Context, id string) (model.Video, error)
	List(ctx context.Context, filter model.VideoFilter) ([]model.Video, int64, error)
	Update(ctx context.Context, id string, title *string, description *string, thumbnail string) (model.Video, error)
	SetPublished(ctx context.Context, id string, published bool) (model.Video, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// MediaHost turns a staged local file into a durable URL.
type MediaHost interface {
	Upload(ctx context.Context, localPath string) (media.Asset, error)
	Delete(ctx context.Context, assetURL string) error
}

// VideoCache fills are fenced: Fill only stores v if Delete has not run for
// that video since Fence returned.
type VideoCache interface {
	Get(ctx context.Context, id string) (model.Video, bool, error)
	Fence(ctx context.Context, id string) (int64, error)
	Fill(ctx context.Context, v model.Video, fence int64) (bool, error)
	Delete(ctx context.Context, id string) error
}
