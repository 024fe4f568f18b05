package model

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type UpdateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type TogglePublishRequest struct {
	IsPublished *bool `json:"isPublished"`
}

// RegisterInput is built by the handler from the multipart form; the paths
// point at staged local files.
type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

type PublishVideoInput struct {
	Title         string
	Description   string
	VideoPath     string
	ThumbnailPath string
}

// UpdateVideoInput leaves a field untouched when its pointer is nil.
type UpdateVideoInput struct {
	Title         *string
	Description   *string
	ThumbnailPath string
}

// VideoListQuery holds the raw query-string values of GET /videos.
type VideoListQuery struct {
	Page     string
	Limit    string
	Query    string
	SortBy   string
	SortType string
	UserID   string
}
