package model

import "time"

type Video struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VideoFilter is the declarative filter/sort/paginate input of a listing.
// SortBy is already mapped to a known field name; an empty SortBy keeps
// creation order.
type VideoFilter struct {
	Page     int
	Limit    int
	Query    string
	OwnerID  string
	SortBy   string
	SortDesc bool
}

func (f VideoFilter) Skip() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

type VideoPage struct {
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
	TotalVideos int64   `json:"totalVideos"`
	Results     []Video `json:"results"`
}

type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}
