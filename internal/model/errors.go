package model

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username or email already exists")
	ErrVideoNotFound = errors.New("video not found")

	// ErrUploadFailed is returned by the media host when an asset could not be stored.
	ErrUploadFailed = errors.New("upload failed")
)
