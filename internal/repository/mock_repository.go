package repository

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-vidtube/internal/model"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsernameOrEmail(ctx context.Context, username string, email string) (model.User, error) {
	args := m.Called(ctx, username, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, u model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateAccount(ctx context.Context, id string, fullName string, email string) (model.User, error) {
	args := m.Called(ctx, id, fullName, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateAvatar(ctx context.Context, id string, url string) (model.User, error) {
	args := m.Called(ctx, id, url)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateCoverImage(ctx context.Context, id string, url string) (model.User, error) {
	args := m.Called(ctx, id, url)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Store(ctx context.Context, userID string, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

// Swap accepts either a bool or a func(ctx, userID, presented, next) bool as
// its first return value, the latter for stateful stores.
func (m *MockTokenRepository) Swap(ctx context.Context, userID string, presented string, next string) (bool, error) {
	args := m.Called(ctx, userID, presented, next)
	if fn, ok := args.Get(0).(func(context.Context, string, string, string) bool); ok {
		return fn(ctx, userID, presented, next), args.Error(1)
	}
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepository) Revoke(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockVideoRepository struct {
	mock.Mock
}

func (m *MockVideoRepository) Create(ctx context.Context, v model.Video) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVideoRepository) FindByID(ctx context.Context, id string) (model.Video, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Video), args.Error(1)
}

func (m *MockVideoRepository) List(ctx context.Context, filter model.VideoFilter) ([]model.Video, int64, error) {
	args := m.Called(ctx, filter)
	var videos []model.Video
	if v := args.Get(0); v != nil {
		videos = v.([]model.Video)
	}
	return videos, args.Get(1).(int64), args.Error(2)
}

func (m *MockVideoRepository) Update(ctx context.Context, id string, title *string, description *string, thumbnail string) (model.Video, error) {
	args := m.Called(ctx, id, title, description, thumbnail)
	return args.Get(0).(model.Video), args.Error(1)
}

func (m *MockVideoRepository) SetPublished(ctx context.Context, id string, published bool) (model.Video, error) {
	args := m.Called(ctx, id, published)
	return args.Get(0).(model.Video), args.Error(1)
}

func (m *MockVideoRepository) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}
