package cache

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-vidtube/internal/model"
)

type MockVideoCache struct {
	mock.Mock
}

func (m *MockVideoCache) Get(ctx context.Context, id string) (model.Video, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Video), args.Bool(1), args.Error(2)
}

func (m *MockVideoCache) Fence(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVideoCache) Fill(ctx context.Context, v model.Video, fence int64) (bool, error) {
	args := m.Called(ctx, v, fence)
	return args.Bool(0), args.Error(1)
}

func (m *MockVideoCache) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
