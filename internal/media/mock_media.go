package media

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockHost struct {
	mock.Mock
}

func (m *MockHost) Upload(ctx context.Context, localPath string) (Asset, error) {
	args := m.Called(ctx, localPath)
	return args.Get(0).(Asset), args.Error(1)
}

func (m *MockHost) Delete(ctx context.Context, assetURL string) error {
	args := m.Called(ctx, assetURL)
	return args.Error(0)
}
