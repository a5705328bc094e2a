package mediaservice

import (
	"context"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/mock"
)

type MockImageHost struct {
	mock.Mock
}

func (m *MockImageHost) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	args := m.Called(file, params)
	res, _ := args.Get(0).(*uploader.UploadResult)
	return res, args.Error(1)
}

func (m *MockImageHost) Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	args := m.Called(params)
	res, _ := args.Get(0).(*uploader.DestroyResult)
	return res, args.Error(1)
}

// MockMedia stands in for a MediaService in the tests of its callers.
type MockMedia struct {
	mock.Mock
}

func (m *MockMedia) Upload(ctx context.Context, localPath string) (string, error) {
	args := m.Called(localPath)
	return args.String(0), args.Error(1)
}

func (m *MockMedia) Delete(ctx context.Context, remoteURL string) {
	m.Called(remoteURL)
}
