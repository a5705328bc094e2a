package mediaservice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrUploadFailed = errors.New("image upload failed")

// ImageHost is the subset of the Cloudinary upload API the service needs.
type ImageHost interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type MediaService struct {
	host   ImageHost
	folder string
	logger *slog.Logger
}
