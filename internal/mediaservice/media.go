package mediaservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// NewCloudinaryHost returns the upload API of a Cloudinary account.
func NewCloudinaryHost(cloudName, apiKey, apiSecret string) (ImageHost, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("could not create cloudinary client: %w", err)
	}

	return &cld.Upload, nil
}

func NewMediaService(host ImageHost, folder string, logger *slog.Logger) *MediaService {
	return &MediaService{
		host:   host,
		folder: folder,
		logger: logger,
	}
}

// Upload sends the file at localPath to the image host and returns its secure URL.
// The local file is removed whether or not the upload succeeds.
func (s *MediaService) Upload(ctx context.Context, localPath string) (string, error) {
	defer s.removeLocal(localPath)

	if localPath == "" {
		return "", ErrUploadFailed
	}

	res, err := s.host.Upload(ctx, localPath, uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	if res == nil || res.SecureURL == "" {
		msg := "empty response"
		if res != nil && res.Error.Message != "" {
			msg = res.Error.Message
		}
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, msg)
	}

	return res.SecureURL, nil
}

// Delete removes a previously uploaded image. Failures are logged and never returned.
func (s *MediaService) Delete(ctx context.Context, remoteURL string) {
	if remoteURL == "" {
		return
	}

	publicID, err := s.PublicID(remoteURL)
	if err != nil {
		s.logger.Error("could not derive image public id", slog.String("url", remoteURL), slog.String("error", err.Error()))
		return
	}

	res, err := s.host.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		s.logger.Error("could not delete image", slog.String("public_id", publicID), slog.String("error", err.Error()))
		return
	}

	if res != nil && res.Error.Message != "" {
		s.logger.Error("could not delete image", slog.String("public_id", publicID), slog.String("error", res.Error.Message))
		return
	}

	s.logger.Info("image deleted", slog.String("public_id", publicID))
}

// PublicID maps a hosted image URL back to its public id: the upload folder
// followed by the file name without its extension.
func (s *MediaService) PublicID(remoteURL string) (string, error) {
	u, err := url.Parse(remoteURL)
	if err != nil {
		return "", err
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", errors.New("url has no file name")
	}

	name = strings.TrimSuffix(name, path.Ext(name))

	if s.folder == "" {
		return name, nil
	}

	return s.folder + "/" + name, nil
}

func (s *MediaService) removeLocal(localPath string) {
	if localPath == "" {
		return
	}

	if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Error("could not remove local file", slog.String("path", localPath), slog.String("error", err.Error()))
	}
}
