package client

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"
)

// ImageUpload stores an image on the CDN and returns the canonical HTTPS URL
// to embed in item documents.
func (c Client) ImageUpload(ctx context.Context, file io.Reader) (string, error) {
	if c.CDN == nil {
		return "", errors.New("ImageUpload: CDN client is not configured")
	}
	uploadResult, err := c.CDN.Upload.Upload(ctx, file, uploader.UploadParams{Folder: "consumerwise"})
	if err != nil {
		return "", errors.Wrap(err, "ImageUpload: error uploading image")
	}
	if uploadResult.Error.Message != "" {
		return "", errors.Errorf("ImageUpload: upload rejected: %s", uploadResult.Error.Message)
	}
	return uploadResult.SecureURL, nil
}
