package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// File is an uploaded object.
type File struct {
	URL      string
	PublicID string
}

type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStorage(cloudinaryURL string) (*CloudinaryStorage, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("cloudinary URL is required")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld}, nil
}

// Upload stores data as a raw asset so PDFs are served byte for byte.
func (s *CloudinaryStorage) Upload(ctx context.Context, data []byte, folder, filename string) (*File, error) {
	publicID := strings.TrimSuffix(filename, filepath.Ext(filename))

	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     publicID,
		Folder:       folder,
		ResourceType: "raw",
		Overwrite:    api.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("upload %s: %s", filename, result.Error.Message)
	}

	url := result.SecureURL
	if url == "" {
		url = forceHTTPS(result.URL)
	}
	return &File{URL: url, PublicID: result.PublicID}, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "raw",
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", publicID, err)
	}
	return nil
}

func forceHTTPS(url string) string {
	if strings.HasPrefix(url, "http://") {
		return "https://" + strings.TrimPrefix(url, "http://")
	}
	return url
}
