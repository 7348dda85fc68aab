package assets

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// uploadAPI is the part of the Cloudinary upload API the store uses.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStore keeps assets in a Cloudinary folder. References are the
// secure delivery URLs returned by the upload.
type CloudinaryStore struct {
	api    uploadAPI
	folder string
	logger *log.Logger
}

func NewCloudinaryStore(cloudinaryURL, folder string, logger *log.Logger) (*CloudinaryStore, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("cloudinary URL is required")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return newCloudinaryStore(&cld.Upload, folder, logger), nil
}

func newCloudinaryStore(api uploadAPI, folder string, logger *log.Logger) *CloudinaryStore {
	if logger == nil {
		logger = log.Default()
	}
	return &CloudinaryStore{api: api, folder: folder, logger: logger}
}

func (s *CloudinaryStore) Store(ctx context.Context, field string, r io.Reader, originalName string) (string, error) {
	name := NewAssetName(field, originalName)
	publicID := path.Join(s.folder, strings.TrimSuffix(name, filepath.Ext(name)))

	overwrite := false
	result, err := s.api.Upload(ctx, r, uploader.UploadParams{
		PublicID:     publicID,
		Overwrite:    &overwrite,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAssetWrite, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("%w: %s", ErrAssetWrite, result.Error.Message)
	}

	ref := result.SecureURL
	if ref == "" {
		ref = strings.Replace(result.URL, "http://", "https://", 1)
	}
	return ref, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, ref string) error {
	publicID := PublicIDFromURL(ref)
	if publicID == "" {
		return fmt.Errorf("asset reference %q is not a Cloudinary URL", ref)
	}

	result, err := s.api.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("delete asset %s: %w", ref, err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("delete asset %s: %s", ref, result.Error.Message)
	}
	if result.Result == "not found" {
		s.logger.Printf("asset %s already gone", ref)
		return nil
	}
	s.logger.Printf("deleted asset %s", ref)
	return nil
}

// PublicIDFromURL extracts the public ID from a delivery URL such as
// https://res.cloudinary.com/<cloud>/image/upload/v123/catalog/image-1-2.png.
func PublicIDFromURL(ref string) string {
	_, rest, ok := strings.Cut(ref, "/upload/")
	if !ok || rest == "" {
		return ""
	}
	if version, after, found := strings.Cut(rest, "/"); found && isVersion(version) {
		rest = after
	}
	return strings.TrimSuffix(rest, path.Ext(rest))
}

func isVersion(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, c := range segment[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
