package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
)

// MaxImageSize is the largest decoded recipe image accepted.
const MaxImageSize = 5 << 20

const imageKeyPrefix = "recipes/images/"

var dataURIPattern = regexp.MustCompile(`^data:image/([a-zA-Z0-9.+-]+);base64,(.+)$`)

// ImageService decodes uploaded recipe images and hands them to an ImageStore
type ImageService struct {
	store ImageStore
}

// NewImageService creates a new ImageService instance
func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

// SaveDataURI decodes a "data:image/<ext>;base64,<payload>" string, stores it
// and returns the public URL.
func (s *ImageService) SaveDataURI(ctx context.Context, dataURI string) (string, error) {
	m := dataURIPattern.FindStringSubmatch(strings.TrimSpace(dataURI))
	if m == nil {
		return "", fieldError("image", "image must be a base64 data URI")
	}

	ext := strings.ToLower(m[1])
	if ext == "jpeg" {
		ext = "jpg"
	}
	if ext == "svg+xml" {
		return "", fieldError("image", "unsupported image type")
	}

	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", fieldError("image", "image payload is not valid base64")
	}
	if len(data) == 0 {
		return "", fieldError("image", "image is empty")
	}
	if len(data) > MaxImageSize {
		return "", fieldError("image", fmt.Sprintf("image exceeds %d bytes", MaxImageSize))
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fieldError("image", "payload is not an image")
	}

	key := imageKeyPrefix + uuid.NewString() + "." + ext
	url, err := s.store.Save(ctx, key, data, contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return url, nil
}

func (s *ImageService) Delete(ctx context.Context, url string) error {
	return s.store.Delete(ctx, url)
}

// S3ImageStore keeps images in an S3 bucket
type S3ImageStore struct {
	s3Config *config.S3Config
}

// NewS3ImageStore creates a new S3ImageStore instance
func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

func (s *S3ImageStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := s.publicURL(key)
	logging.Ctx(ctx).Debug().Str("url", publicURL).Msg("uploaded image to S3")
	return publicURL, nil
}

// Delete removes the object behind url. URLs from other buckets are ignored.
func (s *S3ImageStore) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicURL(""))
	if !ok || key == "" {
		return nil
	}
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (s *S3ImageStore) publicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key)
}

// LocalImageStore writes images below root and serves them from baseURL.
type LocalImageStore struct {
	root    string
	baseURL string
}

func NewLocalImageStore(root, baseURL string) *LocalImageStore {
	return &LocalImageStore{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *LocalImageStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	dest := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", err
	}
	return s.baseURL + "/" + key, nil
}

// Delete removes the file behind url. Missing files and foreign URLs are ignored.
func (s *LocalImageStore) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || key == "" {
		return nil
	}
	key = path.Clean("/" + key)[1:]
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
