package blob

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds connection settings for the object store.
type S3Config struct {
	// Endpoint is the service host, without scheme (e.g.
	// "ams3.digitaloceanspaces.com").
	Endpoint string

	// Region of the bucket.
	Region string

	// Bucket to upload into.
	Bucket string

	AccessKey string
	SecretKey string

	// PublicBaseURL is the base under which uploaded keys are publicly
	// reachable, e.g. "https://bucket.region.example.com". When empty it
	// is derived as https://{bucket}.{endpoint}.
	PublicBaseURL string
}

// Validate checks that the config can produce a working client.
func (c *S3Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("s3 endpoint is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("s3 bucket is required")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return fmt.Errorf("s3 credentials are required")
	}
	return nil
}

func (c *S3Config) publicBase() string {
	if c.PublicBaseURL != "" {
		return strings.TrimSuffix(c.PublicBaseURL, "/")
	}
	return fmt.Sprintf("https://%s.%s", c.Bucket, c.Endpoint)
}

// S3Uploader implements Uploader against any S3-compatible store.
type S3Uploader struct {
	client *minio.Client
	cfg    S3Config
}

// NewS3Uploader builds an Uploader from the config.
func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: true,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &S3Uploader{client: client, cfg: cfg}, nil
}

// Upload puts the file under key with a public-read ACL and a content
// type derived from the file extension, and returns the public URL.
func (u *S3Uploader) Upload(ctx context.Context, localPath, key string) (string, error) {
	opts := minio.PutObjectOptions{
		ContentType:  ContentTypeFor(localPath),
		UserMetadata: map[string]string{"x-amz-acl": "public-read"},
	}

	if _, err := u.client.FPutObject(ctx, u.cfg.Bucket, key, localPath, opts); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return u.cfg.publicBase() + "/" + key, nil
}
