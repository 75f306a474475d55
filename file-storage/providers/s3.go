package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	filestorage "github.com/galaplate/fixture/file-storage"
	fsconfig "github.com/galaplate/fixture/file-storage/config"
)

// S3Storage implements Provider for AWS S3 and S3 compatible stores
type S3Storage struct {
	client   *s3.Client
	uploader *manager.Uploader
	config   fsconfig.S3Config
}

var _ filestorage.Provider = (*S3Storage)(nil)

// NewS3Client creates an S3 client with static credentials from cfg
func NewS3Client(cfg fsconfig.S3Config) *s3.Client {
	return s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		UsePathStyle: cfg.UsePathStyle,
	}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
}

// NewS3Storage creates a new S3 storage provider
func NewS3Storage(client *s3.Client, cfg fsconfig.S3Config) *S3Storage {
	return &S3Storage{
		client:   client,
		uploader: manager.NewUploader(client),
		config:   cfg,
	}
}

// ObjectKey joins the configured prefix and key
func (s *S3Storage) ObjectKey(key string) string {
	prefix := strings.Trim(s.config.PathPrefix, "/")
	key = strings.TrimLeft(key, "/")
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}

// URL returns the public link for an object key
func (s *S3Storage) URL(key string) string {
	return strings.TrimRight(s.config.BaseURL, "/") + "/" + s.ObjectKey(key)
}

// Put uploads data to S3
func (s *S3Storage) Put(ctx context.Context, key string, data []byte, contentType string) (filestorage.Object, error) {
	if key == "" {
		return filestorage.Object{}, fmt.Errorf("invalid_file_path")
	}

	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(s.ObjectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return filestorage.Object{}, fmt.Errorf("s3 upload %s: %w", key, err)
	}

	location := out.Location
	if location == "" {
		location = s.URL(key)
	}

	return filestorage.Object{
		Key:         key,
		Path:        location,
		Size:        int64(len(data)),
		ContentType: contentType,
		StorageType: s.Name(),
	}, nil
}

// Get downloads an object from S3
func (s *S3Storage) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(s.ObjectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, filestorage.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// Delete removes an object from S3
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("invalid_file_path")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(s.ObjectKey(key)),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

// Exists sends a HEAD request for the object
func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(s.ObjectKey(key)),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("s3 head %s: %w", key, err)
}

// Name returns the provider name
func (s *S3Storage) Name() string {
	return "s3"
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
