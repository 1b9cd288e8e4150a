package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"
)

// regionWithoutConstraint is the only region where CreateBucket must omit
// the location constraint.
const regionWithoutConstraint = "us-east-1"

// Config configures the storage client.
type Config struct {
	// Region is used as the location constraint of created buckets.
	Region string

	// VisibilityTimeout bounds the read-after-write confirmation of an upload.
	// Default: 100 seconds.
	VisibilityTimeout time.Duration

	// VisibilityDelay is the minimum delay between visibility probes.
	// Default: 5 seconds.
	VisibilityDelay time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		VisibilityTimeout: 100 * time.Second,
		VisibilityDelay:   5 * time.Second,
	}
}

// Client stores deployment artifacts in S3.
type Client struct {
	api    S3API
	config Config
	logger *slog.Logger
}

// NewClient creates a storage client over the given S3 API.
func NewClient(api S3API, config Config, logger *slog.Logger) *Client {
	defaults := DefaultConfig()
	if config.VisibilityTimeout == 0 {
		config.VisibilityTimeout = defaults.VisibilityTimeout
	}
	if config.VisibilityDelay == 0 {
		config.VisibilityDelay = defaults.VisibilityDelay
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		api:    api,
		config: config,
		logger: logger.With("component", "storage"),
	}
}

// BucketExists reports whether the bucket exists. A missing bucket is not an
// error; any other failure (permissions, transport) is returned.
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if bucket == "" {
		return false, NewStorageError("HeadBucket", bucket, "", ErrInvalidInput)
	}

	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		if errors.Is(classify(err), ErrBucketNotFound) {
			c.logger.Debug("bucket does not exist", "bucket", bucket)
			return false, nil
		}
		return false, NewStorageError("HeadBucket", bucket, "", wrapClassified(err))
	}

	return true, nil
}

// CreateBucket creates the bucket in the configured region.
func (c *Client) CreateBucket(ctx context.Context, bucket string) error {
	if bucket == "" {
		return NewStorageError("CreateBucket", bucket, "", ErrInvalidInput)
	}

	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}
	if c.config.Region != "" && c.config.Region != regionWithoutConstraint {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(c.config.Region),
		}
	}

	if _, err := c.api.CreateBucket(ctx, input); err != nil {
		return NewStorageError("CreateBucket", bucket, "", wrapClassified(err))
	}

	c.logger.Info("bucket created", "bucket", bucket, "region", c.config.Region)
	return nil
}

// UploadFile puts the file at path under bucket/key.
func (c *Client) UploadFile(ctx context.Context, bucket, key, path string) error {
	if bucket == "" || key == "" || path == "" {
		return NewStorageError("PutObject", bucket, key, ErrInvalidInput)
	}

	f, err := os.Open(path)
	if err != nil {
		return NewStorageError("PutObject", bucket, key, fmt.Errorf("open artifact: %w", err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return NewStorageError("PutObject", bucket, key, fmt.Errorf("stat artifact: %w", err))
	}

	contentType := "application/octet-stream"
	if mtype, err := mimetype.DetectFile(path); err == nil {
		contentType = mtype.String()
	}

	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return NewStorageError("PutObject", bucket, key, wrapClassified(err))
	}

	c.logger.Info("artifact uploaded",
		"bucket", bucket,
		"key", key,
		"size", info.Size(),
		"content_type", contentType,
	)
	return nil
}

// WaitVisible blocks until bucket/key is readable or the visibility timeout elapses.
func (c *Client) WaitVisible(ctx context.Context, bucket, key string) error {
	waiter := s3.NewObjectExistsWaiter(c.api, func(o *s3.ObjectExistsWaiterOptions) {
		o.MinDelay = c.config.VisibilityDelay
		if o.MaxDelay < o.MinDelay {
			o.MaxDelay = o.MinDelay
		}
	})

	err := waiter.Wait(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, c.config.VisibilityTimeout)
	if err != nil {
		return NewStorageError("HeadObject", bucket, key, wrapClassified(err))
	}

	c.logger.Debug("artifact visible", "bucket", bucket, "key", key)
	return nil
}

// =============================================================================
// Error Classification
// =============================================================================

// classify maps AWS errors to package sentinels. It returns nil for errors
// that have no sentinel.
func classify(err error) error {
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &notFound) || errors.As(err, &noSuchBucket) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return ErrBucketNotFound
		case "AccessDenied", "Forbidden", "AllAccessDisabled":
			return ErrAccessDenied
		}
	}

	return nil
}

// wrapClassified keeps the original error in the chain and adds the sentinel
// when one applies.
func wrapClassified(err error) error {
	if sentinel := classify(err); sentinel != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}
