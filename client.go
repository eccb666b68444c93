// Package s3task provides client initialization and configuration.
//
// The Client carries the shared bucket/credential/logging context for the
// task operations (download, upload, delete), injected into each operation
// instead of inherited.
package s3task

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"go.uber.org/zap"

	"github.com/buildforge/s3task/errors"
	"github.com/buildforge/s3task/internal/s3api"
	"github.com/buildforge/s3task/internal/validation"
	"github.com/buildforge/s3task/tasktypes"
)

// Client executes declarative S3 transfer tasks. It is safe for sequential
// reuse across task invocations; each task runs single-threaded.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// config holds the AWS configuration
	config aws.Config

	// fs is the filesystem abstraction for destination file operations
	fs fs.Filesystem

	// log receives the per-transfer start/end lines
	log *zap.SugaredLogger
}

// New creates a new client with the provided options.
// It loads AWS credentials using the default credential chain
// and applies the specified configuration options.
//
// Example:
//
//	client, err := s3task.New(
//	    s3task.WithRegion("us-west-2"),
//	    s3task.WithLogger(logger),
//	)
func New(opts ...tasktypes.Option) (*Client, error) {
	clientCfg := &tasktypes.ClientConfig{
		MaxRetries: 3, // Default retry count
	}

	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		var loadOpts []func(*config.LoadOptions) error
		if clientCfg.Credentials != nil {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(clientCfg.Credentials))
		}
		cfg, err = config.LoadDefaultConfig(context.Background(), loadOpts...)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1" // AWS default region
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if clientCfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	var filesystem fs.Filesystem
	if clientCfg.Filesystem != nil {
		filesystem = clientCfg.Filesystem
	} else {
		// Default to OS filesystem rooted at /
		filesystem = billy.NewOSFS("/")
	}

	logger := clientCfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Client{
		s3Client: s3Client,
		config:   cfg,
		fs:       filesystem,
		log:      logger,
	}, nil
}

// NewWithClient creates a new client with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API) *Client {
	return &Client{
		s3Client: s3Client,
		config:   aws.Config{},
		fs:       billy.NewOSFS("/"),
		log:      zap.NewNop().Sugar(),
	}
}

// SetFilesystem sets the filesystem implementation for destination writes.
// This is useful for testing with in-memory filesystems.
func (c *Client) SetFilesystem(filesystem fs.Filesystem) {
	c.fs = filesystem
}

// SetLogger sets the logger that receives per-transfer log lines.
func (c *Client) SetLogger(logger *zap.SugaredLogger) {
	c.log = logger
}

// Exists reports whether an object is present, without fetching its content.
// Build scripts use this to guard conditional download steps.
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return false, err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return false, err
	}

	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, errors.NewError("exists", err).WithBucket(bucket).WithKey(key)
	}
	return true, nil
}

// isNotFound checks if an error indicates a missing object or bucket.
func isNotFound(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "NotFound") ||
		strings.Contains(errStr, "NoSuchKey") ||
		strings.Contains(errStr, "404")
}
