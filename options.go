// Package s3task provides functional options for configuring client behavior.
// These options follow the functional options pattern for clean, composable configuration.
package s3task

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"go.uber.org/zap"

	"github.com/buildforge/s3task/tasktypes"
)

// WithRegion sets the AWS region for bucket operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) tasktypes.Option {
	return func(c *tasktypes.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) tasktypes.Option {
	return func(c *tasktypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for many S3-compatible services.
func WithForcePathStyle(forcePathStyle bool) tasktypes.Option {
	return func(c *tasktypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithMaxRetries sets the maximum number of retry attempts the SDK applies to
// failed requests. The task layer itself never retries a failed transfer.
func WithMaxRetries(maxRetries int) tasktypes.Option {
	return func(c *tasktypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual S3 requests.
// Default is no timeout (0).
func WithTimeout(timeout time.Duration) tasktypes.Option {
	return func(c *tasktypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithStaticCredentials uses fixed credentials instead of the default chain.
// Pass an empty session token for long-lived access keys.
func WithStaticCredentials(accessKey, secretKey, sessionToken string) tasktypes.Option {
	return func(c *tasktypes.ClientConfig) {
		c.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, sessionToken),
		)
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) tasktypes.Option {
	return func(c *tasktypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithFilesystem sets a custom filesystem implementation for destination writes.
// This allows using in-memory filesystems for testing.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) tasktypes.Option {
	return func(c *tasktypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the logger that receives the per-transfer start and end
// lines. Defaults to a no-op logger.
func WithLogger(logger *zap.SugaredLogger) tasktypes.Option {
	return func(c *tasktypes.ClientConfig) {
		c.Logger = logger
	}
}
