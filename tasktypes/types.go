// Package tasktypes provides shared type definitions for the s3task module.
package tasktypes

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"go.uber.org/zap"
)

// FileSet is a declarative selection rule for bucket keys (or local files on
// upload): a base directory plus include/exclude glob patterns. An empty
// include list selects everything under the base directory.
type FileSet struct {
	// Dir is the base directory. For remote sets it is normalized to a
	// slash-separated prefix with a trailing separator before matching.
	Dir string `json:"dir"`

	// Includes are glob patterns matched against the path relative to Dir.
	Includes []string `json:"includes,omitempty"`

	// Excludes are glob patterns; a match excludes the file even when an
	// include pattern also matches.
	Excludes []string `json:"excludes,omitempty"`
}

// DownloadRequest describes one download task invocation built from
// build-file parameters. Exactly one of {Key, FileSets} and exactly one of
// {ToFile, ToDir} must be set; FileSets require ToDir.
type DownloadRequest struct {
	// Bucket is the source bucket name (required).
	Bucket string `json:"bucket"`

	// Key is the single source object key (optional).
	Key string `json:"key,omitempty"`

	// FileSets select multiple source keys by pattern (optional).
	FileSets []FileSet `json:"filesets,omitempty"`

	// ToFile is the exact destination file path (optional).
	ToFile string `json:"toFile,omitempty"`

	// ToDir is the destination directory (optional).
	ToDir string `json:"toDir,omitempty"`
}

// UploadRequest describes one upload task invocation. Exactly one of
// {File, FileSets} must be set; FileSets require ToPrefix while a single
// file requires ToKey.
type UploadRequest struct {
	// Bucket is the destination bucket name (required).
	Bucket string `json:"bucket"`

	// File is the single local source file (optional).
	File string `json:"file,omitempty"`

	// FileSets select local files by pattern (optional).
	FileSets []FileSet `json:"filesets,omitempty"`

	// ToKey is the exact destination object key (optional).
	ToKey string `json:"toKey,omitempty"`

	// ToPrefix is the destination key prefix for file-set uploads (optional).
	ToPrefix string `json:"toPrefix,omitempty"`
}

// DeleteRequest describes one delete task invocation. Exactly one of
// {Key, FileSets} must be set.
type DeleteRequest struct {
	// Bucket is the bucket name (required).
	Bucket string `json:"bucket"`

	// Key is the single object key to delete (optional).
	Key string `json:"key,omitempty"`

	// FileSets select keys to delete by pattern (optional).
	FileSets []FileSet `json:"filesets,omitempty"`
}

// DownloadResult reports what a download task transferred.
type DownloadResult struct {
	// Files is the number of objects written to disk.
	Files int

	// Bytes is the total number of bytes copied.
	Bytes int64

	// Duration is the wall-clock time for the whole task.
	Duration time.Duration
}

// UploadResult reports what an upload task transferred.
type UploadResult struct {
	// Files is the number of objects stored.
	Files int

	// Bytes is the total number of bytes copied.
	Bytes int64

	// Duration is the wall-clock time for the whole task.
	Duration time.Duration
}

// DeleteResult reports what a delete task removed.
type DeleteResult struct {
	// Keys lists the object keys that were deleted.
	Keys []string

	// Duration is the wall-clock time for the whole task.
	Duration time.Duration
}

// ClientConfig holds the client-level configuration assembled from options.
type ClientConfig struct {
	// Region is the AWS region for bucket operations.
	Region string

	// Endpoint overrides the S3 endpoint (S3-compatible services, LocalStack).
	Endpoint string

	// ForcePathStyle uses path-style addressing instead of virtual hosting.
	ForcePathStyle bool

	// MaxRetries is the retry budget the SDK applies to failed requests.
	MaxRetries int

	// Timeout bounds each HTTP request; zero means no timeout.
	Timeout time.Duration

	// Credentials overrides the default credential chain when non-nil.
	Credentials aws.CredentialsProvider

	// CustomAWSConfig overrides the default configuration loading entirely.
	CustomAWSConfig *aws.Config

	// Filesystem is the destination filesystem; defaults to the OS filesystem.
	Filesystem fs.Filesystem

	// Logger receives the per-transfer start/end lines; defaults to a no-op.
	Logger *zap.SugaredLogger
}

// Option configures the client.
type Option func(*ClientConfig)
