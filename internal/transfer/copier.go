// Package transfer implements the per-key stream copy between the storage
// service and the local filesystem.
//
// Each transfer is a single linear pass: ensure the destination's parent
// directory, open both streams, copy through a fixed-size buffer, and emit a
// start and an end log line. Streams are released on every exit path; close
// errors never mask the primary failure.
package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"go.uber.org/zap"

	"github.com/buildforge/s3task/errors"
	"github.com/buildforge/s3task/internal/s3api"
)

// copyBufferSize is the fixed buffer used for the copy loop.
const copyBufferSize = 64 * 1024

// Copier moves object bytes between S3 and the local filesystem, one key at
// a time, logging a start and an end line per transfer.
type Copier struct {
	s3Client   s3api.S3API
	filesystem fs.Filesystem
	log        *zap.SugaredLogger
}

// New creates a new Copier.
func New(s3Client s3api.S3API, filesystem fs.Filesystem, log *zap.SugaredLogger) *Copier {
	return &Copier{
		s3Client:   s3Client,
		filesystem: filesystem,
		log:        log,
	}
}

// Fetch downloads one object to the given destination path, creating parent
// directories as needed. The destination is truncated if it already exists.
// It returns the number of bytes written.
func (c *Copier) Fetch(ctx context.Context, bucket, key, dest string) (int64, error) {
	if err := c.filesystem.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}

	output, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isObjectNotFound(err) {
			return 0, errors.NewError("download", errors.ErrObjectNotFound).WithBucket(bucket).WithKey(key)
		}
		return 0, errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}
	defer func() {
		// Secondary close errors never surface
		_ = output.Body.Close()
	}()

	dst, err := c.filesystem.Create(dest)
	if err != nil {
		return 0, errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}
	defer func() {
		_ = dst.Close()
	}()

	size := aws.ToInt64(output.ContentLength)
	c.log.Infof("downloading s3://%s/%s (%s) to %s", bucket, key, FormatSize(size), dest)

	// Timestamps bracket the copy loop only, not stream open/close
	buf := make([]byte, copyBufferSize)
	start := time.Now()
	written, err := io.CopyBuffer(dst, output.Body, buf)
	elapsed := time.Since(start)
	if err != nil {
		return written, errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}

	c.log.Infof("transfer time: %s - transfer rate: %s", FormatTime(elapsed), FormatRate(written, elapsed))

	return written, nil
}

// Store uploads one local file to the given bucket and key.
// It returns the number of bytes sent.
func (c *Copier) Store(ctx context.Context, localPath, bucket, key, contentType string) (int64, error) {
	info, err := c.filesystem.Stat(localPath)
	if err != nil {
		return 0, errors.NewError("upload", err).WithBucket(bucket).WithKey(key)
	}
	if info.IsDir() {
		return 0, errors.NewError("upload", os.ErrInvalid).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(fmt.Sprintf("%s is a directory, not a file", localPath))
	}

	src, err := c.filesystem.Open(localPath)
	if err != nil {
		return 0, errors.NewError("upload", err).WithBucket(bucket).WithKey(key)
	}
	defer func() {
		_ = src.Close()
	}()

	size := info.Size()
	c.log.Infof("uploading %s (%s) to s3://%s/%s", localPath, FormatSize(size), bucket, key)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          src,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	start := time.Now()
	_, err = c.s3Client.PutObject(ctx, input)
	elapsed := time.Since(start)
	if err != nil {
		return 0, errors.NewError("upload", err).WithBucket(bucket).WithKey(key)
	}

	c.log.Infof("transfer time: %s - transfer rate: %s", FormatTime(elapsed), FormatRate(size, elapsed))

	return size, nil
}

// FormatSize renders a byte count in human-readable binary units.
func FormatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// FormatTime renders an elapsed duration at millisecond granularity.
func FormatTime(elapsed time.Duration) string {
	ms := elapsed.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", elapsed.Seconds())
}

// FormatRate renders throughput as bytes over elapsed time. Sub-millisecond
// transfers report "instant" instead of dividing by a zero interval.
func FormatRate(bytes int64, elapsed time.Duration) string {
	if elapsed.Milliseconds() == 0 {
		return "instant"
	}
	rate := float64(bytes) / elapsed.Seconds()
	return humanize.IBytes(uint64(rate)) + "/s"
}

// isObjectNotFound checks if an error indicates that an object was not found.
func isObjectNotFound(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "NoSuchKey") || strings.Contains(errStr, "NotFound")
}
