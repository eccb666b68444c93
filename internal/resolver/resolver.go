package resolver

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/buildforge/s3task/internal/s3api"
	"github.com/buildforge/s3task/tasktypes"
)

// Resolver expands a file-set against the live bucket listing into an
// ordered list of object keys.
type Resolver struct {
	s3Client       s3api.S3API
	patternMatcher *PatternMatcher
}

// New creates a new Resolver.
func New(s3Client s3api.S3API) *Resolver {
	return &Resolver{
		s3Client:       s3Client,
		patternMatcher: NewPatternMatcher(),
	}
}

// NormalizeDir converts a base directory path to its storage-safe form:
// forward-slash separators with exactly one trailing separator. Bucket keys
// use a flat namespace with "/" as the conventional hierarchy delimiter.
func NormalizeDir(dir string) string {
	normalized := filepath.ToSlash(dir)
	normalized = strings.TrimPrefix(normalized, "./")
	if normalized == "" || normalized == "." {
		return ""
	}
	if !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}
	return normalized
}

// Resolve lists the bucket under the file-set's normalized base directory and
// returns the keys whose prefix-relative path satisfies the patterns, in
// listing order. Keys ending in the path separator are zero-byte directory
// placeholders, not files, and are excluded.
func (r *Resolver) Resolve(ctx context.Context, bucket string, set tasktypes.FileSet) ([]string, error) {
	prefix := NormalizeDir(set.Dir)

	var keys []string
	var continuationToken *string

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("listing cancelled for bucket %s: %w", bucket, ctx.Err())
		default:
		}

		input := &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuationToken,
			MaxKeys:           aws.Int32(1000), // AWS default and maximum
		}

		result, err := r.s3Client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in bucket %s: %w", bucket, err)
		}

		for _, obj := range result.Contents {
			key := aws.ToString(obj.Key)

			// Safety check: ListObjectsV2 should only return matching prefixes
			if !strings.HasPrefix(key, prefix) {
				continue
			}

			// Trailing-separator keys are directory placeholder objects
			if strings.HasSuffix(key, "/") {
				continue
			}

			relPath := strings.TrimPrefix(key, prefix)
			if r.patternMatcher.ShouldInclude(relPath, set.Includes, set.Excludes) {
				keys = append(keys, key)
			}
		}

		if !aws.ToBool(result.IsTruncated) {
			break
		}
		continuationToken = result.NextContinuationToken
	}

	return keys, nil
}
