package s3task

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/buildforge/s3task/errors"
	"github.com/buildforge/s3task/internal/resolver"
	"github.com/buildforge/s3task/internal/transfer"
	"github.com/buildforge/s3task/internal/validation"
	"github.com/buildforge/s3task/tasktypes"
)

// downloadMode is the tagged variant produced by request validation.
// Only the three legal parameter shapes are representable, so the dispatch
// below never sees an invalid combination.
type downloadMode interface {
	isDownloadMode()
}

// keyToFile copies a single key to an exact file path.
type keyToFile struct {
	key  string
	file string
}

// keyToDir copies a single key into a directory under its basename.
type keyToDir struct {
	key string
	dir string
}

// setToDir resolves file-sets against the bucket listing and copies each
// matching key into a directory, stripping the file-set's base prefix.
type setToDir struct {
	sets []tasktypes.FileSet
	dir  string
}

func (keyToFile) isDownloadMode() {}
func (keyToDir) isDownloadMode()  {}
func (setToDir) isDownloadMode()  {}

// planDownload validates the request parameters and returns the transfer
// mode. Rules are checked in priority order; the first violation aborts with
// a configuration error naming the rule.
func planDownload(req tasktypes.DownloadRequest) (downloadMode, error) {
	if req.Bucket == "" {
		return nil, errors.NewConfigError("download", "bucket must be set")
	}
	if req.Key != "" && len(req.FileSets) > 0 {
		return nil, errors.NewConfigError("download", "only one of key and fileset may be set")
	}
	if req.Key == "" && len(req.FileSets) == 0 {
		return nil, errors.NewConfigError("download", "at least one of key and fileset must be set")
	}
	if req.ToFile != "" && req.ToDir != "" {
		return nil, errors.NewConfigError("download", "only one of toFile and toDir may be set")
	}
	if req.ToFile == "" && req.ToDir == "" {
		return nil, errors.NewConfigError("download", "at least one of toFile and toDir must be set")
	}
	if len(req.FileSets) > 0 && req.ToFile != "" {
		return nil, errors.NewConfigError("download", "toFile cannot be used when downloading a fileset")
	}

	if err := validation.ValidateBucketName(req.Bucket); err != nil {
		return nil, err
	}
	if req.Key != "" {
		if err := validation.ValidateObjectKey(req.Key); err != nil {
			return nil, err
		}
	}
	if err := validateFileSetPatterns("download", req.FileSets); err != nil {
		return nil, err
	}

	switch {
	case req.Key != "" && req.ToFile != "":
		return keyToFile{key: req.Key, file: req.ToFile}, nil
	case req.Key != "":
		return keyToDir{key: req.Key, dir: req.ToDir}, nil
	default:
		return setToDir{sets: req.FileSets, dir: req.ToDir}, nil
	}
}

// Download executes one download task: a single key to a file, a single key
// into a directory, or file-set patterns into a directory. Keys are fetched
// sequentially; the first failure aborts the whole task.
//
// Returns:
//   - *DownloadResult: counts of files and bytes written plus the task duration
//   - error: a configuration error for invalid parameters, or the first
//     service or I/O error encountered
func (c *Client) Download(
	ctx context.Context,
	req tasktypes.DownloadRequest,
) (*tasktypes.DownloadResult, error) {
	mode, err := planDownload(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	copier := transfer.New(c.s3Client, c.fs, c.log)
	result := &tasktypes.DownloadResult{}

	switch m := mode.(type) {
	case keyToFile:
		written, err := copier.Fetch(ctx, req.Bucket, m.key, m.file)
		if err != nil {
			return nil, err
		}
		result.Files++
		result.Bytes += written

	case keyToDir:
		dest := filepath.Join(m.dir, keyBasename(m.key))
		written, err := copier.Fetch(ctx, req.Bucket, m.key, dest)
		if err != nil {
			return nil, err
		}
		result.Files++
		result.Bytes += written

	case setToDir:
		res := resolver.New(c.s3Client)
		for _, set := range m.sets {
			prefix := resolver.NormalizeDir(set.Dir)
			keys, err := res.Resolve(ctx, req.Bucket, set)
			if err != nil {
				return nil, errors.NewError("download", err).WithBucket(req.Bucket)
			}
			for _, key := range keys {
				rel := strings.TrimPrefix(key, prefix)
				dest := filepath.Join(m.dir, filepath.FromSlash(rel))
				written, err := copier.Fetch(ctx, req.Bucket, key, dest)
				if err != nil {
					return nil, err
				}
				result.Files++
				result.Bytes += written
			}
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// keyBasename returns the substring after the last path separator in a key.
func keyBasename(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// validateFileSetPatterns rejects file-sets carrying syntactically invalid
// glob patterns before any listing or transfer starts.
func validateFileSetPatterns(op string, sets []tasktypes.FileSet) error {
	matcher := resolver.NewPatternMatcher()
	for _, set := range sets {
		if err := matcher.ValidateFileSet(set); err != nil {
			return errors.NewConfigError(op, err.Error())
		}
	}
	return nil
}
