package s3task

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/buildforge/s3task/errors"
	"github.com/buildforge/s3task/internal/resolver"
	"github.com/buildforge/s3task/internal/transfer"
	"github.com/buildforge/s3task/internal/validation"
	"github.com/buildforge/s3task/tasktypes"
)

// DefaultContentType is used when content type detection fails.
const DefaultContentType = "application/octet-stream"

// uploadMode is the tagged variant produced by upload request validation.
type uploadMode interface {
	isUploadMode()
}

// fileToKey uploads a single local file to an exact key.
type fileToKey struct {
	file string
	key  string
}

// setToPrefix walks local file-sets and uploads each match under a key prefix.
type setToPrefix struct {
	sets   []tasktypes.FileSet
	prefix string
}

func (fileToKey) isUploadMode()   {}
func (setToPrefix) isUploadMode() {}

// planUpload validates the request parameters and returns the transfer mode.
func planUpload(req tasktypes.UploadRequest) (uploadMode, error) {
	if req.Bucket == "" {
		return nil, errors.NewConfigError("upload", "bucket must be set")
	}
	if req.File != "" && len(req.FileSets) > 0 {
		return nil, errors.NewConfigError("upload", "only one of file and fileset may be set")
	}
	if req.File == "" && len(req.FileSets) == 0 {
		return nil, errors.NewConfigError("upload", "at least one of file and fileset must be set")
	}
	if req.File != "" && req.ToKey == "" {
		return nil, errors.NewConfigError("upload", "toKey must be set when uploading a file")
	}
	if len(req.FileSets) > 0 && req.ToKey != "" {
		return nil, errors.NewConfigError("upload", "toKey cannot be used when uploading a fileset")
	}
	if req.File != "" && req.ToPrefix != "" {
		return nil, errors.NewConfigError("upload", "toPrefix cannot be used when uploading a file")
	}
	if len(req.FileSets) > 0 && req.ToPrefix == "" {
		return nil, errors.NewConfigError("upload", "toPrefix must be set when uploading a fileset")
	}

	if err := validation.ValidateBucketName(req.Bucket); err != nil {
		return nil, err
	}
	if req.ToKey != "" {
		if err := validation.ValidateObjectKey(req.ToKey); err != nil {
			return nil, err
		}
	}
	if err := validateFileSetPatterns("upload", req.FileSets); err != nil {
		return nil, err
	}

	if req.File != "" {
		return fileToKey{file: req.File, key: req.ToKey}, nil
	}
	return setToPrefix{sets: req.FileSets, prefix: resolver.NormalizeDir(req.ToPrefix)}, nil
}

// Upload executes one upload task: a single local file to an exact key, or
// local file-sets under a key prefix. Files are stored sequentially; the
// first failure aborts the whole task.
func (c *Client) Upload(
	ctx context.Context,
	req tasktypes.UploadRequest,
) (*tasktypes.UploadResult, error) {
	mode, err := planUpload(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	copier := transfer.New(c.s3Client, c.fs, c.log)
	result := &tasktypes.UploadResult{}

	switch m := mode.(type) {
	case fileToKey:
		sent, err := copier.Store(ctx, m.file, req.Bucket, m.key, c.detectContentType(m.file))
		if err != nil {
			return nil, err
		}
		result.Files++
		result.Bytes += sent

	case setToPrefix:
		matcher := resolver.NewPatternMatcher()
		for _, set := range m.sets {
			files, err := c.collectLocalFiles(set, matcher)
			if err != nil {
				return nil, errors.NewError("upload", err).WithBucket(req.Bucket)
			}
			for _, file := range files {
				rel, err := filepath.Rel(set.Dir, file)
				if err != nil {
					return nil, errors.NewError("upload", err).WithBucket(req.Bucket)
				}
				key := m.prefix + filepath.ToSlash(rel)
				sent, err := copier.Store(ctx, file, req.Bucket, key, c.detectContentType(file))
				if err != nil {
					return nil, err
				}
				result.Files++
				result.Bytes += sent
			}
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// collectLocalFiles walks a file-set's base directory and returns the files
// selected by its patterns, in walk order.
func (c *Client) collectLocalFiles(set tasktypes.FileSet, matcher *resolver.PatternMatcher) ([]string, error) {
	var files []string
	err := c.fs.Walk(set.Dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(set.Dir, path)
		if err != nil {
			return err
		}
		if matcher.ShouldInclude(rel, set.Includes, set.Excludes) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// detectContentType determines the content type using mimetype where possible,
// falling back to extension-based lookup when the path is not a local file.
func (c *Client) detectContentType(path string) string {
	info, err := c.fs.Stat(path)
	if err != nil || info.IsDir() {
		return detectContentTypeFromExtension(path)
	}

	file, err := c.fs.Open(path)
	if err != nil {
		return detectContentTypeFromExtension(path)
	}
	defer file.Close()

	// First 512 bytes are enough for content sniffing
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	if n > 0 {
		if mt := mimetype.Detect(buf[:n]); mt != nil {
			return mt.String()
		}
	}

	return detectContentTypeFromExtension(path)
}

// detectContentTypeFromExtension detects content type from the file extension.
func detectContentTypeFromExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	return DefaultContentType
}
