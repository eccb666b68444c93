package s3task

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/buildforge/s3task/errors"
	"github.com/buildforge/s3task/internal/resolver"
	"github.com/buildforge/s3task/internal/validation"
	"github.com/buildforge/s3task/tasktypes"
)

// S3 allows up to 1000 objects per DeleteObjects request.
const maxKeysPerDelete = 1000

// planDelete validates the request parameters and returns the concrete key
// list sources: either the single key or the file-sets to resolve.
func planDelete(req tasktypes.DeleteRequest) error {
	if req.Bucket == "" {
		return errors.NewConfigError("delete", "bucket must be set")
	}
	if req.Key != "" && len(req.FileSets) > 0 {
		return errors.NewConfigError("delete", "only one of key and fileset may be set")
	}
	if req.Key == "" && len(req.FileSets) == 0 {
		return errors.NewConfigError("delete", "at least one of key and fileset must be set")
	}

	if err := validation.ValidateBucketName(req.Bucket); err != nil {
		return err
	}
	if req.Key != "" {
		return validation.ValidateObjectKey(req.Key)
	}
	return validateFileSetPatterns("delete", req.FileSets)
}

// Delete executes one delete task: a single key, or file-set patterns
// expanded against the bucket listing. File-set deletions are batched
// through DeleteObjects.
func (c *Client) Delete(
	ctx context.Context,
	req tasktypes.DeleteRequest,
) (*tasktypes.DeleteResult, error) {
	if err := planDelete(req); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &tasktypes.DeleteResult{}

	if req.Key != "" {
		_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(req.Bucket),
			Key:    aws.String(req.Key),
		})
		if err != nil {
			return nil, errors.NewError("delete", err).WithBucket(req.Bucket).WithKey(req.Key)
		}
		c.log.Infof("deleted s3://%s/%s", req.Bucket, req.Key)
		result.Keys = append(result.Keys, req.Key)
		result.Duration = time.Since(start)
		return result, nil
	}

	res := resolver.New(c.s3Client)
	for _, set := range req.FileSets {
		keys, err := res.Resolve(ctx, req.Bucket, set)
		if err != nil {
			return nil, errors.NewError("delete", err).WithBucket(req.Bucket)
		}
		for len(keys) > 0 {
			batch := keys
			if len(batch) > maxKeysPerDelete {
				batch = batch[:maxKeysPerDelete]
			}
			keys = keys[len(batch):]

			if err := c.deleteBatch(ctx, req.Bucket, batch); err != nil {
				return nil, err
			}
			result.Keys = append(result.Keys, batch...)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// deleteBatch removes up to maxKeysPerDelete keys in one DeleteObjects call.
func (c *Client) deleteBatch(ctx context.Context, bucket string, keys []string) error {
	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, types.ObjectIdentifier{
			Key: aws.String(key),
		})
	}

	output, err := c.s3Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{
			Objects: objects,
		},
	})
	if err != nil {
		return errors.NewError("delete", err).WithBucket(bucket)
	}

	// Per-object failures surface as the task failure; no skip-and-continue
	if len(output.Errors) > 0 {
		first := output.Errors[0]
		return errors.NewError("delete",
			fmt.Errorf("%s: %s", aws.ToString(first.Code), aws.ToString(first.Message))).
			WithBucket(bucket).
			WithKey(aws.ToString(first.Key))
	}

	c.log.Infof("deleted %d objects from s3://%s", len(keys), bucket)
	return nil
}
