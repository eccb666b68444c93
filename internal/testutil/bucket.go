package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// NewBucketMock builds a MockS3Client backed by an in-memory key/value
// bucket. GetObject serves the stored bytes, ListObjectsV2 lists keys
// lexicographically under the requested prefix, like S3 does.
func NewBucketMock(objects map[string][]byte) *MockS3Client {
	keys := make([]string, 0, len(objects))
	for k := range objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &MockS3Client{
		GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			key := aws.ToString(params.Key)
			data, ok := objects[key]
			if !ok {
				return nil, fmt.Errorf("NoSuchKey: key %q does not exist", key)
			}
			return &s3.GetObjectOutput{
				Body:          io.NopCloser(bytes.NewReader(data)),
				ContentLength: aws.Int64(int64(len(data))),
			}, nil
		},
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			prefix := aws.ToString(params.Prefix)
			var contents []types.Object
			for _, k := range keys {
				if strings.HasPrefix(k, prefix) {
					contents = append(contents, types.Object{
						Key:  aws.String(k),
						Size: aws.Int64(int64(len(objects[k]))),
					})
				}
			}
			return &s3.ListObjectsV2Output{
				Contents:    contents,
				IsTruncated: aws.Bool(false),
			}, nil
		},
	}
}
