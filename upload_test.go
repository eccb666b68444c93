package s3task

import (
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	taskerrors "github.com/buildforge/s3task/errors"
	"github.com/buildforge/s3task/internal/testutil"
	"github.com/buildforge/s3task/tasktypes"
)

// TestUpload_ParameterRules tests that invalid upload parameter combinations
// are rejected before any transfer starts.
func TestUpload_ParameterRules(t *testing.T) {
	tests := []struct {
		name        string
		req         tasktypes.UploadRequest
		errContains string
	}{
		{
			name:        "missing bucket",
			req:         tasktypes.UploadRequest{File: "a.txt", ToKey: "a.txt"},
			errContains: "bucket must be set",
		},
		{
			name: "file and fileset together",
			req: tasktypes.UploadRequest{
				Bucket:   "test-bucket",
				File:     "a.txt",
				FileSets: []tasktypes.FileSet{{Dir: "src"}},
			},
			errContains: "only one of file and fileset may be set",
		},
		{
			name:        "neither file nor fileset",
			req:         tasktypes.UploadRequest{Bucket: "test-bucket", ToKey: "a.txt"},
			errContains: "at least one of file and fileset must be set",
		},
		{
			name:        "file without toKey",
			req:         tasktypes.UploadRequest{Bucket: "test-bucket", File: "a.txt"},
			errContains: "toKey must be set when uploading a file",
		},
		{
			name: "fileset with toKey",
			req: tasktypes.UploadRequest{
				Bucket:   "test-bucket",
				FileSets: []tasktypes.FileSet{{Dir: "src"}},
				ToKey:    "a.txt",
			},
			errContains: "toKey cannot be used when uploading a fileset",
		},
		{
			name: "file with toPrefix",
			req: tasktypes.UploadRequest{
				Bucket:   "test-bucket",
				File:     "a.txt",
				ToKey:    "a.txt",
				ToPrefix: "v1.0",
			},
			errContains: "toPrefix cannot be used when uploading a file",
		},
		{
			name: "fileset without toPrefix",
			req: tasktypes.UploadRequest{
				Bucket:   "test-bucket",
				FileSets: []tasktypes.FileSet{{Dir: "src"}},
			},
			errContains: "toPrefix must be set when uploading a fileset",
		},
		{
			name: "fileset with invalid pattern",
			req: tasktypes.UploadRequest{
				Bucket:   "test-bucket",
				FileSets: []tasktypes.FileSet{{Dir: "src", Includes: []string{"["}}},
				ToPrefix: "v1.0",
			},
			errContains: "invalid pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewWithClient(&testutil.MockS3Client{})
			client.SetFilesystem(billy.NewInMemoryFS())

			result, err := client.Upload(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, taskerrors.IsConfig(err), "expected a configuration error, got %v", err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

// TestUpload_SingleFile tests that a single file upload sends the file bytes
// to the exact destination key.
func TestUpload_SingleFile(t *testing.T) {
	content := []byte("<project></project>\n")

	var gotKey, gotContentType string
	var gotBody []byte
	mockClient := &testutil.MockS3Client{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			gotKey = aws.ToString(params.Key)
			gotContentType = aws.ToString(params.ContentType)
			body, err := io.ReadAll(params.Body)
			require.NoError(t, err)
			gotBody = body
			return &s3.PutObjectOutput{}, nil
		},
	}

	memFS := billy.NewInMemoryFS()
	require.NoError(t, memFS.WriteFile("build/pom.xml", content, 0o644))

	client := NewWithClient(mockClient)
	client.SetFilesystem(memFS)

	result, err := client.Upload(context.Background(), tasktypes.UploadRequest{
		Bucket: "test-bucket",
		File:   "build/pom.xml",
		ToKey:  "releases/pom.xml",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, int64(len(content)), result.Bytes)
	assert.Equal(t, "releases/pom.xml", gotKey)
	assert.Equal(t, content, gotBody)
	assert.NotEmpty(t, gotContentType)
}

// TestUpload_FileSet tests that a fileset upload walks the base directory,
// applies the patterns, and keys each file under the destination prefix.
func TestUpload_FileSet(t *testing.T) {
	memFS := billy.NewInMemoryFS()
	require.NoError(t, memFS.WriteFile("dist/app.tar.gz", []byte("tarball"), 0o644))
	require.NoError(t, memFS.WriteFile("dist/notes/CHANGELOG.md", []byte("changes"), 0o644))
	require.NoError(t, memFS.WriteFile("dist/app.tar.gz.tmp", []byte("partial"), 0o644))

	uploaded := map[string][]byte{}
	mockClient := &testutil.MockS3Client{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			body, err := io.ReadAll(params.Body)
			require.NoError(t, err)
			uploaded[aws.ToString(params.Key)] = body
			return &s3.PutObjectOutput{}, nil
		},
	}

	client := NewWithClient(mockClient)
	client.SetFilesystem(memFS)

	result, err := client.Upload(context.Background(), tasktypes.UploadRequest{
		Bucket: "test-bucket",
		FileSets: []tasktypes.FileSet{
			{Dir: "dist", Excludes: []string{"*.tmp"}},
		},
		ToPrefix: "v1.0",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Files)

	assert.Equal(t, []byte("tarball"), uploaded["v1.0/app.tar.gz"])
	assert.Equal(t, []byte("changes"), uploaded["v1.0/notes/CHANGELOG.md"])
	assert.NotContains(t, uploaded, "v1.0/app.tar.gz.tmp")
}

// TestUpload_MissingFile tests that uploading a nonexistent local file fails
// with the filesystem error.
func TestUpload_MissingFile(t *testing.T) {
	client := NewWithClient(&testutil.MockS3Client{})
	client.SetFilesystem(billy.NewInMemoryFS())

	result, err := client.Upload(context.Background(), tasktypes.UploadRequest{
		Bucket: "test-bucket",
		File:   "nope.txt",
		ToKey:  "nope.txt",
	})
	require.Error(t, err)
	assert.Nil(t, result)
}
