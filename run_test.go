package s3task

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildforge/s3task/internal/testutil"
	"github.com/buildforge/s3task/taskfile"
	"github.com/buildforge/s3task/tasktypes"
)

// TestRun tests that a task file executes sequentially across operation
// kinds against one client.
func TestRun(t *testing.T) {
	mockClient := testutil.NewBucketMock(map[string][]byte{
		"release/app.bin": []byte("binary"),
	})

	var deleted []string
	mockClient.DeleteObjectFunc = func(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		deleted = append(deleted, *params.Key)
		return &s3.DeleteObjectOutput{}, nil
	}
	mockClient.PutObjectFunc = func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return &s3.PutObjectOutput{}, nil
	}

	memFS := billy.NewInMemoryFS()
	require.NoError(t, memFS.WriteFile("build/report.txt", []byte("ok"), 0o644))

	client := NewWithClient(mockClient)
	client.SetFilesystem(memFS)

	f := &taskfile.File{
		Tasks: []taskfile.Task{
			{
				Name: "fetch",
				Download: &tasktypes.DownloadRequest{
					Bucket: "test-bucket",
					Key:    "release/app.bin",
					ToDir:  "out",
				},
			},
			{
				Name: "publish",
				Upload: &tasktypes.UploadRequest{
					Bucket: "test-bucket",
					File:   "build/report.txt",
					ToKey:  "reports/report.txt",
				},
			},
			{
				Name: "cleanup",
				Delete: &tasktypes.DeleteRequest{
					Bucket: "test-bucket",
					Key:    "tmp/lock",
				},
			},
		},
	}

	require.NoError(t, client.Run(context.Background(), f))

	got, err := memFS.ReadFile("out/app.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("binary"), got)
	assert.Equal(t, []string{"tmp/lock"}, deleted)
}

// TestRun_FirstFailureAborts tests that a failing task stops the run before
// later tasks execute.
func TestRun_FirstFailureAborts(t *testing.T) {
	mockClient := testutil.NewBucketMock(map[string][]byte{})

	deleteCalled := false
	mockClient.DeleteObjectFunc = func(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		deleteCalled = true
		return &s3.DeleteObjectOutput{}, nil
	}

	client := NewWithClient(mockClient)
	client.SetFilesystem(billy.NewInMemoryFS())

	f := &taskfile.File{
		Tasks: []taskfile.Task{
			{
				Download: &tasktypes.DownloadRequest{
					Bucket: "test-bucket",
					Key:    "missing.bin",
					ToDir:  "out",
				},
			},
			{
				Delete: &tasktypes.DeleteRequest{
					Bucket: "test-bucket",
					Key:    "tmp/lock",
				},
			},
		},
	}

	err := client.Run(context.Background(), f)
	require.Error(t, err)
	assert.False(t, deleteCalled, "tasks after the failure must not run")
}

// TestRun_TaskWithoutOperation tests that a hand-built task list with an
// empty entry fails instead of silently skipping it.
func TestRun_TaskWithoutOperation(t *testing.T) {
	client := NewWithClient(testutil.NewBucketMock(map[string][]byte{}))
	client.SetFilesystem(billy.NewInMemoryFS())

	f := &taskfile.File{
		Tasks: []taskfile.Task{
			{Name: "noop"},
		},
	}

	err := client.Run(context.Background(), f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `task "noop" declares no operation`)
}
