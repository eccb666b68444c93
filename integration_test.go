//go:build integration
// +build integration

package s3task_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildforge/s3task"
	"github.com/buildforge/s3task/internal/testutil"
	"github.com/buildforge/s3task/tasktypes"
)

// TestIntegrationDownload tests the download task modes against LocalStack.
func TestIntegrationDownload(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s3Client, cleanup := testutil.SetupLocalStackTest(t)
	defer cleanup()

	bucketName := fmt.Sprintf("s3task-download-%d", time.Now().UnixNano())
	require.NoError(t, testutil.CreateTestBucket(ctx, s3Client, bucketName))
	defer testutil.CleanupTestBucket(ctx, s3Client, bucketName)

	objects := map[string][]byte{
		"release/app.bin":     []byte("application binary"),
		"release/docs/README": []byte("read me"),
		"release/scratch.tmp": []byte("scratch"),
		"unrelated/other.txt": []byte("other"),
		"single/report.html":  []byte("<html></html>"),
	}
	for key, data := range objects {
		_, err := s3Client.PutObject(ctx, &awss3.PutObjectInput{
			Bucket: aws.String(bucketName),
			Key:    aws.String(key),
			Body:   bytes.NewReader(data),
		})
		require.NoError(t, err, "seeding object %s", key)
	}

	client := s3task.NewWithClient(s3Client)

	t.Run("key to file", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "nested", "report.html")

		result, err := client.Download(ctx, tasktypes.DownloadRequest{
			Bucket: bucketName,
			Key:    "single/report.html",
			ToFile: dest,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Files)

		got, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, objects["single/report.html"], got)
	})

	t.Run("key to dir", func(t *testing.T) {
		dir := t.TempDir()

		_, err := client.Download(ctx, tasktypes.DownloadRequest{
			Bucket: bucketName,
			Key:    "release/app.bin",
			ToDir:  dir,
		})
		require.NoError(t, err)

		got, err := os.ReadFile(filepath.Join(dir, "app.bin"))
		require.NoError(t, err)
		assert.Equal(t, objects["release/app.bin"], got)
	})

	t.Run("fileset to dir", func(t *testing.T) {
		dir := t.TempDir()

		result, err := client.Download(ctx, tasktypes.DownloadRequest{
			Bucket: bucketName,
			FileSets: []tasktypes.FileSet{
				{Dir: "release", Excludes: []string{"*.tmp"}},
			},
			ToDir: dir,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Files)

		got, err := os.ReadFile(filepath.Join(dir, "app.bin"))
		require.NoError(t, err)
		assert.Equal(t, objects["release/app.bin"], got)

		got, err = os.ReadFile(filepath.Join(dir, "docs", "README"))
		require.NoError(t, err)
		assert.Equal(t, objects["release/docs/README"], got)

		_, err = os.Stat(filepath.Join(dir, "scratch.tmp"))
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(filepath.Join(dir, "other.txt"))
		assert.True(t, os.IsNotExist(err))
	})
}

// TestIntegrationUploadDelete tests the upload and delete tasks round-trip
// against LocalStack.
func TestIntegrationUploadDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s3Client, cleanup := testutil.SetupLocalStackTest(t)
	defer cleanup()

	bucketName := fmt.Sprintf("s3task-upload-%d", time.Now().UnixNano())
	require.NoError(t, testutil.CreateTestBucket(ctx, s3Client, bucketName))
	defer testutil.CleanupTestBucket(ctx, s3Client, bucketName)

	client := s3task.NewWithClient(s3Client)

	dir := t.TempDir()
	content := []byte("nightly build artifact")
	localPath := filepath.Join(dir, "artifact.bin")
	require.NoError(t, os.WriteFile(localPath, content, 0o644))

	t.Run("upload then download round trip", func(t *testing.T) {
		result, err := client.Upload(ctx, tasktypes.UploadRequest{
			Bucket: bucketName,
			File:   localPath,
			ToKey:  "artifacts/artifact.bin",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(len(content)), result.Bytes)

		dest := filepath.Join(t.TempDir(), "artifact.bin")
		_, err = client.Download(ctx, tasktypes.DownloadRequest{
			Bucket: bucketName,
			Key:    "artifacts/artifact.bin",
			ToFile: dest,
		})
		require.NoError(t, err)

		got, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("delete removes the object", func(t *testing.T) {
		result, err := client.Delete(ctx, tasktypes.DeleteRequest{
			Bucket: bucketName,
			Key:    "artifacts/artifact.bin",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"artifacts/artifact.bin"}, result.Keys)

		_, err = s3Client.HeadObject(ctx, &awss3.HeadObjectInput{
			Bucket: aws.String(bucketName),
			Key:    aws.String("artifacts/artifact.bin"),
		})
		require.Error(t, err)
	})
}
