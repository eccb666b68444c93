// Package s3task executes declarative S3 transfer tasks for build pipelines.
// It wraps AWS SDK v2 behind a small client whose operations mirror the
// parameters of a build file: download a key to a file, download a key into
// a directory, or download file-set patterns into a directory, plus the
// sibling upload and delete operations.
//
// Tasks are strictly sequential: one key is fully transferred before the
// next begins, and the first failure aborts the enclosing task. There is no
// retry, resume, or integrity verification beyond what the SDK provides.
//
// Example usage:
//
//	client, err := s3task.New(s3task.WithRegion("us-west-2"))
//	if err != nil {
//	    return err
//	}
//
//	_, err = client.Download(ctx, tasktypes.DownloadRequest{
//	    Bucket: "dist-bucket",
//	    Key:    "release/app.tar.gz",
//	    ToDir:  "out",
//	})
package s3task
