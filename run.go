package s3task

import (
	"context"

	"github.com/buildforge/s3task/taskfile"
)

// Run executes a parsed task file sequentially. The first failing task
// aborts the run; there is no skip-and-continue or partial-success
// reporting.
func (c *Client) Run(ctx context.Context, f *taskfile.File) error {
	for i := range f.Tasks {
		task := &f.Tasks[i]
		c.log.Infof("running task %s", task.Label(i))

		var err error
		switch {
		case task.Download != nil:
			_, err = c.Download(ctx, *task.Download)
		case task.Upload != nil:
			_, err = c.Upload(ctx, *task.Upload)
		case task.Delete != nil:
			_, err = c.Delete(ctx, *task.Delete)
		default:
			// Parse rejects these; hand-built task lists get the same check
			err = task.Validate(i)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
