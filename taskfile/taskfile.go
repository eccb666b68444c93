// Package taskfile parses declarative YAML task files into transfer requests.
//
// A task file is the build-file surface of the module: each entry declares
// exactly one operation with the same parameters the Go API takes.
//
//	version: "1"
//	tasks:
//	  - name: fetch release artifacts
//	    download:
//	      bucket: dist-bucket
//	      filesets:
//	        - dir: release/
//	          includes: ["*.tar.gz"]
//	      toDir: out/
package taskfile

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/buildforge/s3task/errors"
	"github.com/buildforge/s3task/tasktypes"
)

// File is a parsed task file.
type File struct {
	// Version is the task file format version.
	Version string `json:"version,omitempty"`

	// Profile optionally names the connection profile to run the tasks with.
	Profile string `json:"profile,omitempty"`

	// Tasks run sequentially; the first failure halts the run.
	Tasks []Task `json:"tasks"`
}

// Task is one task entry. Exactly one operation must be set.
type Task struct {
	// Name is an optional label used in log output.
	Name string `json:"name,omitempty"`

	Download *tasktypes.DownloadRequest `json:"download,omitempty"`
	Upload   *tasktypes.UploadRequest   `json:"upload,omitempty"`
	Delete   *tasktypes.DeleteRequest   `json:"delete,omitempty"`
}

// Parse decodes and validates a task file document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, errors.NewError("taskfile", err).WithMessage("cannot parse task file")
	}

	if len(f.Tasks) == 0 {
		return nil, errors.NewConfigError("taskfile", "task file declares no tasks")
	}

	for i := range f.Tasks {
		if err := f.Tasks[i].Validate(i); err != nil {
			return nil, err
		}
	}

	return &f, nil
}

// Load reads and parses a task file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewError("taskfile", err).WithMessage("cannot read task file")
	}
	return Parse(data)
}

// Validate enforces the exactly-one-operation rule for a task entry. Parse
// applies it to every entry; callers assembling File values by hand get the
// same check from Run.
func (t *Task) Validate(index int) error {
	count := 0
	if t.Download != nil {
		count++
	}
	if t.Upload != nil {
		count++
	}
	if t.Delete != nil {
		count++
	}

	switch count {
	case 0:
		return errors.NewConfigError("taskfile",
			fmt.Sprintf("task %s declares no operation", t.label(index)))
	case 1:
		return nil
	default:
		return errors.NewConfigError("taskfile",
			fmt.Sprintf("task %s declares more than one operation", t.label(index)))
	}
}

// label names a task for error and log messages.
func (t *Task) label(index int) string {
	if t.Name != "" {
		return fmt.Sprintf("%q", t.Name)
	}
	return fmt.Sprintf("#%d", index+1)
}

// Label returns the task's display name for log output.
func (t *Task) Label(index int) string {
	return t.label(index)
}
