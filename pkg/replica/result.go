package replica

import (
	"time"
)

// Result describes the files written by Generate.
type Result struct {
	// Dir is the directory the replica was written to.
	Dir string `json:"dir" yaml:"dir"`

	// Files are the written paths, in write order.
	Files []string `json:"files" yaml:"files"`

	// Size is the total number of bytes written.
	Size int64 `json:"size" yaml:"size"`

	// Commands is the number of commands in the replica.
	Commands int `json:"commands" yaml:"commands"`

	// Duration is how long generation took.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Errors are non-fatal problems met while writing.
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Success is set once every file was written.
	Success bool `json:"success" yaml:"success"`
}

// NewResult creates an empty Result for dir.
func NewResult(dir string) *Result {
	return &Result{
		Dir:    dir,
		Files:  []string{},
		Errors: []string{},
	}
}

// AddFile records a written file.
func (r *Result) AddFile(path string, size int64) {
	r.Files = append(r.Files, path)
	r.Size += size
}

// AddError records a non-fatal error. Nil errors are ignored.
func (r *Result) AddError(err error) {
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
	}
}

// MarkSuccess marks the generation as complete.
func (r *Result) MarkSuccess() {
	r.Success = true
}
