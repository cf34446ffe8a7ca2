package model

import (
	"errors"
	"strings"
)

// Error kinds. Match with errors.Is.
var (
	ErrInputValidation    = errors.New("input validation failed")
	ErrFormatValidation   = errors.New("unsupported output format")
	ErrOutputPath         = errors.New("invalid output path")
	ErrEngine             = errors.New("conversion failed")
	ErrOutputVerification = errors.New("conversion completed but output verification failed")
	ErrCancelled          = errors.New("conversion cancelled")
	ErrProbe              = errors.New("probe failed")
	ErrNoValidInputs      = errors.New("no valid input files")
)

// JobError attaches a kind and the offending path to a message.
type JobError struct {
	Kind error
	Path string
	Msg  string
}

func (e *JobError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	return b.String()
}

func (e *JobError) Unwrap() error { return e.Kind }

// NewError is shorthand for &JobError{...}.
func NewError(kind error, path, msg string) *JobError {
	return &JobError{Kind: kind, Path: path, Msg: msg}
}

// OutputConflictError lists every existing destination found by a batch pre-scan.
type OutputConflictError struct {
	Paths []string
}

func (e *OutputConflictError) Error() string {
	return "output files already exist (use overwrite): " + strings.Join(e.Paths, ", ")
}

func (e *OutputConflictError) Unwrap() error { return ErrOutputPath }
