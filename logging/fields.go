package logging

// Field name constants for structured logging.
const (
	FieldError      = "error"
	FieldPath       = "path"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Parsing
	FieldBytes    = "bytes"
	FieldErrors   = "errors"
	FieldDuration = "duration"
	FieldPolicy   = "implicit_close"
	FieldJobs     = "jobs"

	// Server
	FieldVersion = "version"
	FieldAddr    = "addr"
	FieldEvent   = "event"
)
