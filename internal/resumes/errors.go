package resumes

import "errors"

var (
	ErrNotFound        = errors.New("resume not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyFile       = errors.New("no file uploaded")
	ErrUnsupportedType = errors.New("unsupported file format")
)
