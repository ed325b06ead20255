package analysis

import "errors"

var (
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrInvalidInput           = errors.New("resumeText or resumeId is required")
	ErrInputTooShort          = errors.New("resume text too short")
	ErrNotFoundOrUnauthorized = errors.New("resume not found or unauthorized")
	ErrDependencyUnavailable  = errors.New("resume store unavailable")
)
