package apperr

import "errors"

var (
	ErrValidation  = errors.New("validation failed")
	ErrJobNotFound = errors.New("job not found")
	ErrExtraction  = errors.New("extraction failed")
	ErrPersistence = errors.New("persistence failed")
)
