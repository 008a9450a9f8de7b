package services

import "errors"

// Errors shared by all services. Handlers map them to HTTP status codes.
var (
	ErrValidation = errors.New("input validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("not authorized")
)
