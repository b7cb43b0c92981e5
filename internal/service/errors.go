package service

import "errors"

// Service-level error taxonomy. Validation and authorization errors are
// detected early and short-circuit before any blob write; storage-level
// errors (unsupported media, payload too large, incomplete upload) pass
// through from the storage package untouched.
var (
	ErrIDRequired         = errors.New("id is required")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("caller is not the owner")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
