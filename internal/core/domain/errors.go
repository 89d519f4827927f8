package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidRequest     = errors.New("invalid search request")
	ErrVendorNotFound     = errors.New("vendor not found")
	ErrVendorNotSupported = errors.New("integration coming soon")
	ErrVendorTimeout      = errors.New("vendor search timed out")
	ErrProductNotFound    = errors.New("product not found")
)

// A ValidationError lists why a search request was rejected.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return ErrInvalidRequest.Error() + ": " + strings.Join(e.Reasons, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}
