// Package apperr defines the error taxonomy shared by all adapters.
package apperr

import "errors"

var (
	// ErrNotFound means a referenced idea or relation endpoint is absent.
	// Store operations report absence through sentinel return values; this
	// error is for adapters that must surface a user-visible "not found".
	ErrNotFound = errors.New("not found")

	// ErrValidation means a required field (title, content, id) is missing or empty.
	ErrValidation = errors.New("validation failed")

	// ErrMalformedInput means an adapter boundary received unparseable JSON.
	ErrMalformedInput = errors.New("malformed input")
)
