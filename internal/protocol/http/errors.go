package http

import "errors"

var (
	// ErrEmptyRequest is returned when the connection closes before any
	// bytes arrive. The connection is dropped without a response.
	ErrEmptyRequest = errors.New("empty request")

	// ErrMalformedRequest is returned when the request line or headers
	// cannot be parsed. Maps to 400.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrLengthRequired is returned for a POST without a Content-Length
	// header. Maps to 400.
	ErrLengthRequired = errors.New("content-length required")

	// ErrHeaderTooLarge is returned when the header block exceeds the
	// read limit. Maps to 400.
	ErrHeaderTooLarge = errors.New("header block too large")
)
