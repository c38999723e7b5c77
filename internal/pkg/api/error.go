package api

import "errors"

//nolint:golint,gochecknoglobals // errors.New() is not const
var (
	// ErrMissingRequestBody means a required multipart form file was absent.
	ErrMissingRequestBody = errors.New("missing request body")
	// ErrBadRequest means the request could not be satisfied as given.
	ErrBadRequest = errors.New("bad request")
	// ErrInternal means an unexpected failure occurred serving the request.
	ErrInternal = errors.New("internal")
)
