package domain

import "errors"

var (
	// ErrInvalidRequest signals a client-side request error.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEngineUnavailable signals a search engine dispatch failure.
	ErrEngineUnavailable = errors.New("search engine unavailable")
	// ErrEngineTimeout signals a search engine dispatch that exceeded its deadline.
	ErrEngineTimeout = errors.New("search engine timeout")
)
