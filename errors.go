package authcore

import "errors"

var (
	// ErrStorageRequired is returned by Build when no mirror backend was provided.
	ErrStorageRequired = errors.New("storage backend required")
	// ErrBuilderUsed is returned when Build is called twice on one builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrBaseURLRequired is returned when the config names no API base URL.
	ErrBaseURLRequired = errors.New("api base url required")
	// ErrInvalidBaseURL is returned for a base URL that does not parse.
	ErrInvalidBaseURL = errors.New("invalid api base url")
	// ErrInvalidTimeout is returned for a non-positive request timeout.
	ErrInvalidTimeout = errors.New("request timeout must be positive")
)
