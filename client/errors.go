package client

import "errors"

// Sentinel errors for the client façade.
var (
	// ErrNoCredential indicates a business request was attempted while
	// the session is anonymous. No network call is made.
	ErrNoCredential = errors.New("client: no credential")

	// ErrMissingBaseURL indicates Config.BaseURL is empty.
	ErrMissingBaseURL = errors.New("client: base URL is required")
)
