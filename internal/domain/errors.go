package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when no entry exists for a lookup key
	ErrCacheMiss = errors.New("cache miss")

	// ErrNotFound is returned when a listing does not exist in the store
	ErrNotFound = errors.New("listing not found")

	// ErrRateLimited is returned when the search provider answers 429
	ErrRateLimited = errors.New("provider rate limit exceeded")

	// ErrUpstreamUnavailable is returned after retries are exhausted;
	// distinct from "no match found"
	ErrUpstreamUnavailable = errors.New("search provider unavailable")

	// ErrProviderFailure is returned for non-retryable provider errors
	// (4xx other than 429, malformed response)
	ErrProviderFailure = errors.New("search provider request failed")

	// ErrNoMatch is the valid scoring outcome when no candidate was
	// accepted; recorded as a cache miss, never surfaced as a failure
	ErrNoMatch = errors.New("no acceptable candidate")

	// ErrStoreUnavailable is returned when the durable store cannot be reached
	ErrStoreUnavailable = errors.New("store unavailable")
)
