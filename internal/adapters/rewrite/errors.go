package rewrite

import "errors"

// Sentinel kinds for rewrite errors.
var (
	// ErrNoProvider means no provider in the chain is configured. This is
	// the only rewrite condition that escalates past a single item.
	ErrNoProvider = errors.New("no rewrite provider configured")

	// ErrAllProvidersFailed means every configured provider was tried and
	// failed for one item.
	ErrAllProvidersFailed = errors.New("all rewrite providers failed")

	// ErrNotOriginal means the rewrite stayed too close to the source text
	// after the allowed retries.
	ErrNotOriginal = errors.New("rewrite too similar to source text")

	// ErrBadResponse marks an unusable provider response.
	ErrBadResponse = errors.New("malformed provider response")
)
