package normalize

import "errors"

// Sentinel rejection reasons. Callers use errors.Is to count drop reasons.
var (
	ErrMissingTitle  = errors.New("missing title")
	ErrMissingBody   = errors.New("missing body")
	ErrOutsideWindow = errors.New("timestamp outside requested window")
	ErrExcludedURL   = errors.New("url excluded by caller hint")
)
