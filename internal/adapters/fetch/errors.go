package fetch

import (
	"context"
	"errors"
	"net"
)

// Sentinel kinds classifying source-fetch failures. Transient failures are
// eligible for a single bounded retry; permanent failures degrade the source
// for the rest of the run.
var (
	ErrTransient = errors.New("transient fetch failure")
	ErrPermanent = errors.New("permanent fetch failure")
	ErrRobots    = errors.New("disallowed by robots.txt")
)

// transient reports whether err warrants the single retry. Unwrapped network
// errors and timeouts count as transient; anything explicitly permanent does
// not.
func transient(err error) bool {
	if errors.Is(err, ErrPermanent) || errors.Is(err, ErrRobots) {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
