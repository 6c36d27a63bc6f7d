package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrAdapter is the root of every error returned by a [ListSource].
var ErrAdapter = errors.New("list source error")

var (
	// ErrAuthExpired means the account credential was rejected. The member
	// needs to re-authenticate.
	ErrAuthExpired = fmt.Errorf("%w: authentication expired", ErrAdapter)
	ErrRateLimited = fmt.Errorf("%w: rate limited", ErrAdapter)
	ErrNotFound    = fmt.Errorf("%w: list not found", ErrAdapter)
	// ErrTransient covers network failures, timeouts, server errors and
	// partially applied operations.
	ErrTransient = fmt.Errorf("%w: transient failure", ErrAdapter)
)

// Error kinds reported by [Kind].
const (
	KindAuthExpired = "auth_expired"
	KindRateLimited = "rate_limited"
	KindNotFound    = "not_found"
	KindTransient   = "transient"
	KindUnknown     = "unknown"
)

// Kind classifies err into one of the adapter error kinds. Timeouts and
// network errors that were not wrapped by an adapter are Transient. Kind
// returns "" for a nil error.
func Kind(err error) string {
	var netErr net.Error

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthExpired):
		return KindAuthExpired
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrTransient),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return KindTransient
	}
	return KindUnknown
}
