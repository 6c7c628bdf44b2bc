package repository

import (
	"errors"
	"fmt"
)

// ErrNoData means the upstream returned an empty or absent series for the
// symbol. Treated as "no data", not as an upstream outage.
var ErrNoData = errors.New("no price data for symbol")

// UpstreamError wraps a non-OK response from a market data API. Server
// errors indicate systemic unavailability and abort the active scan run;
// anything else only fails the symbol that triggered it.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
}

// IsServerError reports whether the failure is a 5xx-equivalent.
func (e *UpstreamError) IsServerError() bool {
	return e.StatusCode >= 500
}

// IsServerError reports whether err carries a 5xx-equivalent upstream
// failure.
func IsServerError(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr) && upstreamErr.IsServerError()
}
