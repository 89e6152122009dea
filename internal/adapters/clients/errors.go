// Package clients provides the instrumented HTTP client used to reach
// downstream services such as the quotes API.
package clients

import "errors"

// Transport-level failures. Callers translate these into domain errors.
var (
	// ErrCircuitOpen is returned while the breaker is blocking requests.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrRequestFailed wraps network and timeout failures of the single attempt.
	ErrRequestFailed = errors.New("downstream request failed")
)
