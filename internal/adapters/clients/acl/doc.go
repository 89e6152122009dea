// Package acl translates the quotes API's wire format into domain types.
//
// Upstream DTOs stay unexported here. HTTP statuses and transport failures
// are mapped onto domain errors so nothing above this package sees net/http:
//
//   - empty result array → [domain.ErrNoQuotes]
//   - non-2xx, network failure, open breaker → [domain.ErrUnavailable]
package acl
