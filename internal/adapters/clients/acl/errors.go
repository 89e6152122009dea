package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quote-oasis/internal/adapters/clients"
	"github.com/jsamuelsen/quote-oasis/internal/domain"
)

// maxErrorBody bounds how much of an error response is read for context.
const maxErrorBody = 4 << 10

// ninjaError is the error body shape of the quotes API: {"error": "..."}.
type ninjaError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorMessage extracts a readable message from an error response body.
// It returns "" when the body is empty or not the expected JSON.
func errorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	var e ninjaError
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&e); err != nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// mapClientError translates transport failures into domain errors.
func mapClientError(err error, serviceName string) error {
	if errors.Is(err, clients.ErrCircuitOpen) {
		return domain.NewUnavailableError(serviceName, "circuit breaker open")
	}
	return domain.NewUnavailableError(serviceName, err.Error())
}

// mapStatusError translates a non-2xx response into a domain error.
// Every upstream failure is unavailability from the widget's point of view;
// the status and upstream message are kept in the reason for logs.
func mapStatusError(resp *http.Response, serviceName string) error {
	reason := fmt.Sprintf("unexpected HTTP %d", resp.StatusCode)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		reason += " (check services.quote.api_key)"
	case http.StatusTooManyRequests:
		reason += " (rate limit exceeded)"
	}

	if msg := errorMessage(resp.Body); msg != "" {
		reason += ": " + msg
	}

	return domain.NewUnavailableError(serviceName, reason)
}
