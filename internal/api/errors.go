package api

import (
	"fmt"
	"strings"
)

// APIError represents a non-2xx response from the Backpack API.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backpack api error %d: %s", e.StatusCode, e.Body)
}

// SignatureExpired reports whether the error body indicates a stale or
// invalid signature. This usually means clock skew or a timestamp baked
// into an earlier attempt; the fix is to re-sign and retry.
func (e *APIError) SignatureExpired() bool {
	return strings.Contains(string(e.Body), "Invalid signature") ||
		strings.Contains(string(e.Body), "Request has expired")
}

// OrderNotFound reports whether the error body says the order no longer
// exists. On cancel this is terminal but benign: the order is already gone.
func (e *APIError) OrderNotFound() bool {
	return strings.Contains(string(e.Body), "Order not found")
}
