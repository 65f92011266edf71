package remote

import (
	"fmt"
	"net/http"

	"cartbridge/internal/domain"
)

// APIError is an application-level failure: the server answered but reported
// success false. The message is the server-provided one when present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("cart api error (status %d)", e.StatusCode)
}

// Unwrap maps well-known statuses onto domain sentinels so callers can use
// errors.Is without importing this package's types.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return domain.ErrUnauthenticated
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return nil
	}
}

// TransportError is a network-level failure: the request never produced a
// decodable response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cart api unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
