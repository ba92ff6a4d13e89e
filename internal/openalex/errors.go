package openalex

import (
	"errors"
	"fmt"
)

// Common errors returned by the OpenAlex client.
var (
	// ErrEmptyQuery indicates a search without any search terms.
	ErrEmptyQuery = errors.New("empty OpenAlex query")

	// ErrRateLimited indicates the rate limit has been exceeded.
	ErrRateLimited = errors.New("OpenAlex rate limit exceeded")

	// ErrAPIError indicates a general API error.
	ErrAPIError = errors.New("OpenAlex API error")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with OpenAlex")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from OpenAlex")
)

// APIError represents an error status returned by the OpenAlex API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("OpenAlex API error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is match ErrAPIError.
func (e *APIError) Unwrap() error {
	return ErrAPIError
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
