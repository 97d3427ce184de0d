package tmdb

import (
	"errors"
	"fmt"
)

// ErrFetchFailed matches every FetchError through errors.Is
var ErrFetchFailed = errors.New("fetch failed")

// ErrInvalidWindow is returned for an unknown trending window
var ErrInvalidWindow = errors.New("invalid trending window")

// FetchError reports a failed call to the metadata provider. Network errors,
// non-success statuses and malformed bodies all surface as this one type and
// differ only in their message.
type FetchError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s failed: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fetch %s failed: %s", e.Endpoint, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrFetchFailed) true for any FetchError
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}
