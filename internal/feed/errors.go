package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when a fetch exceeds its deadline.
	ErrTimeout = errors.New("feed request timed out")
	// ErrInvalidFormat is returned when a calendar body does not look like
	// iCalendar data at all, typically an HTML error page from the relay.
	ErrInvalidFormat = errors.New("response is not iCalendar data")
	// ErrBodyTooLarge is returned instead of a truncated body, so a cut-off
	// feed is reported as failed rather than parsed partially.
	ErrBodyTooLarge = errors.New("response body too large")
	// ErrParseFailure is returned when a feed body could not be structured.
	ErrParseFailure = errors.New("feed could not be parsed")
)

// HTTPError reports a non-2xx response from the relay or origin.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}
