package api

import (
	"errors"
	"fmt"
)

// Error is the single failure shape surfaced by the client. API-reported
// failures (success:false), non-2xx statuses and transport errors are all
// folded into it so callers never distinguish "returned failure" from
// "threw".
type Error struct {
	// Status is the HTTP status code, or 0 for transport-level failures.
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: %s", e.Message)
}

// AsError unwraps err into *Error when possible.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
