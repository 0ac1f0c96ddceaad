package browser

import (
	"net/http"
	"strings"

	"sitegrab-cli/internal/api"
)

// Phrases the service uses when a remote browser session is gone. Matched
// case-insensitively against the error message.
var sessionExpiryPhrases = []string{
	"destroyed",
	"expired",
	"not found",
	"gone",
	"session closed",
	"has been closed",
	"no longer exists",
}

// IsSessionExpired reports whether err indicates the remote browser session
// backing a call has been reclaimed. HTTP 410 and 404 are authoritative;
// otherwise the message text decides.
func IsSessionExpired(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	if apiErr, ok := api.AsError(err); ok {
		if apiErr.Status == http.StatusGone || apiErr.Status == http.StatusNotFound {
			return true
		}
		msg = apiErr.Message
	}

	lower := strings.ToLower(msg)
	for _, phrase := range sessionExpiryPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
