package adapter

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

// maxErrorBody bounds the response body quoted in an error. The text ends
// up in member flags and cycle history.
const maxErrorBody = 256

// mapHTTPError converts a non-2xx list source response into an adapter error
// kind. 207 Multi-Status means some operations were not applied and is
// Transient as well.
func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices && code != http.StatusMultiStatus {
		return nil
	}

	body := truncateBody(strings.TrimSpace(string(resp.Body())))
	if body == "" {
		body = http.StatusText(code)
	}

	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return fmt.Errorf("%w: http %d: %s", ErrAuthExpired, code, body)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: http %d: %s", ErrNotFound, code, body)
	case code == http.StatusTooManyRequests:
		if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
			return fmt.Errorf("%w: retry after %s", ErrRateLimited, retryAfter)
		}
		return fmt.Errorf("%w: http %d: %s", ErrRateLimited, code, body)
	case code == http.StatusMultiStatus:
		return fmt.Errorf("%w: partially applied: %s", ErrTransient, body)
	default:
		return fmt.Errorf("%w: http %d: %s", ErrTransient, code, body)
	}
}

// truncateBody cuts body to maxErrorBody bytes on a rune boundary.
func truncateBody(body string) string {
	if len(body) <= maxErrorBody {
		return body
	}
	cut := maxErrorBody
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "..."
}
