package validators

import (
	"strings"
)

// BearerToken extracts the token from an Authorization header value. It
// returns an empty string when the header is absent or uses another scheme.
func BearerToken(header string) string {
	value := strings.TrimSpace(header)
	if len(value) < 7 || !strings.EqualFold(value[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[7:])
}
