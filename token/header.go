package token

import (
	"strings"

	apperrors "github.com/origon-labs/apiutils/errors"
)

// bearerPrefix is the required, case-sensitive Authorization scheme prefix.
const bearerPrefix = "Bearer "

// FromAuthorizationHeader extracts the bearer token from an Authorization
// header value. The scheme must be the literal "Bearer " followed by exactly
// one non-empty token; anything else fails with a MalformedHeader error,
// before any signature work happens.
func FromAuthorizationHeader(header string) (string, error) {
	if header == "" {
		return "", apperrors.MalformedHeader("Authorization header required.")
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", apperrors.MalformedHeader("Authorization header must use the Bearer scheme.")
	}
	raw := header[len(bearerPrefix):]
	if strings.TrimSpace(raw) == "" {
		return "", apperrors.MalformedHeader("Empty token in Authorization header.")
	}
	if strings.ContainsAny(raw, " \t") {
		return "", apperrors.MalformedHeader("Authorization header must carry a single token.")
	}
	return raw, nil
}
