package token

import "strings"

// HeaderGetter is a case-insensitive header lookup, such as http.Header.
type HeaderGetter interface {
	Get(key string) string
}

// ExtractBearer returns the token from an "Authorization: Bearer <token>" header.
func ExtractBearer(h HeaderGetter) (string, error) {
	if h == nil {
		return "", newAuthError(KindMissingHeader, "", nil)
	}
	auth := h.Get("Authorization")
	if auth == "" {
		return "", newAuthError(KindMissingHeader, "", nil)
	}

	parts := strings.Fields(auth)
	switch {
	case len(parts) == 0 || !strings.EqualFold(parts[0], "bearer"):
		return "", newAuthError(KindMalformedHeader, `Authorization header must start with "Bearer".`, nil)
	case len(parts) == 1:
		return "", newAuthError(KindMalformedHeader, "Token not found.", nil)
	case len(parts) > 2:
		return "", newAuthError(KindMalformedHeader, "Authorization header must be bearer token.", nil)
	}

	return parts[1], nil
}
