package token

import (
	"errors"
	"net/http"
)

// Kind enumerates authorization failure categories.
type Kind int

const (
	KindMissingHeader Kind = iota + 1
	KindMalformedHeader
	KindMalformedToken
	KindKeyNotFound
	KindKeyFetchFailed
	KindTokenExpired
	KindInvalidClaims
	KindTokenUnparseable
	KindPermissionsClaimMissing
	KindPermissionDenied
)

type kindInfo struct {
	name        string
	code        string
	description string
	status      int
}

var kinds = map[Kind]kindInfo{
	KindMissingHeader: {
		"MissingHeader", "authorization_header_missing",
		"Authorization header is expected.", http.StatusUnauthorized,
	},
	KindMalformedHeader: {
		"MalformedHeader", "invalid_header",
		"Authorization header must be bearer token.", http.StatusUnauthorized,
	},
	KindMalformedToken: {
		"MalformedToken", "malformed_token",
		"Authorization malformed.", http.StatusUnauthorized,
	},
	KindKeyNotFound: {
		"KeyNotFound", "key_not_found",
		"Unable to find the appropriate key.", http.StatusBadRequest,
	},
	KindKeyFetchFailed: {
		"KeyFetchFailed", "jwks_unavailable",
		"Unable to fetch the signing keys.", http.StatusBadRequest,
	},
	KindTokenExpired: {
		"TokenExpired", "token_expired",
		"Token expired.", http.StatusUnauthorized,
	},
	KindInvalidClaims: {
		"InvalidClaims", "invalid_claims",
		"Incorrect claims. Please, check the audience and issuer.", http.StatusUnauthorized,
	},
	KindTokenUnparseable: {
		"TokenUnparseable", "token_unparseable",
		"Unable to parse authentication token.", http.StatusBadRequest,
	},
	KindPermissionsClaimMissing: {
		"PermissionsClaimMissing", "permissions_not_found",
		"Token lacks required permissions.", http.StatusForbidden,
	},
	KindPermissionDenied: {
		"PermissionDenied", "no_permission",
		"Not permitted.", http.StatusForbidden,
	},
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "Unknown"
}

var (
	// ErrMissingHeader indicates the request carried no Authorization header
	ErrMissingHeader = newAuthError(KindMissingHeader, "", nil)

	// ErrMalformedHeader indicates the Authorization header is not "Bearer <token>"
	ErrMalformedHeader = newAuthError(KindMalformedHeader, "", nil)

	// ErrMalformedToken indicates the token header has no key id
	ErrMalformedToken = newAuthError(KindMalformedToken, "", nil)

	// ErrKeyNotFound indicates no published key matches the token's key id
	ErrKeyNotFound = newAuthError(KindKeyNotFound, "", nil)

	// ErrKeyFetchFailed indicates the signing key set could not be retrieved
	ErrKeyFetchFailed = newAuthError(KindKeyFetchFailed, "", nil)

	// ErrTokenExpired indicates the token is at or past its expiry
	ErrTokenExpired = newAuthError(KindTokenExpired, "", nil)

	// ErrInvalidClaims indicates an audience, issuer or other claim mismatch
	ErrInvalidClaims = newAuthError(KindInvalidClaims, "", nil)

	// ErrTokenUnparseable indicates a malformed token or a failed signature check
	ErrTokenUnparseable = newAuthError(KindTokenUnparseable, "", nil)

	// ErrPermissionsClaimMissing indicates the token has no permissions claim at all
	ErrPermissionsClaimMissing = newAuthError(KindPermissionsClaimMissing, "", nil)

	// ErrPermissionDenied indicates the required permission is not granted
	ErrPermissionDenied = newAuthError(KindPermissionDenied, "", nil)
)

// AuthError is the structured failure returned by every step of the gate.
// Only Code, Description and Status are meant for clients; the cause is kept
// for logs and errors.Is/As.
type AuthError struct {
	kind        Kind
	code        string
	description string
	status      int
	cause       error
}

func newAuthError(kind Kind, description string, cause error) *AuthError {
	info := kinds[kind]
	if description == "" {
		description = info.description
	}
	return &AuthError{
		kind:        kind,
		code:        info.code,
		description: description,
		status:      info.status,
		cause:       cause,
	}
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.cause == nil {
		return e.code + ": " + e.description
	}
	return e.code + ": " + e.description + ": " + e.cause.Error()
}

// Unwrap returns the underlying cause.
func (e *AuthError) Unwrap() error { return e.cause }

// Is matches any AuthError of the same kind, so sentinels work with errors.Is.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.kind == e.kind
}

func (e *AuthError) Kind() Kind          { return e.kind }
func (e *AuthError) Code() string        { return e.code }
func (e *AuthError) Description() string { return e.description }
func (e *AuthError) Status() int         { return e.status }

// AsAuthError extracts an AuthError from err. Errors of any other type are
// reported as TokenUnparseable so the boundary always has a stable shape.
func AsAuthError(err error) *AuthError {
	if err == nil {
		return nil
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	return newAuthError(KindTokenUnparseable, "", err)
}
