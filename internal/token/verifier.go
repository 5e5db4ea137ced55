package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAlgorithms is the accepted signature algorithm set when none is configured.
var DefaultAlgorithms = []string{"RS256"}

// Verifier checks a token's signature and standard claims.
type Verifier struct {
	resolver *KeyResolver
	issuer   string
	audience string
	algs     []string
	leeway   time.Duration
	now      func() time.Time
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithAlgorithms fixes the accepted signature algorithms.
func WithAlgorithms(algs ...string) VerifierOption {
	return func(v *Verifier) {
		if len(algs) > 0 {
			v.algs = append([]string(nil), algs...)
		}
	}
}

// WithLeeway sets clock skew tolerance for exp/nbf/iat.
func WithLeeway(d time.Duration) VerifierOption {
	return func(v *Verifier) { v.leeway = d }
}

// WithClock overrides the verification time source.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// NewVerifier builds a verifier that expects tokens issued by issuer for audience.
func NewVerifier(resolver *KeyResolver, issuer, audience string, opts ...VerifierOption) (*Verifier, error) {
	switch {
	case resolver == nil:
		return nil, errors.New("key resolver is required")
	case issuer == "":
		return nil, errors.New("issuer is required")
	case audience == "":
		return nil, errors.New("audience is required")
	}

	v := &Verifier{
		resolver: resolver,
		issuer:   issuer,
		audience: audience,
		algs:     append([]string(nil), DefaultAlgorithms...),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify resolves the signing key named by the token's kid, checks the
// signature and exp/aud/iss, and returns the decoded claims unmodified.
func (v *Verifier) Verify(ctx context.Context, raw string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods(v.algs),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)

	unverified, _, err := parser.ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, newAuthError(KindTokenUnparseable, "", err)
	}
	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return nil, newAuthError(KindMalformedToken, "", nil)
	}

	key, err := v.resolver.Resolve(ctx, kid)
	if err != nil {
		return nil, err
	}

	parsed, err := parser.Parse(raw, func(*jwt.Token) (any, error) { return key, nil })
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, newAuthError(KindTokenUnparseable, "", errors.New("unexpected claims type"))
	}
	return Claims(claims), nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return newAuthError(KindTokenUnparseable, "", err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return newAuthError(KindTokenExpired, "", err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return newAuthError(KindInvalidClaims, "", err)
	default:
		return newAuthError(KindTokenUnparseable, "", err)
	}
}
