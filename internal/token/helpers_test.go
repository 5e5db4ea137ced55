package token

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-authgate/coffeeshop/internal/jwks"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/require"
)

const (
	testDomain   = "coffee.test.auth0.com"
	testIssuer   = "https://" + testDomain + "/"
	testAudience = "drinks"
	testKid      = "test-key"
)

// identityProvider publishes a JWKS over httptest and signs tokens.
type identityProvider struct {
	t       *testing.T
	key     *rsa.PrivateKey
	server  *httptest.Server
	fetches int32

	mu  sync.Mutex
	doc []byte
}

func newIdentityProvider(t *testing.T) *identityProvider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	idp := &identityProvider{t: t, key: key}
	idp.publish(map[string]*rsa.PrivateKey{testKid: key})
	idp.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&idp.fetches, 1)
		idp.mu.Lock()
		doc := idp.doc
		idp.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(doc)
	}))
	t.Cleanup(idp.server.Close)
	return idp
}

// publish replaces the served key set.
func (p *identityProvider) publish(keys map[string]*rsa.PrivateKey) {
	p.t.Helper()
	set := jwk.NewSet()
	for kid, key := range keys {
		pub, err := jwk.PublicKeyOf(key)
		require.NoError(p.t, err)
		require.NoError(p.t, pub.Set(jwk.KeyIDKey, kid))
		require.NoError(p.t, pub.Set(jwk.AlgorithmKey, jwa.RS256))
		require.NoError(p.t, pub.Set(jwk.KeyUsageKey, "sig"))
		require.NoError(p.t, set.AddKey(pub))
	}
	doc, err := json.Marshal(set)
	require.NoError(p.t, err)
	p.mu.Lock()
	p.doc = doc
	p.mu.Unlock()
}

func (p *identityProvider) fetchCount() int { return int(atomic.LoadInt32(&p.fetches)) }

func (p *identityProvider) source() *jwks.HTTPSource {
	p.t.Helper()
	src, err := jwks.NewHTTPSource(p.server.URL, p.server.Client(), jwks.AllowPlainHTTP(), jwks.WithTimeout(time.Second))
	require.NoError(p.t, err)
	return src
}

func (p *identityProvider) verifier(opts ...VerifierOption) *Verifier {
	p.t.Helper()
	return newTestVerifier(p.t, p.source(), opts...)
}

func newTestVerifier(t *testing.T, src jwks.Source, opts ...VerifierOption) *Verifier {
	t.Helper()
	v, err := NewVerifier(NewKeyResolver(src), testIssuer, testAudience, opts...)
	require.NoError(t, err)
	return v
}

// validClaims returns a valid claim set with the given permissions.
func validClaims(perms ...string) jwt.MapClaims {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": testIssuer,
		"sub": "auth0|barista",
		"aud": testAudience,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	if perms != nil {
		claims["permissions"] = perms
	}
	return claims
}

func signRS256(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func (p *identityProvider) sign(claims jwt.MapClaims) string {
	p.t.Helper()
	return signRS256(p.t, p.key, testKid, claims)
}

func bearer(tok string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+tok)
	return h
}
