package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-authgate/coffeeshop/internal/jwks"
)

// KeyResolver selects the public key matching a token's key id.
type KeyResolver struct {
	src jwks.Source
}

// NewKeyResolver returns a resolver over src.
func NewKeyResolver(src jwks.Source) *KeyResolver {
	return &KeyResolver{src: src}
}

// Resolve returns the raw public key (*rsa.PublicKey, *ecdsa.PublicKey, ...)
// for kid. When a caching source misses, it is invalidated once and the key
// set fetched again so rotated keys are picked up.
func (r *KeyResolver) Resolve(ctx context.Context, kid string) (any, error) {
	if kid == "" {
		return nil, newAuthError(KindMalformedToken, "", nil)
	}

	key, err := r.lookup(ctx, kid)
	if err == nil || !errors.Is(err, ErrKeyNotFound) {
		return key, err
	}

	inv, ok := r.src.(jwks.Invalidator)
	if !ok {
		return nil, err
	}
	if ierr := inv.Invalidate(ctx); ierr != nil {
		return nil, err
	}
	return r.lookup(ctx, kid)
}

func (r *KeyResolver) lookup(ctx context.Context, kid string) (any, error) {
	set, err := r.src.KeySet(ctx)
	if err != nil {
		return nil, newAuthError(KindKeyFetchFailed, "", err)
	}
	// the fetch may have outlived the request
	if err := ctx.Err(); err != nil {
		return nil, newAuthError(KindKeyFetchFailed, "", err)
	}

	key, ok := set.LookupKeyID(kid)
	if !ok {
		return nil, newAuthError(KindKeyNotFound, "", nil)
	}
	if use := key.KeyUsage(); use != "" && use != "sig" {
		return nil, newAuthError(KindKeyNotFound, "", fmt.Errorf("key %q is not a signing key", kid))
	}

	var raw any
	if err := key.Raw(&raw); err != nil {
		return nil, newAuthError(KindKeyNotFound, "", fmt.Errorf("key %q: %w", kid, err))
	}
	return raw, nil
}
