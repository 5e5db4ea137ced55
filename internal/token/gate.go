package token

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// TokenVerifier turns a raw bearer token into verified claims.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (Claims, error)
}

// Recorder observes gate decisions. code is "ok" on success.
type Recorder interface {
	ObserveDecision(permission, code string)
}

// Operation is a protected operation; it receives the verified claims.
type Operation func(ctx context.Context, claims Claims) error

// Gate composes extraction, verification and the permission check.
// It holds no per-request state and is safe for concurrent use.
type Gate struct {
	verifier TokenVerifier
	logger   log.Logger
	recorder Recorder
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger sets the logger used for failed decisions.
func WithLogger(l log.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithRecorder sets the decision recorder.
func WithRecorder(r Recorder) GateOption {
	return func(g *Gate) { g.recorder = r }
}

// NewGate returns a gate backed by verifier.
func NewGate(verifier TokenVerifier, opts ...GateOption) *Gate {
	g := &Gate{verifier: verifier, logger: log.NewNopLogger()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize runs the full check for one request and stops at the first failure.
func (g *Gate) Authorize(ctx context.Context, h HeaderGetter, permission string) (Claims, error) {
	raw, err := ExtractBearer(h)
	if err != nil {
		return nil, g.deny(permission, err)
	}

	claims, err := g.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, g.deny(permission, err)
	}

	if err := CheckPermissions(permission, claims); err != nil {
		return nil, g.deny(permission, err)
	}

	if g.recorder != nil {
		g.recorder.ObserveDecision(permission, "ok")
	}
	return claims, nil
}

// Guard wraps op so it only runs after Authorize succeeds.
func (g *Gate) Guard(permission string, op Operation) func(ctx context.Context, h HeaderGetter) error {
	return func(ctx context.Context, h HeaderGetter) error {
		claims, err := g.Authorize(ctx, h, permission)
		if err != nil {
			return err
		}
		return op(ctx, claims)
	}
}

func (g *Gate) deny(permission string, err error) *AuthError {
	ae := AsAuthError(err)
	if g.recorder != nil {
		g.recorder.ObserveDecision(permission, ae.Code())
	}

	var logger log.Logger
	switch ae.Kind() {
	case KindPermissionsClaimMissing:
		logger = level.Warn(g.logger)
	case KindKeyFetchFailed:
		logger = level.Error(g.logger)
	default:
		logger = level.Debug(g.logger)
	}
	_ = logger.Log(
		"msg", "authorization denied",
		"code", ae.Code(),
		"permission", permission,
		"err", ae.Error(),
	)
	return ae
}
