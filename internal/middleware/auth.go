package middleware

import (
	"context"
	"net/http"

	"github.com/go-authgate/coffeeshop/internal/token"

	"github.com/gin-gonic/gin"
)

// Guarder wraps an operation behind a permission check.
type Guarder interface {
	Guard(permission string, op token.Operation) func(ctx context.Context, h token.HeaderGetter) error
}

// ClaimsHandler is a gin handler that receives the verified claims.
type ClaimsHandler func(c *gin.Context, claims token.Claims)

// RequiresAuth runs next only when the request's bearer token is valid and
// grants permission, handing it the decoded claims.
func RequiresAuth(gate Guarder, permission string, next ClaimsHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		guarded := gate.Guard(permission, func(_ context.Context, claims token.Claims) error {
			next(c, claims)
			return nil
		})
		if err := guarded(c.Request.Context(), c.Request.Header); err != nil {
			RenderAuthFailure(c, err)
		}
	}
}

// RenderAuthFailure aborts the request with the error's status and a
// {"code", "description"} body.
func RenderAuthFailure(c *gin.Context, err error) {
	ae := token.AsAuthError(err)
	status := ae.Status()
	if status == 0 {
		status = http.StatusUnauthorized
	}
	c.AbortWithStatusJSON(status, gin.H{
		"code":        ae.Code(),
		"description": ae.Description(),
	})
}
