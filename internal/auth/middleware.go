package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/motopark/api/internal/errors"
	"github.com/stwalsh4118/motopark/api/internal/middleware"
)

const (
	// AuthorizationHeader carries the bearer token
	AuthorizationHeader = "Authorization"
	// ClaimsKey is the context key for the verified claims
	ClaimsKey = "auth_claims"
)

// Authenticate requires a valid bearer token. A missing token aborts with
// 401, an invalid or expired one with 403. On success the claims are
// attached to the context.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abort(c, apierrors.New(apierrors.KindUnauthorized, "Access denied. No token provided."))
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			abort(c, apierrors.Wrap(apierrors.KindForbidden, "Invalid or expired token.", err))
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := verifier.Verify(token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin flag with 403. It must run
// after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok || !claims.IsAdmin {
			abort(c, apierrors.New(apierrors.KindForbidden, "Admin access required"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the claims attached by Authenticate or OptionalAuth.
func CurrentUser(c *gin.Context) (*Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok && claims != nil
}

// UserID returns the caller's id, or "" when unauthenticated.
func UserID(c *gin.Context) string {
	if claims, ok := CurrentUser(c); ok {
		return claims.UserID
	}
	return ""
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(ClaimsKey, claims)
	c.Set(middleware.UserIDKey, claims.UserID)
}

func bearerToken(c *gin.Context) (string, bool) {
	fields := strings.Fields(c.GetHeader(AuthorizationHeader))
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", false
	}
	return fields[1], true
}

func abort(c *gin.Context, err *apierrors.Error) {
	_ = c.Error(err)
	c.Abort()
}
