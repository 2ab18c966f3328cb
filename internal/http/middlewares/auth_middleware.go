package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slotly/bookhub/internal/auth"
)

// Small interfaces so tests can fake both collaborators easily.

type TokenVerifier interface {
	Verify(token string) (*auth.SessionClaims, error)
}

// GenerationChecker answers the current revocation counter for a user;
// satisfied by revocation.Store.
type GenerationChecker interface {
	Generation(ctx context.Context, userID string) (int64, error)
}

type AuthMiddleware struct {
	jwt        TokenVerifier
	gens       GenerationChecker
	cookieName string
}

func NewAuthMiddleware(jwt TokenVerifier, gens GenerationChecker, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, gens: gens, cookieName: cookieName}
}

// RequireSession resolves the caller identity from the session cookie.
// No cookie is 401; a token that fails signature, expiry, or the
// generation check is 403. On success the identity lives on the request
// context only.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(m.cookieName)

		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			return
		}

		claims, err := m.jwt.Verify(raw)

		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Invalid or expired session",
			})
			return
		}

		// A logged-out user's tokens carry a stale generation.
		cctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		current, err := m.gens.Generation(cctx, claims.UserID)

		if err != nil || claims.Generation != current {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Invalid or expired session",
			})
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxRoleKey, claims.Role)

		c.Next()
	}
}

func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Missing identity context",
			})
			return
		}
		if role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Insufficient role",
			})
			return
		}
		c.Next()
	}
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
