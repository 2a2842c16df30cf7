package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"public-complaint-api/models"
	"public-complaint-api/services"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
	ctxClaims = "claims"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	ParseToken(ctx context.Context, raw string) (*services.Claims, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
		return "", false
	}
	return strings.TrimSpace(tokenString), true
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
		Status:  models.ResponseError,
		Message: message,
	})
}

// AuthMiddleware validates the JWT and stores the requester in the context.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abortUnauthenticated(c, "Unauthenticated.")
			return
		}

		claims, err := parser.ParseToken(c.Request.Context(), tokenString)
		if err != nil {
			abortUnauthenticated(c, "Token tidak valid atau sudah kedaluwarsa.")
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth resolves the requester when a valid token is present and
// otherwise continues as a guest.
func OptionalAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := parser.ParseToken(c.Request.Context(), tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *services.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxRole, claims.Role)
	c.Set(ctxClaims, claims)
}

// RequireRole checks if user has specific role
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, models.Response{
			Status:  models.ResponseError,
			Message: "Unauthorized",
		})
	}
}

// CurrentActor returns the requester resolved by AuthMiddleware or OptionalAuth.
func CurrentActor(c *gin.Context) services.Actor {
	return services.Actor{
		UserID: c.GetUint(ctxUserID),
		Role:   c.GetString(ctxRole),
	}
}

// CurrentClaims returns the verified token claims, if any.
func CurrentClaims(c *gin.Context) *services.Claims {
	if v, ok := c.Get(ctxClaims); ok {
		if claims, ok := v.(*services.Claims); ok {
			return claims
		}
	}
	return nil
}
