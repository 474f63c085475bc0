package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"audycon/internal/config"
	apperrors "audycon/internal/errors"
	"audycon/internal/models"
	"audycon/internal/services"
)

const userIDKey = "userID"

// getJWTKey returns the JWT key shared with the Identity Store.
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// Claims are the claims the Identity Store puts in the bearer tokens it
// issues. Only the subject (the account id) matters here; role and status
// are always re-read from the profile store, the source of truth for
// authorization decisions.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ResolveActor validates a bearer token and returns the account id it was
// issued for. Tokens are HS256-signed by the Identity Store with the shared
// secret.
func ResolveActor(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getJWTKey(), nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.Wrap(apperrors.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", apperrors.WithMessage(apperrors.ErrUnauthorized, "Token has no subject")
	}
	return claims.Subject, nil
}

// bearerToken extracts the token from the Authorization header, if any.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// AuthMiddleware requires a valid bearer token and stores the actor's
// account id on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, "Authorization header missing or malformed")
			return
		}

		actorID, err := ResolveActor(token)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(userIDKey, actorID)
		c.Next()
	}
}

// OptionalAuth resolves the actor when a bearer token is present but lets
// the request through either way. Handlers that accept an alternative
// credential (the admin panel secret) use it so the audit trail can still
// attribute the action when a token was supplied.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if actorID, err := ResolveActor(token); err == nil {
				c.Set(userIDKey, actorID)
			}
		}
		c.Next()
	}
}

// AdminOnly requires the already-authenticated actor to be an ACTIVE
// administrator. Role and status are read from the profile store on every
// request, so suspending or deleting an admin locks them out immediately.
func AdminOnly(accounts services.AccountServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, exists := c.Get(userIDKey)
		if !exists {
			abortUnauthorized(c, "Authentication required")
			return
		}

		account, err := accounts.GetAccountByID(actorID.(string))
		if err != nil {
			abortUnauthorized(c, "Authentication required")
			return
		}

		if account.Role != models.RoleAdmin || account.Status != models.StatusActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    apperrors.ErrAdminOnly.Code,
					"message": apperrors.ErrAdminOnly.Message,
				},
			})
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrUnauthorized.Code,
			"message": message,
		},
	})
}
