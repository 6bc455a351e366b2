package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates the bearer token and stores the caller's user id
// in the gin context. Account management itself lives elsewhere; this layer
// only needs to know who is signed in.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token missing subject"})
			c.Abort()
			return
		}

		c.Set("userID", sub)
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if role, ok := claims["role"].(string); ok {
				c.Set("userRole", role)
			}
		}
		c.Next()
	}
}

// RequireRole restricts a route to callers whose token carries the given role
// claim. Device tokens are addressing data for server-side senders, so the
// lookup route demands a service credential rather than an end-user one.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("userRole") != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient privileges"})
			c.Abort()
			return
		}
		c.Next()
	}
}
