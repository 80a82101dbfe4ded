package middleware

import (
	"strings"

	"github.com/atlanticweizard/storefront/storage"
	"github.com/atlanticweizard/storefront/utils"
	"github.com/gin-gonic/gin"
)

var store storage.Storage

// Init wires the storage used to resolve authenticated principals.
func Init(s storage.Storage) {
	store = s
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// AdminAuthMiddleware guards admin-only routes
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.LogError("Missing Authorization header on admin route %s", c.Request.URL.Path)
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.LogError("Invalid admin token: %v", err)
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		adminID, ok := claims["admin_id"].(string)
		if !ok {
			utils.LogError("Token missing admin claim")
			utils.Unauthorized(c, "Admin access required")
			c.Abort()
			return
		}

		c.Set("admin_id", adminID)
		c.Next()
	}
}

// OptionalUserAuthMiddleware resolves the authenticated user when a valid
// Bearer token is present, but never rejects the request. It backs routes
// that work for guests too, so the order can be linked to an account when
// one is logged in.
func OptionalUserAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.LogDebug("Ignoring invalid token on optional-auth route %s: %v", c.Request.URL.Path, err)
			c.Next()
			return
		}

		userIDClaim, ok := claims["user_id"].(float64)
		if !ok {
			c.Next()
			return
		}

		user, err := store.GetUserByID(uint(userIDClaim))
		if err != nil {
			utils.LogDebug("User not found for optional-auth token: %v", err)
			c.Next()
			return
		}

		c.Set("user", *user)
		c.Next()
	}
}

// UserAuthMiddleware guards customer routes
func UserAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.LogError("Missing Authorization header on user route %s", c.Request.URL.Path)
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.LogError("Invalid user token: %v", err)
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		userIDClaim, ok := claims["user_id"].(float64)
		if !ok {
			utils.LogError("Token missing user claim")
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		user, err := store.GetUserByID(uint(userIDClaim))
		if err != nil {
			utils.LogError("User not found for token: %v", err)
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		c.Set("user", *user)
		c.Next()
	}
}
