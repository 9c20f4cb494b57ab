package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/auth"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/store"
	"github.com/gin-gonic/gin"
)

// UserIDKey is where RequireSignIn leaves the verified user id.
const UserIDKey = "user_id"

// RequireSignIn verifies the Authorization header. Browsers cannot set
// headers on a websocket handshake, so a "token" query parameter is accepted
// as a fallback.
func RequireSignIn(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization token is required"})
			return
		}

		userID, err := auth.ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized Access"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// RequireAdmin must run after RequireSignIn.
func RequireAdmin(users store.UserStore, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.GetUser(c.Request.Context(), c.GetString(UserIDKey))
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not found"})
			return
		}
		if err != nil {
			log.Error("admin lookup failed", slog.Any("err", err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error in admin middleware"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Admin Access Required"})
			return
		}
		c.Next()
	}
}
