package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/store"
	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserProfile is the user as returned to the browser after login.
type UserProfile struct {
	ID      string      `json:"_id"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Phone   string      `json:"phone"`
	Address string      `json:"address"`
	Role    models.Role `json:"role"`
}

func ProfileOf(u models.User) UserProfile {
	return UserProfile{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		Address: u.Address,
		Role:    u.Role,
	}
}

type LoginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    UserProfile `json:"user"`
	Token   string      `json:"token"`
}

// POST /auth/login
func LoginHandler(users store.UserStore, secret string, ttl time.Duration, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
			return
		}

		user, err := users.GetUserByEmail(c.Request.Context(), req.Email)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Email is not registered"})
			return
		}
		if err != nil {
			log.Error("login lookup failed", slog.Any("err", err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error during Login"})
			return
		}

		if !ComparePassword(req.Password, user.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid Password"})
			return
		}

		token, err := SignToken(secret, user.ID, ttl)
		if err != nil {
			log.Error("token signing failed", slog.Any("err", err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error during Login"})
			return
		}

		c.JSON(http.StatusOK, LoginResponse{
			Success: true,
			Message: "Login Successful",
			User:    ProfileOf(user),
			Token:   token,
		})
	}
}
