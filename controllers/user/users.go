package userControllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/auth"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/middleware"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/store"
	"github.com/gin-gonic/gin"
)

const minPasswordLength = 6

// UpdateProfileInput lists the editable fields. Email is fixed at registration.
type UpdateProfileInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Password *string `json:"password"`
}

// GET /auth/user-auth and /auth/admin-auth
//
// The middleware in front decides; reaching the handler means access is granted.
func AuthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /auth/profile
func GetProfileHandler(users store.UserStore, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.GetUser(c.Request.Context(), c.GetString(middleware.UserIDKey))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		if err != nil {
			log.Error("get profile", slog.Any("err", err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error While Getting Profile"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user": auth.ProfileOf(user)})
	}
}

// PUT /auth/profile
func UpdateProfileHandler(users store.UserStore, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid profile update", "error": err.Error()})
			return
		}

		update := store.ProfileUpdate{Name: input.Name, Phone: input.Phone, Address: input.Address}
		if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Name cannot be empty"})
			return
		}
		if input.Password != nil {
			if len(*input.Password) < minPasswordLength {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Password is required to be at least 6 characters long"})
				return
			}
			hash, err := auth.HashPassword(*input.Password)
			if err != nil {
				log.Error("hash password", slog.Any("err", err))
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error While Updating Profile"})
				return
			}
			update.Password = &hash
		}

		user, err := users.UpdateUserProfile(c.Request.Context(), c.GetString(middleware.UserIDKey), update)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		if err != nil {
			log.Error("update profile", slog.Any("err", err))
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Error While Updating Profile", "error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"message":     "Profile Updated Successfully",
			"updatedUser": auth.ProfileOf(user),
		})
	}
}
