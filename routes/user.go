package routes

import (
	userControllers "github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/controllers/user"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/middleware"
	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(r *gin.Engine, deps Deps) {
	user := r.Group("/auth", middleware.RequireSignIn(deps.JWTSecret))
	{
		user.GET("/user-auth", userControllers.AuthCheckHandler)
		user.GET("/profile", userControllers.GetProfileHandler(deps.Store, deps.Log))
		user.PUT("/profile", userControllers.UpdateProfileHandler(deps.Store, deps.Log))
	}

	admin := r.Group("/auth", middleware.RequireSignIn(deps.JWTSecret), middleware.RequireAdmin(deps.Store, deps.Log))
	{
		admin.GET("/admin-auth", userControllers.AuthCheckHandler)
	}
}
