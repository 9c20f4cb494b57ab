package routes

import (
	orderControllers "github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/controllers/order"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/middleware"
	"github.com/gin-gonic/gin"
)

func SetupOrderRoutes(r *gin.Engine, deps Deps) {
	signedIn := r.Group("/auth", middleware.RequireSignIn(deps.JWTSecret))
	{
		// Orders of the signed-in buyer
		signedIn.GET("/orders", orderControllers.GetOrdersHandler(deps.Store, deps.Log))
	}

	admin := r.Group("/auth", middleware.RequireSignIn(deps.JWTSecret), middleware.RequireAdmin(deps.Store, deps.Log))
	{
		admin.GET("/all-orders", orderControllers.GetAllOrdersHandler(deps.Store, deps.Log))
		admin.GET("/all-orders/export", orderControllers.ExportOrdersHandler(deps.Store, deps.Log))
		admin.PUT("/order-status/:orderId", orderControllers.UpdateOrderStatusHandler(deps.Store, deps.Policy, deps.Hub, deps.Log))

		// websocket endpoint for real-time order updates
		admin.GET("/orders/ws", deps.Hub.Handler)
	}
}
