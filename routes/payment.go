package routes

import (
	paymentControllers "github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/controllers/payment"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/middleware"
	"github.com/gin-gonic/gin"
)

func SetupPaymentRoutes(r *gin.Engine, deps Deps) {
	payments := r.Group("/braintree")
	{
		payments.GET("/token", paymentControllers.TokenHandler(deps.Checkout, deps.Log))
		payments.POST("/payment", middleware.RequireSignIn(deps.JWTSecret), paymentControllers.PaymentHandler(deps.Checkout))
	}
}
