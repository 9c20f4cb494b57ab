package routes

import (
	"log/slog"
	"net/http"
	"time"

	paymentControllers "github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/controllers/payment"
	orderControllers "github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/controllers/order"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/logger"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps is everything the HTTP layer is built from.
type Deps struct {
	Store       store.Store
	Checkout    paymentControllers.Checkouter
	Hub         *orderControllers.Hub
	Policy      models.TransitionPolicy
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string
	Log         *slog.Logger
}

// NewRouter builds the engine with logging, recovery and CORS in front of
// every route.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.Hub == nil {
		deps.Hub = orderControllers.NewHub(deps.Log)
	}
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := gin.New()
	r.Use(logger.Recovery(deps.Log), logger.Gin(deps.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	SetupRoutes(r, deps)
	return r
}

// SetupRoutes wires every route group.
func SetupRoutes(r *gin.Engine, deps Deps) {
	SetupAuthRoutes(r, deps)

	SetupUserRoutes(r, deps)

	SetupOrderRoutes(r, deps)

	SetupPaymentRoutes(r, deps)
}
