package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comercio/backend/internal/infrastructure/auth"
	"github.com/comercio/backend/internal/infrastructure/config"
	"github.com/comercio/backend/internal/infrastructure/logger"
	"github.com/comercio/backend/internal/interfaces/http/dto"
	"github.com/comercio/backend/internal/interfaces/http/handler"
	"github.com/comercio/backend/internal/interfaces/http/middleware"
)

// HealthChecker reports readiness of a backing dependency.
type HealthChecker interface {
	Ping() error
}

// Dependencies carries everything the router needs to wire routes.
type Dependencies struct {
	Config        *config.Config
	Logger        *zap.Logger
	TokenVerifier *auth.TokenVerifier
	Database      HealthChecker

	PurchaseOrders *handler.PurchaseOrderHandler
	SalesOrders    *handler.SalesOrderHandler
	SettledSales   *handler.SettledSaleHandler
}

// New builds the gin engine with the full middleware chain and all routes.
func New(deps Dependencies) (*gin.Engine, error) {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	r := gin.New()
	if err := r.SetTrustedProxies(deps.Config.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	r.Use(middleware.RequestID())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(logger.Recovery(deps.Logger))

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = deps.Config.HTTP.AllowOrigins
	r.Use(middleware.CORSWithConfig(cors))

	r.GET("/health", healthHandler(deps.Database))

	api := r.Group("/api/v1")
	api.Use(middleware.ActorAuth(deps.TokenVerifier))
	{
		deps.PurchaseOrders.RegisterRoutes(api)
		deps.SalesOrders.RegisterRoutes(api)
		deps.SettledSales.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "route not found", c.GetString("request_id")))
	})

	return r, nil
}

func healthHandler(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := db.Ping(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
