package httpserver

import (
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps bundles everything the routes need.
type Deps struct {
	CartSvc           cartService
	CatalogSvc        catalogService
	Sessions          sessionManager
	SessionTTLSeconds int
	CORSOrigins       string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), metricsMiddleware())
	router.Use(corsMiddleware(deps.CORSOrigins))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	client := router.Group("/client")
	client.POST("/session", issueSessionHandler(deps.Sessions, deps.SessionTTLSeconds))
	client.DELETE("/session", revokeSessionHandler(deps.Sessions))
	client.GET("/products", listProductsHandler(deps.CatalogSvc))
	client.GET("/products/:id", getProductHandler(deps.CatalogSvc))

	cart := client.Group("/cart")
	cart.Use(sessionMiddleware(deps.Sessions))
	cart.GET("", getCartHandler(deps.CartSvc))
	cart.POST("", addItemHandler(deps.CartSvc))
	cart.PUT("", setQuantityHandler(deps.CartSvc))
	cart.DELETE("", clearCartHandler(deps.CartSvc))
	cart.DELETE("/:productId", removeItemHandler(deps.CartSvc))

	return router
}

func corsMiddleware(origins string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowCredentials = true
	if origins == "" || origins == "*" {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = strings.Split(origins, ",")
	}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	return cors.New(cfg)
}
