// Package routes registers the API's HTTP routes: the authenticated
// configuration endpoint, the development login endpoint, and the static
// documentation explorer.
package routes

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/origon-labs/apiutils/config"
	"github.com/origon-labs/apiutils/logger"
	"github.com/origon-labs/apiutils/observability"
	"github.com/origon-labs/apiutils/server/middleware"
	"github.com/origon-labs/apiutils/token"
)

// CatalogReader loads the Versions and Enumerators catalogs surfaced by the
// config endpoint. *mongo.IO implements it; a nil reader yields empty
// catalogs.
type CatalogReader interface {
	Versions(ctx context.Context) ([]map[string]any, error)
	Enumerators(ctx context.Context) ([]map[string]any, error)
}

// Deps carries everything route handlers need.
type Deps struct {
	Config      *config.Config
	Tokens      *token.Service
	Catalog     CatalogReader
	AuthMetrics *observability.AuthMetrics
	Log         *logger.Logger
}

// Register wires all routes onto the engine. /api/* routes sit behind
// bearer-token authentication; /dev-login and /docs/* do not.
func Register(engine *gin.Engine, deps Deps) {
	if deps.Log == nil {
		deps.Log = logger.WithComponent("routes")
	}

	api := engine.Group("/api")
	api.Use(middleware.RequireAuth(middleware.AuthConfig{
		Validator: deps.Tokens.ValidatorFunc(),
		Metrics:   deps.AuthMetrics,
	}))
	api.GET("/config", configHandler(deps))

	engine.POST("/dev-login",
		middleware.RateLimit(middleware.RateLimitConfig{RequestsPerMinute: 30}),
		devLoginHandler(deps),
	)

	engine.GET("/docs/*filepath", explorerHandler(deps.Config.Docs()))
}
