// Package api serves the local status and control API.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urmzd/kenkudeck/pkg/action"
	"github.com/urmzd/kenkudeck/pkg/api/handlers"
	"github.com/urmzd/kenkudeck/pkg/db"
)

// Dependencies are the components the routes read from and drive.
// Link, Journal and Origins are optional.
type Dependencies struct {
	Deck     handlers.Deck
	Registry *action.Registry
	Views    handlers.Views
	Link     handlers.Link
	Journal  db.JournalStore
	Origins  []string
}

// Router holds the Gin engine and dependencies
type Router struct {
	engine *gin.Engine
	deps   Dependencies
}

// NewRouter creates a new API router
func NewRouter(deps Dependencies) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine, deps.Origins)

	router := &Router{
		engine: engine,
		deps:   deps,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Swagger UI over the document the docs package registers
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	healthHandler := handlers.NewHealthHandler(r.deps.Deck, r.deps.Link)
	r.engine.GET("/health", healthHandler.Health)

	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		keysHandler := handlers.NewKeysHandler(r.deps.Deck, r.deps.Registry)
		v1.GET("/bindings", keysHandler.ListBindings)
		v1.POST("/keys/:code", keysHandler.Press)

		stateHandler := handlers.NewStateHandler(r.deps.Views)
		v1.GET("/state", stateHandler.GetState)

		historyHandler := handlers.NewHistoryHandler(r.deps.Journal)
		v1.GET("/history", historyHandler.History)

		eventsHandler := handlers.NewEventsHandler(r.deps.Deck)
		v1.GET("/events", eventsHandler.Events)
	}
}

// Handler returns the router as an http.Handler.
func (r *Router) Handler() http.Handler {
	return r.engine
}
