package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"linkshort/internal/controllers"
	"linkshort/internal/identity"
	"linkshort/internal/middleware"
	"linkshort/internal/service"
)

// Deps are the collaborators the HTTP layer needs
type Deps struct {
	Links          service.LinkService
	Redirect       service.RedirectService
	Verifier       identity.Verifier
	DB             controllers.Pinger
	Logger         *slog.Logger
	BaseURL        string
	TrustedProxies []string
}

// NewRouter wires every route onto a new gin engine
func NewRouter(deps Deps) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(deps.Logger))

	// nil trusts no proxy, so ClientIP is the socket peer
	var proxies []string
	if len(deps.TrustedProxies) > 0 {
		proxies = deps.TrustedProxies
	}
	if err := router.SetTrustedProxies(proxies); err != nil {
		return nil, err
	}

	healthController := controllers.NewHealthController(deps.DB, deps.Logger)
	redirectController := controllers.NewRedirectController(deps.Redirect)
	shortLinksController := controllers.NewShortLinksController(deps.Links, deps.BaseURL)

	router.GET("/health", healthController.Health)
	router.GET("/readyz", healthController.Ready)

	router.GET("/r/:shortCode", redirectController.Redirect)

	api := router.Group("/api")
	{
		api.GET("/resolve/:shortCode", redirectController.Resolve)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Verifier))
		{
			protected.GET("/shortlinks", shortLinksController.List)
			protected.POST("/shortlinks", shortLinksController.Create)
			protected.DELETE("/shortlinks/:id", shortLinksController.Delete)
		}
	}

	return router, nil
}
