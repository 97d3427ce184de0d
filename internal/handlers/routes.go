package handlers

import (
	"github.com/gin-gonic/gin"

	"wavy/internal/auth"
	"wavy/internal/collection"
	"wavy/internal/metrics"
)

// RegisterRoutes wires every endpoint onto router
func RegisterRoutes(router *gin.Engine, h *Handler, resolver *auth.Resolver) {
	router.GET("/health", h.Health)
	router.GET("/ping", h.Ping)
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api/v1")
	api.Use(resolver.Middleware())

	api.GET("/categories", h.ListCategories)
	api.GET("/categories/:id", h.GetCategory)
	api.GET("/categories/:id/movies", h.CategoryMovies)
	api.GET("/categories/:id/preview", h.CategoryPreview)
	api.GET("/categories/:id/search", h.CategorySearch)
	api.GET("/genres", h.Genres)
	api.GET("/avatars", h.Avatars)

	movies := api.Group("/movies")
	{
		movies.GET("/popular", h.Popular())
		movies.GET("/top-rated", h.TopRated())
		movies.GET("/upcoming", h.Upcoming())
		movies.GET("/now-playing", h.NowPlaying())
		movies.GET("/search", h.Search)
		movies.GET("/trending/:window", h.Trending)
		movies.GET("/:id", h.Details)
		movies.GET("/:id/credits", h.Credits)
		movies.GET("/:id/similar", h.Similar)
		movies.GET("/:id/recommendations", h.Recommendations)
	}

	api.GET("/series/popular", h.PopularSeries())

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/verify", h.Verify)
	}

	me := api.Group("/me", auth.Required())
	{
		me.GET("/profile", h.Profile)
		me.PUT("/profile", h.UpdateProfile)
		me.PUT("/password", h.ChangePassword)
		me.GET("/preferences", h.GetPreferences)
		me.PUT("/preferences", h.UpdatePreferences)
		me.GET("/addons", h.ListAddons)
		me.POST("/addons", h.InstallAddon)
		me.PUT("/addons/:id/toggle", h.ToggleAddon)
		me.DELETE("/addons/:id", h.UninstallAddon)

		for _, kind := range collection.Kinds() {
			ch := h.collectionHandler(kind)
			group := me.Group("/" + string(kind))
			group.GET("", ch.List)
			group.POST("", ch.Add)
			group.DELETE("", ch.Clear)
			group.GET("/:itemId", ch.Get)
			group.DELETE("/:itemId", ch.Remove)
		}
	}

	api.GET("/events", auth.Required(), h.Events)
}
