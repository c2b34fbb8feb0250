package router

import (
	"errors"
	"net/http"

	"recipehub/internal/handlers"
	"recipehub/internal/middleware"
	"recipehub/internal/services"
	"recipehub/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionName = "recipehub_session"

// Deps is everything the HTTP layer needs.
type Deps struct {
	Store         store.Store
	Recipes       *services.RecipeService
	Engagement    *services.EngagementService
	Discovery     *services.DiscoveryService
	Comments      *services.CommentService
	Social        *services.SocialService
	Notifications *services.NotificationService
	RateLimiter   *middleware.RateLimiter

	SessionSecret string
	JWTSecret     string
}

// New builds the gin engine with middleware and every route registered.
func New(d Deps) (*gin.Engine, error) {
	if d.SessionSecret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, "route not found")
	})

	health := handlers.NewHealthHandler(d.Store)
	r.GET("/healthz", health.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if d.RateLimiter != nil {
		api.Use(middleware.RateLimit(d.RateLimiter))
	}
	api.Use(sessions.Sessions(sessionName, cookie.NewStore([]byte(d.SessionSecret))))
	api.Use(middleware.LoadUser(d.Store, d.JWTSecret))
	RegisterRoutes(api, d)
	return r, nil
}

func RegisterRoutes(api *gin.RouterGroup, d Deps) {
	recipeHandler := handlers.NewRecipeHandler(d.Recipes, d.Engagement, d.Discovery, d.Comments)
	commentHandler := handlers.NewCommentHandler(d.Comments)
	userHandler := handlers.NewUserHandler(d.Social, d.Recipes)
	notificationHandler := handlers.NewNotificationHandler(d.Notifications)

	// Public routes
	api.GET("/recipes", recipeHandler.List)
	api.GET("/recipes/categories", recipeHandler.Categories)
	api.GET("/recipes/:id", recipeHandler.Detail)
	api.GET("/recipes/:id/comments", recipeHandler.Comments)
	api.GET("/users/:id", userHandler.Profile)
	api.GET("/users/:id/recipes", userHandler.Recipes)
	api.GET("/users/:id/followers", userHandler.Followers)
	api.GET("/users/:id/following", userHandler.Following)

	// Protected routes
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/recipes", recipeHandler.Create)
		authorized.PUT("/recipes/:id", recipeHandler.Update)
		authorized.DELETE("/recipes/:id", recipeHandler.Delete)
		authorized.POST("/recipes/:id/rate", recipeHandler.Rate)
		authorized.POST("/recipes/:id/like", recipeHandler.Like)
		authorized.POST("/recipes/:id/share", recipeHandler.Share)
		authorized.POST("/recipes/:id/comments", recipeHandler.AddComment)

		authorized.PUT("/comments/:id", commentHandler.Update)
		authorized.DELETE("/comments/:id", commentHandler.Delete)
		authorized.POST("/comments/:id/like", commentHandler.Like)

		authorized.POST("/users/:id/follow", userHandler.Follow)
		authorized.DELETE("/users/:id/follow", userHandler.Unfollow)

		authorized.GET("/me/favorites", userHandler.Favorites)
		authorized.POST("/me/favorites/:recipeId", userHandler.AddFavorite)
		authorized.DELETE("/me/favorites/:recipeId", userHandler.RemoveFavorite)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		authorized.POST("/notifications/read-all", notificationHandler.ReadAll)
		authorized.POST("/notifications/:id/read", notificationHandler.Read)
		authorized.POST("/notifications/:id/unread", notificationHandler.Unread)
	}
}
