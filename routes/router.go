package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/rohanpratim/bookworms/config"
	"github.com/rohanpratim/bookworms/controllers"
	"github.com/rohanpratim/bookworms/middleware"
	"github.com/rohanpratim/bookworms/services"
	"github.com/rohanpratim/bookworms/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(users *services.UserService, posts *services.PostService) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))
	r.Use(middleware.RequestID())

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(users)
	userController := controllers.NewUserController(users)
	postController := controllers.NewPostController(posts)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	usersGroup := api.Group("/users")
	usersGroup.GET("/:id", userController.GetUser)
	usersGroup.GET("/:id/posts", postController.ListUserPosts)
	usersGroup.GET("", middleware.AuthRequired(), userController.Search)
	usersGroup.GET("/suggestions", middleware.AuthRequired(), userController.Suggestions)
	usersGroup.POST("/:id/follow", middleware.AuthRequired(), userController.Follow)
	usersGroup.DELETE("/:id/follow", middleware.AuthRequired(), userController.Unfollow)
	usersGroup.GET("/me/bookmarks", middleware.AuthRequired(), postController.Bookmarks)

	postsGroup := api.Group("/posts")
	postsGroup.GET("", postController.Feed)
	postsGroup.GET("/:id", postController.GetPost)
	postsGroup.POST("", middleware.AuthRequired(), postController.CreatePost)
	postsGroup.PUT("/:id", middleware.AuthRequired(), postController.UpdatePost)
	postsGroup.DELETE("/:id", middleware.AuthRequired(), postController.DeletePost)
	postsGroup.POST("/:id/comments", middleware.AuthRequired(), postController.CreateComment)
	postsGroup.POST("/:id/like", middleware.AuthRequired(), postController.Like)
	postsGroup.DELETE("/:id/like", middleware.AuthRequired(), postController.Unlike)
	postsGroup.POST("/:id/bookmark", middleware.AuthRequired(), postController.Bookmark)
	postsGroup.DELETE("/:id/bookmark", middleware.AuthRequired(), postController.Unbookmark)

	commentsGroup := api.Group("/comments")
	commentsGroup.Use(middleware.AuthRequired())
	commentsGroup.DELETE("/:id", postController.DeleteComment)
	commentsGroup.POST("/:id/replies", postController.CreateReply)

	return r
}
