package app

import (
	"fmt"
	"net/http"
	"time"

	"socialnet/internal/config"
	"socialnet/internal/logger"
	"socialnet/internal/middleware"
	"socialnet/internal/model"
	"socialnet/internal/repository"
	"socialnet/internal/service"
	"socialnet/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewRouter wires the whole application: database, cache, media storage,
// repositories, services, handlers, routes.
func NewRouter(cfg *config.Config) (*gin.Engine, error) {
	db, err := initDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient := initRedisWithRetry(cfg, 3)

	var media *util.CloudinaryClient
	if cfg.CloudinaryCloudName != "" {
		media, err = util.NewCloudinaryClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to init cloudinary: %w", err)
		}
	} else {
		logger.Warn("cloudinary not configured, attachment uploads disabled")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	relationshipRepo := repository.NewRelationshipRepository(db, redisClient)
	postRepo := repository.NewPostRepository(db, redisClient)
	commentRepo := repository.NewCommentRepository(db, redisClient)
	reactionRepo := repository.NewReactionRepository(db, redisClient)
	profileRepo := repository.NewProfileRepository(db)

	// Services. MediaStorage stays nil when cloudinary is off so the post
	// service can degrade instead of panicking on a typed nil.
	var mediaStorage service.MediaStorage
	if media != nil {
		mediaStorage = media
	}

	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	relationshipService := service.NewRelationshipService(relationshipRepo, userRepo)
	postService := service.NewPostService(postRepo, userRepo, reactionRepo, commentRepo, mediaStorage)
	commentService := service.NewCommentService(commentRepo, userRepo, postRepo)
	reactionService := service.NewReactionService(reactionRepo, userRepo, postRepo)
	profileService := service.NewProfileService(profileRepo, userRepo, mediaStorage)

	// Handlers
	authHandler := NewAuthHandler(authService, cfg.JWTSecret)
	relationshipHandler := NewRelationshipHandler(relationshipService)
	postHandler := NewPostHandler(postService)
	commentHandler := NewCommentHandler(commentService)
	reactionHandler := NewReactionHandler(reactionService)
	profileHandler := NewProfileHandler(profileService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(corsMiddleware(cfg.ClientURL))

	if cfg.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		router.Use(limiter.Middleware())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	auth := authHandler.AuthMiddleware()

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		authRoutes.GET("/me", auth, authHandler.GetMe)
	}

	users := v1.Group("/users")
	{
		users.GET("/search", auth, authHandler.SearchUsers)
		users.GET("/:id", auth, authHandler.GetUser)
	}

	relationships := v1.Group("/relationships", auth)
	{
		relationships.POST("/request", relationshipHandler.SendRequest)
		relationships.POST("/:id/accept", relationshipHandler.Accept)
		relationships.POST("/:id/reject", relationshipHandler.Reject)
		relationships.POST("/:id/block", relationshipHandler.Block)
		relationships.POST("/:id/unblock", relationshipHandler.Unblock)
		relationships.DELETE("/:id", relationshipHandler.Unfriend)
		relationships.GET("", relationshipHandler.ListRelationships)
		relationships.GET("/pending", relationshipHandler.GetPendingRequests)
		relationships.GET("/friends", relationshipHandler.GetFriends)
		relationships.GET("/status/:userID", relationshipHandler.GetStatus)
	}

	posts := v1.Group("/posts")
	{
		posts.GET("", postHandler.ListPosts)
		posts.GET("/search", postHandler.SearchPosts)
		posts.GET("/me", auth, postHandler.GetMyPosts)
		posts.GET("/user/:userID", postHandler.GetUserPosts)
		posts.GET("/:id", postHandler.GetPost)
		posts.POST("", auth, postHandler.CreatePost)
		posts.PUT("/:id", auth, postHandler.UpdatePost)
		posts.DELETE("/:id", auth, postHandler.DeletePost)

		posts.GET("/:id/comments", commentHandler.GetPostComments)

		posts.PUT("/:id/reaction", auth, reactionHandler.SetReaction)
		posts.DELETE("/:id/reaction", auth, reactionHandler.DeleteReaction)
		posts.GET("/:id/reactions", reactionHandler.GetReactions)
		posts.GET("/:id/reactions/counts", reactionHandler.GetReactionCounts)
	}

	comments := v1.Group("/comments")
	{
		comments.POST("", auth, commentHandler.CreateComment)
		comments.GET("/user/:userID", commentHandler.GetUserComments)
		comments.GET("/:id", commentHandler.GetComment)
		comments.GET("/:id/replies", commentHandler.GetReplies)
		comments.PUT("/:id", auth, commentHandler.EditComment)
		comments.DELETE("/:id", auth, commentHandler.DeleteComment)
		comments.POST("/:id/restore", auth, commentHandler.RestoreComment)
	}

	profiles := v1.Group("/profiles")
	{
		profiles.GET("/me", auth, profileHandler.GetMyProfile)
		profiles.PUT("/me", auth, profileHandler.UpdateProfile)
		profiles.POST("/me/picture", auth, profileHandler.UploadPicture)
		profiles.GET("/:userID", profileHandler.GetProfile)
	}

	return router, nil
}

// initDB opens postgres and migrates the schema. TranslateError turns
// driver-level unique violations into gorm.ErrDuplicatedKey, which the
// relationship service relies on for its find-or-create fallback.
func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Relationship{},
		&model.Post{},
		&model.Attachment{},
		&model.Comment{},
		&model.Reaction{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Info("database connected and migrated")
	return db, nil
}

// initRedisWithRetry tries redis a few times before giving up. The app
// runs without the cache; repositories treat a nil client as a pass-through.
func initRedisWithRetry(cfg *config.Config, attempts int) *util.RedisClient {
	for i := 1; i <= attempts; i++ {
		client, err := util.NewRedisClient(cfg)
		if err == nil {
			logger.Info("redis connected",
				zap.String("host", cfg.RedisHost),
				zap.String("port", cfg.RedisPort),
			)
			return client
		}

		logger.Warn("redis connection failed",
			zap.Int("attempt", i),
			zap.Error(err),
		)
		time.Sleep(time.Duration(i) * time.Second)
	}

	logger.Warn("running without redis cache")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func corsMiddleware(clientURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", clientURL)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
