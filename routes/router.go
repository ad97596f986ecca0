package routes

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/gram/auth"
	"github.com/cppla/gram/config"
	"github.com/cppla/gram/controllers"
	"github.com/cppla/gram/middleware"
	"github.com/cppla/gram/store"
	"github.com/cppla/gram/utils"
)

// Deps are the collaborators built once in main.
type Deps struct {
	Config  config.AppConfig
	Store   store.Store
	Hasher  auth.Hasher
	Tokens  *auth.TokenService
	Limiter middleware.Limiter
	Logger  *zap.Logger
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	log := deps.Logger
	if log == nil {
		log = utils.Logger
	}
	limiter := deps.Limiter
	if limiter == nil || !cfg.RateLimitEnabled {
		limiter = middleware.AllowAll{}
	}

	authenticator, err := auth.NewAuthenticator(deps.Store, deps.Hasher, deps.Tokens)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	// ClientIP keys the rate limiter, so forwarded headers count only from
	// configured proxies
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(middleware.RequestID())
	// access log goes to its own rolling file; fall back to the app logger
	accessLog := log
	if cfg.GinPath != "" {
		if gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg); err == nil {
			accessLog = gl
		} else {
			log.Warn("gin access log unavailable", zap.String("path", cfg.GinPath), zap.Error(err))
		}
	}
	r.Use(utils.Ginzap(accessLog, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(accessLog, false))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		if err := deps.Store.Ping(ctx.Request.Context()); err != nil {
			log.Error("health check failed", zap.Error(err))
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	limit := func(name string) gin.HandlerFunc {
		return middleware.RateLimit(limiter, name, cfg.Rule(name), log)
	}
	requireAuth := middleware.AuthRequired(deps.Tokens, deps.Store)

	authController := controllers.NewAuthController(authenticator)
	userController := controllers.NewUserController(deps.Store, deps.Hasher)
	postController := controllers.NewPostController(deps.Store)
	commentController := controllers.NewCommentController(deps.Store)

	// every API route shares the default rule on top of its own
	api := r.Group("", limit(config.RuleDefault))

	api.POST("/auth/token", limit(config.RuleToken), authController.Token)

	users := api.Group("/users")
	users.POST("", limit(config.RuleCreateUser), userController.Create)
	users.GET("/me", requireAuth, userController.Me)
	users.PATCH("/me", limit(config.RuleUpdateUser), requireAuth, userController.UpdateMe)
	users.GET("/me/posts", requireAuth, userController.MyPosts)
	users.GET("/:id", userController.Get)
	users.GET("/:id/posts", userController.Posts)

	posts := api.Group("/posts")
	posts.POST("", limit(config.RuleCreatePost), requireAuth, postController.Create)
	posts.GET("/:id", postController.Get)
	posts.PATCH("/:id", limit(config.RuleUpdatePost), requireAuth, postController.Update)
	posts.DELETE("/:id", limit(config.RuleDeletePost), requireAuth, postController.Delete)

	comments := api.Group("/comments")
	comments.POST("/:post_id", limit(config.RuleCreateComment), requireAuth, commentController.Create)
	comments.GET("/:post_id", commentController.List)
	comments.GET("/:post_id/:comment_id", commentController.Get)
	comments.PATCH("/:post_id/:comment_id", limit(config.RuleUpdateComment), requireAuth, commentController.Update)
	comments.DELETE("/:post_id/:comment_id", limit(config.RuleDeleteComment), requireAuth, commentController.Delete)

	r.NoRoute(func(ctx *gin.Context) {
		utils.AbortWithError(ctx, utils.NotFound("Not Found"))
	})

	return r, nil
}
