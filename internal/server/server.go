package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/inkwell-blog/inkwell/backend/internal/auth"
	"github.com/inkwell-blog/inkwell/backend/internal/config"
	"github.com/inkwell-blog/inkwell/backend/internal/database"
	"github.com/inkwell-blog/inkwell/backend/internal/handlers"
	"github.com/inkwell-blog/inkwell/backend/internal/middleware"
)

type Server struct {
	cfg          *config.Config
	db           database.Service
	handler      *handlers.Handler
	tokens       *auth.Tokens
	shareLimiter *middleware.IPRateLimiter
}

func New(cfg *config.Config, db database.Service, handler *handlers.Handler, tokens *auth.Tokens) *Server {
	return &Server{
		cfg:          cfg,
		db:           db,
		handler:      handler,
		tokens:       tokens,
		shareLimiter: middleware.NewIPRateLimiter(cfg.Share.RatePerMinute, cfg.Share.Burst),
	}
}

// HTTPServer wraps the router in an *http.Server listening on the configured
// port.
func (s *Server) HTTPServer() *http.Server {
	router := s.RegisterRoutes()

	port := s.cfg.Server.Port
	if port == "" {
		port = "8080" // local dev fallback
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// Stop releases background resources held by the middleware.
func (s *Server) Stop() {
	s.shareLimiter.Stop()
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	if !s.cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	if err := r.SetTrustedProxies(s.cfg.Server.TrustedProxies); err != nil {
		log.Printf("⚠️  Ignoring trusted proxies: %v", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		stats := s.db.Health()
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Post routes (public reads)
		api.GET("/posts", s.handler.Post.GetPosts)
		api.GET("/posts/:year/:month/:day/:slug", middleware.OptionalAuth(s.tokens), s.handler.Post.GetPost)
		api.GET("/tags/:tag/posts", s.handler.Post.GetTagPosts)

		// Reader intake (public)
		api.POST("/posts/:id/comments", s.handler.Comment.CreateComment)
		api.POST("/posts/:id/share", s.shareLimiter.Middleware(), s.handler.Share.SharePost)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(s.tokens))
		{
			protected.GET("/me", s.handler.User.GetMe)
			protected.GET("/me/favorites", s.handler.User.GetFavorites)

			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.PUT("/posts/:id", s.handler.Post.UpdatePost)
			protected.POST("/posts/:id/favorite", s.handler.Post.FavoritePost)
			protected.DELETE("/posts/:id/favorite", s.handler.Post.UnfavoritePost)

			protected.PATCH("/comments/:commentId", s.handler.Comment.ModerateComment)
		}
	}

	return r
}
