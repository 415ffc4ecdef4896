package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/guestsnap/guestsnap/internal/auth"
	"github.com/guestsnap/guestsnap/internal/config"
	"github.com/guestsnap/guestsnap/internal/handlers"
	"github.com/guestsnap/guestsnap/internal/middleware"
	"github.com/guestsnap/guestsnap/internal/storage"
	"github.com/guestsnap/guestsnap/internal/types"
	"gorm.io/gorm"
)

func New(cfg *config.Config, gdb *gorm.DB, store storage.ObjectStore, logger *slog.Logger) *gin.Engine {
	r := gin.Default()

	origins := append([]string{}, types.DefaultOrigins...)
	if cfg.FrontendOrigin != "" {
		origins = append(origins, cfg.FrontendOrigin)
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authRequired := middleware.AuthRequired(gdb, tokens)

	hub := handlers.NewHub(logger)
	authHandler := handlers.NewAuthHandler(gdb, tokens, logger)
	projectHandler := handlers.NewProjectHandler(gdb, store, cfg, logger)
	uploadHandler := handlers.NewUploadHandler(gdb, store, hub, cfg.MaxUploadBytes, logger)
	wsHandler := handlers.NewWSHandler(gdb, hub, origins, logger)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:project_id", authRequired, wsHandler.Connect)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/verify", authRequired, authHandler.Verify)
		}

		// Guest-facing routes: no authentication, gated only by knowledge
		// of the opaque project id.
		api.GET("/projects/latest", projectHandler.Latest)
		api.GET("/projects/:project_id", projectHandler.Get)
		api.POST("/upload", uploadHandler.Upload)

		projects := api.Group("/projects", authRequired)
		{
			projects.POST("", projectHandler.Create)
			projects.GET("", projectHandler.List)
			projects.DELETE("/:project_id", projectHandler.Delete)
			projects.POST("/:project_id/compile", projectHandler.Compile)
		}
	}

	return r
}
