package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/examhall/backend/internal/config"
	"github.com/examhall/backend/internal/handler"
	"github.com/examhall/backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session *handler.SessionHandler
	Catalog *handler.CatalogHandler
	Result  *handler.ResultHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		// ─── Assessment sessions ───────────────────────────────────────
		sessions := api.Group("/sessions")
		{
			sessions.POST("/:session_id/enter", handlers.Session.Enter)
			sessions.POST("/:session_id/participant", handlers.Session.SubmitParticipant)
			sessions.POST("/:session_id/answers", handlers.Session.RecordAnswer)
			sessions.POST("/:session_id/finalize", handlers.Session.Finalize)
			sessions.GET("/:session_id", handlers.Session.GetState)
			sessions.DELETE("/:session_id", handlers.Session.Abandon)
		}

		// ─── Catalog (tests, exams, questions) ─────────────────────────
		api.GET("/tests", handlers.Catalog.ListTests)
		api.POST("/tests", handlers.Catalog.CreateTest)
		api.DELETE("/tests/:id", handlers.Catalog.DeleteTest)

		api.GET("/exams", handlers.Catalog.ListExams)
		api.POST("/exams", handlers.Catalog.CreateExam)
		api.DELETE("/exams/:id", handlers.Catalog.DeleteExam)

		api.GET("/questions", handlers.Catalog.ListQuestions)
		api.POST("/questions", handlers.Catalog.CreateQuestion)

		// ─── Result aggregates ─────────────────────────────────────────
		api.GET("/results", handlers.Result.List)
		api.DELETE("/results/:id", handlers.Result.DeleteAggregate)
		api.DELETE("/results/:id/participants/:index", handlers.Result.RemoveParticipant)
	}

	return router
}
