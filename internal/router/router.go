package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/leolibre/leolibre-backend/internal/config"
	"github.com/leolibre/leolibre-backend/internal/handler"
	"github.com/leolibre/leolibre-backend/internal/middleware"
	"github.com/leolibre/leolibre-backend/internal/response"
	"github.com/leolibre/leolibre-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Club     *handler.ClubHandler
	Resource *handler.ResourceHandler
	Quiz     *handler.QuizHandler
	Ranking  *handler.RankingHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the enrollment routes (30 requests per minute per IP).
	enrollLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Enrollment Group (No Club Token Yet) ───────────────────────
	// Creating a club and joining one happen before the caller holds a
	// club-scoped token.
	enroll := router.Group("/api/v1/clubs")
	enroll.Use(enrollLimiter.Middleware())
	{
		enroll.POST("", handlers.Club.CreateClub)
		enroll.GET("", handlers.Club.ListClubs)
		enroll.POST("/:club_id/join", handlers.Club.JoinClub)
	}

	// ─── 2. Member Group (Club JWT) ────────────────────────────────────
	memberAPI := router.Group("/api/v1/clubs/:club_id")
	memberAPI.Use(middleware.RequireJWT(authService))
	{
		memberAPI.GET("", handlers.Club.GetClub)
		memberAPI.GET("/members", handlers.Club.ListMembers)

		memberAPI.GET("/resources", handlers.Resource.ListResources)
		memberAPI.GET("/resources/:resource_id", handlers.Resource.GetResource)
		memberAPI.GET("/resources/:resource_id/download", handlers.Resource.DownloadResource)

		memberAPI.GET("/resources/:resource_id/quiz", handlers.Quiz.GetQuiz)
		memberAPI.POST("/resources/:resource_id/quiz/submit", handlers.Quiz.SubmitQuiz)
		memberAPI.GET("/resources/:resource_id/quiz/answered", handlers.Quiz.CheckAnswered)

		memberAPI.GET("/ranking", handlers.Ranking.ClubRanking)
		memberAPI.GET("/resources/:resource_id/ranking", handlers.Ranking.ResourceRanking)
	}

	// ─── 3. Founder Group (Club JWT + Founder Role) ────────────────────
	founderAPI := router.Group("/api/v1/clubs/:club_id")
	founderAPI.Use(middleware.RequireJWT(authService), middleware.RequireFounder())
	{
		founderAPI.PATCH("", handlers.Club.UpdateClub)
		founderAPI.DELETE("", handlers.Club.DeleteClub)

		founderAPI.GET("/requests", handlers.Club.ListRequests)
		founderAPI.POST("/requests/:user_id/approve", handlers.Club.ApproveRequest)
		founderAPI.POST("/requests/:user_id/reject", handlers.Club.RejectRequest)
		founderAPI.DELETE("/members/:user_id", handlers.Club.RemoveMember)

		founderAPI.POST("/resources", handlers.Resource.UploadResource)
		founderAPI.DELETE("/resources/:resource_id", handlers.Resource.DeleteResource)

		founderAPI.POST("/resources/:resource_id/quiz/regenerate", handlers.Quiz.RegenerateQuiz)
	}

	// ─── 4. WebSocket Group (WS Auth via ?token=) ──────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/clubs/:club_id/ranking", handlers.WS.ClubRankingStream)
	}

	return router
}
