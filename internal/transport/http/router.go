package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter mounts the REST API under /api and the leaderboard feed under /ws.
func NewRouter(service QuizService, log *zap.Logger, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(log))
	r.Use(gin.Recovery())
	corsConfig := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))

	h := NewHandler(service, log)
	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		players := api.Group("/players")
		{
			players.POST("", h.RegisterPlayer)
			players.GET("/:id", h.GetPlayer)
		}

		games := api.Group("/games")
		{
			games.POST("/start", h.StartGame)
			games.POST("/:id/answer", h.SubmitAnswer)
			games.POST("/:id/complete", h.CompleteGame)
		}

		api.GET("/leaderboard", h.Leaderboard)
	}

	ws := NewWSHandler(service, log)
	r.GET("/ws/leaderboard", gin.WrapF(ws.ServeWS))
	return r
}

// requestLogger writes one zap line per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if errs := c.Errors.String(); errs != "" {
			fields = append(fields, zap.String("errors", errs))
		}
		log.Info("http_request", fields...)
	}
}
