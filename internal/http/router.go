package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(logger *zap.Logger, subjectH *SubjectHandler) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	subjects := r.Group("/subjects")
	subjects.GET("", subjectH.ListSubjects)
	subjects.POST("", subjectH.CreateSubject)
	subjects.GET("/:id", subjectH.GetSubject)
	subjects.PATCH("/:id", subjectH.EditSubject)
	subjects.DELETE("/:id", subjectH.DeleteSubject)
	subjects.POST("/:id/activate", subjectH.ActivateSubject)
	subjects.POST("/:id/analyze", subjectH.AnalyzeEvidence)
	subjects.GET("/:id/export", subjectH.ExportReport)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
