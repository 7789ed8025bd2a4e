package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yufurikuto/EduExam/internal/config"
	"github.com/yufurikuto/EduExam/internal/database"
	"github.com/yufurikuto/EduExam/internal/handler"
	"github.com/yufurikuto/EduExam/internal/logger"
	"github.com/yufurikuto/EduExam/internal/metrics"
	"github.com/yufurikuto/EduExam/internal/middleware"
	"github.com/yufurikuto/EduExam/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Subject  *handler.SubjectHandler
	Exam     *handler.ExamHandler
	Question *handler.QuestionHandler
	Result   *handler.ResultHandler
	Student  *handler.StudentHandler
	WS       *handler.WSHandler
}

// Deps are the shared pieces the middleware chain needs.
type Deps struct {
	Auth          middleware.Authenticator
	SubmitLimiter *middleware.RateLimiter
	HealthChecks  map[string]database.PingFunc
	Log           zerolog.Logger
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(deps Deps, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// Apply request ID middleware first so every log line and response carries it.
	router.Use(response.RequestIDMiddleware())
	router.Use(logger.RequestLogger(deps.Log))
	router.Use(metrics.Middleware())

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

	// promhttp compresses /metrics itself.
	brotliCfg := middleware.DefaultBrotliConfig
	brotliCfg.Skipper = func(c *gin.Context) bool { return c.Request.URL.Path == "/metrics" }
	router.Use(middleware.BrotliWithConfig(brotliCfg))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		results := database.Check(c.Request.Context(), deps.HealthChecks)
		stores := make(gin.H, len(results))
		status := http.StatusOK
		for name, err := range results {
			stores[name] = "ok"
			if err != nil {
				stores[name] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		response.Success(c, status, gin.H{"status": state, "stores": stores})
	})
	router.GET("/metrics", metrics.Handler())

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth/teacher")
	{
		auth.POST("/login", handlers.Auth.TeacherLogin)

		teacherOnly := []gin.HandlerFunc{
			middleware.RequireTeacherJWT(deps.Auth),
			middleware.CheckTeacherSession(deps.Auth),
			middleware.NoStore(),
		}
		auth.POST("/logout", append(teacherOnly, handlers.Auth.TeacherLogout)...)
		auth.GET("/me", append(teacherOnly, handlers.Auth.GetTeacherProfile)...)
	}

	// ─── 2. Public Group (share link, no auth) ─────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/exams/:exam_id", middleware.NoStore(), handlers.Student.GetExamPaper)
		publicAPI.POST("/exams/:exam_id/submit", deps.SubmitLimiter.Middleware(), handlers.Student.SubmitExam)
		publicAPI.GET("/exams/:exam_id/drafts/:draft_id", middleware.NoStore(), handlers.Student.GetDraft)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/exams/:exam_id/stream", handlers.WS.ExamWebSocketStream)
	}

	// ─── 4. Teacher Group (JWT + Redis session) ────────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(
		middleware.RequireTeacherJWT(deps.Auth),
		middleware.CheckTeacherSession(deps.Auth),
		middleware.NoStore(),
	)
	{
		teacherAPI.GET("/subjects", handlers.Subject.GetAll)
		teacherAPI.POST("/subjects", handlers.Subject.Create)
		teacherAPI.DELETE("/subjects/:id", handlers.Subject.Delete)

		teacherAPI.GET("/exams", handlers.Exam.ListExams)
		teacherAPI.POST("/exams", handlers.Exam.CreateExam)
		teacherAPI.GET("/exams/:exam_id", handlers.Exam.GetExam)
		teacherAPI.PUT("/exams/:exam_id", handlers.Exam.UpdateExam)
		teacherAPI.DELETE("/exams/:exam_id", handlers.Exam.DeleteExam)

		teacherAPI.GET("/exams/:exam_id/questions", handlers.Question.ListQuestions)
		teacherAPI.PUT("/exams/:exam_id/questions", handlers.Question.SaveQuestions)
		teacherAPI.GET("/exams/:exam_id/questions/copy", handlers.Question.CopyQuestions)
		teacherAPI.POST("/questions/import", handlers.Question.ImportText)

		teacherAPI.GET("/exams/:exam_id/results", handlers.Result.ListResults)
		teacherAPI.GET("/exams/:exam_id/analysis", handlers.Result.GetAnalysis)
		teacherAPI.GET("/results/:result_id", handlers.Result.GetResult)
		teacherAPI.PATCH("/results/:result_id/details/:detail_id", handlers.Result.OverrideDetail)
	}

	return router
}
