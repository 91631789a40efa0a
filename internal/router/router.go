package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/eduassess/eduassess-backend/internal/config"
	"github.com/eduassess/eduassess-backend/internal/handler"
	"github.com/eduassess/eduassess-backend/internal/middleware"
	"github.com/eduassess/eduassess-backend/internal/response"
	"github.com/eduassess/eduassess-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Paper      *handler.PaperHandler
	Submission *handler.SubmissionHandler
	Student    *handler.StudentHandler
	Exam       *handler.ExamHandler
	WS         *handler.WSHandler
	System     *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

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

	// Health check.
	router.GET("/health", handlers.System.Health)
	router.GET("/api/v1/status", handlers.System.Status)

	// Auth group (public).
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/instructor/login", handlers.Auth.InstructorLogin)
		auth.POST("/instructor/reset", handlers.Auth.InstructorReset)
	}

	// Instructor group (JWT).
	instructorAPI := router.Group("/api/v1/instructor")
	instructorAPI.Use(middleware.RequireInstructorJWT(authService))
	{
		instructorAPI.GET("/papers", handlers.Paper.List)
		instructorAPI.POST("/papers", handlers.Paper.Create)
		instructorAPI.DELETE("/papers/:id", handlers.Paper.Delete)
		instructorAPI.POST("/papers/extract", handlers.Paper.Extract)

		instructorAPI.GET("/students", handlers.Student.List)

		instructorAPI.GET("/submissions", handlers.Submission.List)
		instructorAPI.GET("/submissions/:id", handlers.Submission.Get)
		instructorAPI.GET("/submissions/:id/export", handlers.Submission.Export)
	}

	// Student group (JWT).
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/me", handlers.Auth.GetStudentProfile)
		studentAPI.GET("/papers", handlers.Exam.ListPapers)
		studentAPI.GET("/papers/:id", handlers.Exam.GetPaper)

		studentAPI.POST("/exam/start", handlers.Exam.Start)
		studentAPI.GET("/exam", handlers.Exam.State)
		studentAPI.GET("/exam/stats", handlers.Exam.Stats)
		studentAPI.PUT("/exam/answer/text", handlers.Exam.AnswerText)
		studentAPI.PUT("/exam/answer/image", handlers.Exam.AnswerImage)
		studentAPI.DELETE("/exam/answer/image", handlers.Exam.RemoveImage)
		studentAPI.POST("/exam/answer/table", handlers.Exam.InsertTable)
		studentAPI.PUT("/exam/answer/table/cell", handlers.Exam.SetTableCell)
		studentAPI.DELETE("/exam/answer/table", handlers.Exam.RemoveTable)
		studentAPI.POST("/exam/navigate", handlers.Exam.Navigate)
		studentAPI.POST("/exam/submit", handlers.Exam.Submit)
	}

	// WebSocket group (token query auth).
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/exam/stream", handlers.WS.ExamTickStream)
	}

	return router
}
