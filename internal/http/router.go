package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/dmhernandez2525/learning-hall/internal/http/handlers"
	httpMW "github.com/dmhernandez2525/learning-hall/internal/http/middleware"
	"github.com/dmhernandez2525/learning-hall/internal/observability"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	RealtimeHandler *httpH.RealtimeHandler
	CourseHandler   *httpH.CourseHandler
	ModuleHandler   *httpH.ModuleHandler
	LessonHandler   *httpH.LessonHandler
	BuilderHandler  *httpH.BuilderHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	protected := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
			protected.POST("/sse/subscribe", cfg.RealtimeHandler.SSESubscribe)
			protected.POST("/sse/unsubscribe", cfg.RealtimeHandler.SSEUnsubscribe)
		}

		// Course
		if cfg.CourseHandler != nil {
			protected.GET("/courses", cfg.CourseHandler.ListUserCourses)
			protected.GET("/courses/:id/templates", cfg.CourseHandler.ListCourseTemplates)
		}

		// Module
		if cfg.ModuleHandler != nil {
			protected.GET("/courses/:id/modules", cfg.ModuleHandler.ListModulesForCourse)
		}

		// Lesson
		if cfg.LessonHandler != nil {
			protected.GET("/modules/:id/lessons", cfg.LessonHandler.ListModuleLessons)
		}

		// Course builder
		if cfg.BuilderHandler != nil {
			protected.POST("/courses/:id/builder/sessions", cfg.BuilderHandler.OpenSession)

			sessions := protected.Group("/builder/sessions/:id")
			sessions.GET("", cfg.BuilderHandler.GetSession)
			sessions.DELETE("", cfg.BuilderHandler.CloseSession)
			sessions.PUT("/snapshot", cfg.BuilderHandler.ApplySnapshot)
			sessions.POST("/reorder/modules", cfg.BuilderHandler.ReorderModules)
			sessions.POST("/reorder/lessons", cfg.BuilderHandler.ReorderLessons)
			sessions.POST("/lessons/move", cfg.BuilderHandler.MoveLesson)
			sessions.POST("/undo", cfg.BuilderHandler.Undo)
			sessions.POST("/redo", cfg.BuilderHandler.Redo)
			sessions.POST("/save", cfg.BuilderHandler.SaveNow)
			sessions.POST("/template", cfg.BuilderHandler.BuildTemplate)
		}
	}

	return r
}
