package app

import (
	"gorm.io/gorm"

	httpserver "github.com/dmhernandez2525/learning-hall/internal/http"
	httpH "github.com/dmhernandez2525/learning-hall/internal/http/handlers"
	httpMW "github.com/dmhernandez2525/learning-hall/internal/http/middleware"
	"github.com/dmhernandez2525/learning-hall/internal/observability"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
	"github.com/dmhernandez2525/learning-hall/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Realtime *httpH.RealtimeHandler
	Course   *httpH.CourseHandler
	Module   *httpH.ModuleHandler
	Lesson   *httpH.LessonHandler
	Builder  *httpH.BuilderHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services, sseHub *realtime.SSEHub, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Realtime: httpH.NewRealtimeHandler(log, sseHub, services.Course, metrics),
		Course:   httpH.NewCourseHandler(log, services.Course, services.Templates),
		Module:   httpH.NewModuleHandler(services.Module),
		Lesson:   httpH.NewLessonHandler(services.Lesson),
		Builder:  httpH.NewBuilderHandler(log, services.Builder),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *httpserver.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return httpserver.NewServer(":"+cfg.Port, httpserver.RouterConfig{
		Log:             log,
		ServiceName:     serviceName,
		CORSOrigins:     cfg.CORSOrigins,
		Metrics:         metrics,
		AuthMiddleware:  middleware.Auth,
		HealthHandler:   handlers.Health,
		RealtimeHandler: handlers.Realtime,
		CourseHandler:   handlers.Course,
		ModuleHandler:   handlers.Module,
		LessonHandler:   handlers.Lesson,
		BuilderHandler:  handlers.Builder,
	})
}
