package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/dmhernandez2525/learning-hall/internal/modules/builder/template"
	"github.com/dmhernandez2525/learning-hall/internal/observability"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
	"github.com/dmhernandez2525/learning-hall/internal/realtime"
	"github.com/dmhernandez2525/learning-hall/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Course    services.CourseService
	Module    services.ModuleService
	Lesson    services.LessonService
	Templates services.TemplateExportService
	Builder   services.BuilderService

	Heuristics *template.Source
	Emitter    services.SSEEmitter
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	reposet Repos,
	clients Clients,
	hub *realtime.SSEHub,
	metrics *observability.Metrics,
) (Services, error) {
	log.Info("Wiring services...")

	auth, err := services.NewAuthService(log, cfg.JWTSecretKey)
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	heuristics, err := template.NewSource(cfg.HeuristicsFile, log)
	if err != nil {
		return Services{}, fmt.Errorf("load template heuristics: %w", err)
	}

	// With a bus every instance re-broadcasts into its own hub, so events are published once.
	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.Bus != nil {
		emitter = &services.BusEmitter{Bus: clients.Bus, Log: log}
	}

	courses := services.NewCourseService(db, log, reposet.Course)
	templates := services.NewTemplateExportService(
		db,
		log,
		heuristics,
		reposet.Course,
		reposet.CourseTemplate,
		clients.TemplateBucket,
		metrics,
	)
	builderSvc := services.NewBuilderService(
		db,
		log,
		services.BuilderConfig{
			AutosaveDebounce: cfg.AutosaveDebounce,
			HistoryLimit:     cfg.HistoryLimit,
			SessionIdleTTL:   cfg.SessionIdleTTL,
		},
		reposet.Course,
		reposet.CourseModule,
		reposet.Lesson,
		reposet.CourseDraft,
		templates,
		services.NewBuilderNotifier(emitter),
		metrics,
	)

	return Services{
		Auth:       auth,
		Course:     courses,
		Module:     services.NewModuleService(db, log, reposet.Course, reposet.CourseModule),
		Lesson:     services.NewLessonService(db, log, reposet.Course, reposet.CourseModule, reposet.Lesson),
		Templates:  templates,
		Builder:    builderSvc,
		Heuristics: heuristics,
		Emitter:    emitter,
	}, nil
}
