package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmhernandez2525/learning-hall/internal/data/repos"
	types "github.com/dmhernandez2525/learning-hall/internal/domain"
	"github.com/dmhernandez2525/learning-hall/internal/platform/apierr"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

type LessonService interface {
	ListLessonsForModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.Lesson, error)
}

type lessonService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	moduleRepo repos.CourseModuleRepo
	lessonRepo repos.LessonRepo
}

func NewLessonService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	moduleRepo repos.CourseModuleRepo,
	lessonRepo repos.LessonRepo,
) LessonService {
	return &lessonService{
		db:         db,
		log:        baseLog.With("service", "LessonService"),
		courseRepo: courseRepo,
		moduleRepo: moduleRepo,
		lessonRepo: lessonRepo,
	}
}

func (s *lessonService) ListLessonsForModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.Lesson, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if moduleID == uuid.Nil {
		return nil, apierr.BadRequest("missing_module_id", errors.New("missing module id"))
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	modules, err := s.moduleRepo.GetByIDs(ctx, transaction, []uuid.UUID{moduleID})
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 || modules[0] == nil {
		return nil, apierr.NotFound("not_found", errors.New("module not found"))
	}
	// Ownership is checked through the module's course; a foreign course reads as not found.
	if _, err := s.courseRepo.GetOwned(ctx, transaction, modules[0].CourseID, userID); err != nil {
		return nil, err
	}

	lessons, err := s.lessonRepo.GetByModuleIDs(ctx, transaction, []uuid.UUID{moduleID})
	if err != nil {
		s.log.Warn("ListLessonsForModule: load lessons failed", "error", err, "module_id", moduleID)
		return nil, err
	}
	return lessons, nil
}
