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

type ModuleService interface {
	ListModulesForCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseModule, error)
}

type moduleService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	moduleRepo repos.CourseModuleRepo
}

func NewModuleService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	moduleRepo repos.CourseModuleRepo,
) ModuleService {
	return &moduleService{
		db:         db,
		log:        baseLog.With("service", "ModuleService"),
		courseRepo: courseRepo,
		moduleRepo: moduleRepo,
	}
}

func (s *moduleService) ListModulesForCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseModule, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if courseID == uuid.Nil {
		return nil, apierr.BadRequest("missing_course_id", errors.New("missing course id"))
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	// Ownership check: course must belong to user
	if _, err := s.courseRepo.GetOwned(ctx, transaction, courseID, userID); err != nil {
		return nil, err
	}

	modules, err := s.moduleRepo.GetByCourseIDs(ctx, transaction, []uuid.UUID{courseID})
	if err != nil {
		s.log.Warn("ListModulesForCourse: load modules failed", "error", err, "course_id", courseID)
		return nil, err
	}
	return modules, nil
}
