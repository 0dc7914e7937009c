package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmhernandez2525/learning-hall/internal/data/repos"
	types "github.com/dmhernandez2525/learning-hall/internal/domain"
	"github.com/dmhernandez2525/learning-hall/internal/platform/apierr"
	"github.com/dmhernandez2525/learning-hall/internal/platform/ctxutil"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

var errNotAuthenticated = errors.New("not authenticated")

type CourseService interface {
	ListUserCourses(ctx context.Context, tx *gorm.DB) ([]*types.Course, error)
	// OwnsCourse returns nil when the caller owns courseID and a 404 apierr otherwise.
	OwnsCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
}

type courseService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
}

func NewCourseService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo) CourseService {
	return &courseService{
		db:         db,
		log:        baseLog.With("service", "CourseService"),
		courseRepo: courseRepo,
	}
}

func (s *courseService) ListUserCourses(ctx context.Context, tx *gorm.DB) ([]*types.Course, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	courses, err := s.courseRepo.ListByUser(ctx, transaction, userID)
	if err != nil {
		s.log.Warn("ListUserCourses failed", "error", err, "user_id", userID)
		return nil, err
	}
	return courses, nil
}

func (s *courseService) OwnsCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	_, err = s.courseRepo.GetOwned(ctx, transaction, courseID, userID)
	return err
}

func requireUser(ctx context.Context) (uuid.UUID, error) {
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("unauthorized", errNotAuthenticated)
	}
	return userID, nil
}
