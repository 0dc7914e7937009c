package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dmhernandez2525/learning-hall/internal/domain"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

// CourseRepo is read-mostly: the builder never edits course rows, it only checks ownership
// and lists what a user can open.
type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Course, error)
	GetOwned(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID) (*types.Course, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error) {
	if len(courses) == 0 {
		return []*types.Course{}, nil
	}
	if err := withTx(ctx, r.db, tx).Create(&courses).Error; err != nil {
		return nil, MapError("create course", err)
	}
	return courses, nil
}

// ListByUser returns the user's courses, most recently touched first.
func (r *courseRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Course, error) {
	out := []*types.Course{}
	if userID == uuid.Nil {
		return out, nil
	}
	err := withTx(ctx, r.db, tx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, MapError("list courses", err)
	}
	return out, nil
}

// GetOwned returns the course only when userID owns it. Missing and foreign courses are both not found.
func (r *courseRepo) GetOwned(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID) (*types.Course, error) {
	var course types.Course
	err := withTx(ctx, r.db, tx).
		Where("id = ? AND user_id = ?", courseID, userID).
		Take(&course).Error
	if err != nil {
		return nil, MapError("get owned course", err)
	}
	return &course, nil
}
