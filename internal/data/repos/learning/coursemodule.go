package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/dmhernandez2525/learning-hall/internal/domain"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

// moduleSyncColumns are overwritten when a saved builder snapshot lands on an existing row.
var moduleSyncColumns = []string{"course_id", "index", "title", "description", "updated_at", "deleted_at"}

type CourseModuleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, modules []*types.CourseModule) ([]*types.CourseModule, error)
	Upsert(ctx context.Context, tx *gorm.DB, modules []*types.CourseModule) error
	GetByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.CourseModule, error)
	GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.CourseModule, error)
	SoftDeleteByCourseIDExcept(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, keepIDs []uuid.UUID) error
}

type courseModuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseModuleRepo(db *gorm.DB, baseLog *logger.Logger) CourseModuleRepo {
	return &courseModuleRepo{db: db, log: baseLog.With("repo", "CourseModuleRepo")}
}

func (r *courseModuleRepo) Create(ctx context.Context, tx *gorm.DB, modules []*types.CourseModule) ([]*types.CourseModule, error) {
	if len(modules) == 0 {
		return []*types.CourseModule{}, nil
	}
	if err := withTx(ctx, r.db, tx).Create(&modules).Error; err != nil {
		return nil, MapError("create course modules", err)
	}
	return modules, nil
}

// Upsert inserts modules or overwrites them by id. A soft-deleted row comes back to life.
func (r *courseModuleRepo) Upsert(ctx context.Context, tx *gorm.DB, modules []*types.CourseModule) error {
	if len(modules) == 0 {
		return nil
	}
	err := withTx(ctx, r.db, tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(moduleSyncColumns),
		}).
		Create(&modules).Error
	if err != nil {
		return MapError("upsert course modules", err)
	}
	return nil
}

func (r *courseModuleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.CourseModule, error) {
	out := []*types.CourseModule{}
	if len(moduleIDs) == 0 {
		return out, nil
	}
	if err := withTx(ctx, r.db, tx).Where("id IN ?", moduleIDs).Find(&out).Error; err != nil {
		return nil, MapError("get course modules", err)
	}
	return out, nil
}

// GetByCourseIDs returns live modules grouped by course and ordered by position.
func (r *courseModuleRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.CourseModule, error) {
	out := []*types.CourseModule{}
	if len(courseIDs) == 0 {
		return out, nil
	}
	err := withTx(ctx, r.db, tx).
		Where("course_id IN ?", courseIDs).
		Order(`course_id, "index" ASC`).
		Find(&out).Error
	if err != nil {
		return nil, MapError("get course modules by course", err)
	}
	return out, nil
}

// SoftDeleteByCourseIDExcept removes every live module of courseID whose id is not in keepIDs.
// An empty keepIDs removes them all.
func (r *courseModuleRepo) SoftDeleteByCourseIDExcept(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, keepIDs []uuid.UUID) error {
	q := withTx(ctx, r.db, tx).Where("course_id = ?", courseID)
	if len(keepIDs) > 0 {
		q = q.Where("id NOT IN ?", keepIDs)
	}
	if err := q.Delete(&types.CourseModule{}).Error; err != nil {
		return MapError("prune course modules", err)
	}
	return nil
}
