package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/dmhernandez2525/learning-hall/internal/domain"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

var lessonSyncColumns = []string{"module_id", "index", "title", "kind", "is_preview", "content_md", "updated_at", "deleted_at"}

type LessonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error)
	Upsert(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) error
	GetByIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.Lesson, error)
	GetByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.Lesson, error)
	SoftDeleteByCourseIDExcept(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, keepIDs []uuid.UUID) error
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error) {
	if len(lessons) == 0 {
		return []*types.Lesson{}, nil
	}
	if err := withTx(ctx, r.db, tx).Create(&lessons).Error; err != nil {
		return nil, MapError("create lessons", err)
	}
	return lessons, nil
}

// Upsert inserts lessons or overwrites them by id, moving them between modules when module_id changed.
func (r *lessonRepo) Upsert(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) error {
	if len(lessons) == 0 {
		return nil
	}
	err := withTx(ctx, r.db, tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(lessonSyncColumns),
		}).
		Create(&lessons).Error
	if err != nil {
		return MapError("upsert lessons", err)
	}
	return nil
}

func (r *lessonRepo) GetByIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.Lesson, error) {
	out := []*types.Lesson{}
	if len(lessonIDs) == 0 {
		return out, nil
	}
	if err := withTx(ctx, r.db, tx).Where("id IN ?", lessonIDs).Find(&out).Error; err != nil {
		return nil, MapError("get lessons", err)
	}
	return out, nil
}

func (r *lessonRepo) GetByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.Lesson, error) {
	out := []*types.Lesson{}
	if len(moduleIDs) == 0 {
		return out, nil
	}
	err := withTx(ctx, r.db, tx).
		Where("module_id IN ?", moduleIDs).
		Order(`module_id, "index" ASC`).
		Find(&out).Error
	if err != nil {
		return nil, MapError("get lessons by module", err)
	}
	return out, nil
}

// SoftDeleteByCourseIDExcept removes every live lesson under any module of courseID whose id is
// not in keepIDs. Lessons of already deleted modules are included.
func (r *lessonRepo) SoftDeleteByCourseIDExcept(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, keepIDs []uuid.UUID) error {
	q := withTx(ctx, r.db, tx).
		Where("module_id IN (SELECT id FROM course_module WHERE course_id = ?)", courseID)
	if len(keepIDs) > 0 {
		q = q.Where("id NOT IN ?", keepIDs)
	}
	if err := q.Delete(&types.Lesson{}).Error; err != nil {
		return MapError("prune lessons", err)
	}
	return nil
}
