package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dmhernandez2525/learning-hall/internal/domain"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

type CourseTemplateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, templates []*types.CourseTemplate) ([]*types.CourseTemplate, error)
	GetByCourseAndUser(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID) ([]*types.CourseTemplate, error)
	UpdateStorage(ctx context.Context, tx *gorm.DB, templateID uuid.UUID, storageKey, publicURL string) error
}

type courseTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseTemplateRepo(db *gorm.DB, baseLog *logger.Logger) CourseTemplateRepo {
	repoLog := baseLog.With("repo", "CourseTemplateRepo")
	return &courseTemplateRepo{db: db, log: repoLog}
}

func (r *courseTemplateRepo) Create(ctx context.Context, tx *gorm.DB, templates []*types.CourseTemplate) ([]*types.CourseTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(templates) == 0 {
		return []*types.CourseTemplate{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&templates).Error; err != nil {
		return nil, MapError("create course templates", err)
	}
	return templates, nil
}

// GetByCourseAndUser lists templates newest first.
func (r *courseTemplateRepo) GetByCourseAndUser(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID) ([]*types.CourseTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CourseTemplate
	if err := transaction.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, MapError("get course templates", err)
	}
	return results, nil
}

func (r *courseTemplateRepo) UpdateStorage(ctx context.Context, tx *gorm.DB, templateID uuid.UUID, storageKey, publicURL string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.CourseTemplate{}).
		Where("id = ?", templateID).
		Updates(map[string]interface{}{
			"storage_key": storageKey,
			"public_url":  publicURL,
		})
	if res.Error != nil {
		return MapError("update course template storage", res.Error)
	}
	if res.RowsAffected == 0 {
		return MapError("update course template storage", gorm.ErrRecordNotFound)
	}
	return nil
}
