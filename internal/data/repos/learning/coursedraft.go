package learning

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/dmhernandez2525/learning-hall/internal/domain"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

type CourseDraftRepo interface {
	// GetByCourseAndUser returns nil, nil when the user has no draft for the course.
	GetByCourseAndUser(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID) (*types.CourseDraft, error)
	// Save writes snapshot as the user's draft and bumps its revision (first save is revision 1).
	Save(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID, snapshot datatypes.JSON, savedAt time.Time) (*types.CourseDraft, error)
	DeleteByCourseAndUser(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID) error
}

type courseDraftRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseDraftRepo(db *gorm.DB, baseLog *logger.Logger) CourseDraftRepo {
	repoLog := baseLog.With("repo", "CourseDraftRepo")
	return &courseDraftRepo{db: db, log: repoLog}
}

func (r *courseDraftRepo) GetByCourseAndUser(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID) (*types.CourseDraft, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var draft types.CourseDraft
	err := transaction.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, MapError("get course draft", err)
	}
	return &draft, nil
}

func (r *courseDraftRepo) Save(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID, snapshot datatypes.JSON, savedAt time.Time) (*types.CourseDraft, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	existing, err := r.GetByCourseAndUser(ctx, transaction, courseID, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		draft := &types.CourseDraft{
			CourseID: courseID,
			UserID:   userID,
			Revision: 1,
			Snapshot: snapshot,
			SavedAt:  savedAt,
		}
		if err := transaction.WithContext(ctx).Create(draft).Error; err != nil {
			return nil, MapError("create course draft", err)
		}
		r.log.Debug("Course draft created", "course_id", courseID, "user_id", userID)
		return draft, nil
	}

	res := transaction.WithContext(ctx).
		Model(&types.CourseDraft{}).
		Where("id = ? AND revision = ?", existing.ID, existing.Revision).
		Updates(map[string]interface{}{
			"snapshot":   snapshot,
			"revision":   gorm.Expr("revision + 1"),
			"saved_at":   savedAt,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, MapError("update course draft", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, MapError("update course draft", errors.New("duplicate key: draft revision changed concurrently"))
	}

	existing.Snapshot = snapshot
	existing.Revision++
	existing.SavedAt = savedAt
	r.log.Debug("Course draft saved", "course_id", courseID, "revision", existing.Revision)
	return existing, nil
}

func (r *courseDraftRepo) DeleteByCourseAndUser(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Delete(&types.CourseDraft{}).Error; err != nil {
		return MapError("delete course draft", err)
	}
	return nil
}
