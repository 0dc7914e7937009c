package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dmhernandez2525/learning-hall/internal/data/repos"
	types "github.com/dmhernandez2525/learning-hall/internal/domain"
	"github.com/dmhernandez2525/learning-hall/internal/domain/builder"
	"github.com/dmhernandez2525/learning-hall/internal/modules/builder/template"
	"github.com/dmhernandez2525/learning-hall/internal/observability"
	"github.com/dmhernandez2525/learning-hall/internal/platform/apierr"
	"github.com/dmhernandez2525/learning-hall/internal/platform/gcp"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

type TemplateExportService interface {
	// Export builds a template from modules and stores it for the calling user. With a bucket
	// configured the structure is also uploaded and the row records where.
	Export(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, modules []builder.Module) (*types.CourseTemplate, template.Structure, error)
	ListTemplates(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseTemplate, error)
}

type templateExportService struct {
	db           *gorm.DB
	log          *logger.Logger
	source       *template.Source
	courseRepo   repos.CourseRepo
	templateRepo repos.CourseTemplateRepo
	bucket       gcp.TemplateBucket
	metrics      *observability.Metrics
}

// NewTemplateExportService accepts a nil bucket; exports then stay database-only.
func NewTemplateExportService(
	db *gorm.DB,
	baseLog *logger.Logger,
	source *template.Source,
	courseRepo repos.CourseRepo,
	templateRepo repos.CourseTemplateRepo,
	bucket gcp.TemplateBucket,
	metrics *observability.Metrics,
) TemplateExportService {
	return &templateExportService{
		db:           db,
		log:          baseLog.With("service", "TemplateExportService"),
		source:       source,
		courseRepo:   courseRepo,
		templateRepo: templateRepo,
		bucket:       bucket,
		metrics:      metrics,
	}
}

func templateKey(courseID, templateID uuid.UUID) string {
	return fmt.Sprintf("templates/%s/%s.json", courseID, templateID)
}

func (s *templateExportService) Export(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, modules []builder.Module) (*types.CourseTemplate, template.Structure, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, template.Structure{}, err
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var structure template.Structure
	if s.source != nil {
		structure = s.source.Build(modules)
	} else {
		structure = template.Build(modules)
	}
	raw, err := json.Marshal(structure)
	if err != nil {
		s.metrics.IncTemplateBuild("error")
		return nil, structure, fmt.Errorf("marshal template: %w", err)
	}

	row := &types.CourseTemplate{
		ID:             uuid.New(),
		CourseID:       courseID,
		UserID:         userID,
		EstimatedHours: structure.EstimatedHours,
		Structure:      datatypes.JSON(raw),
	}
	if _, err := s.templateRepo.Create(ctx, transaction, []*types.CourseTemplate{row}); err != nil {
		s.metrics.IncTemplateBuild("error")
		return nil, structure, err
	}

	if s.bucket == nil {
		s.metrics.IncTemplateBuild("stored")
		return row, structure, nil
	}

	key := templateKey(courseID, row.ID)
	if err := s.bucket.UploadFile(ctx, key, bytes.NewReader(raw)); err != nil {
		s.log.Warn("template upload failed", "error", err, "course_id", courseID, "template_id", row.ID)
		s.metrics.IncTemplateBuild("upload_error")
		return row, structure, apierr.New(http.StatusBadGateway, "template_upload_failed", err)
	}
	url := s.bucket.GetPublicURL(key)
	if err := s.templateRepo.UpdateStorage(ctx, transaction, row.ID, key, url); err != nil {
		// the row does not point at the object, so nothing would ever clean it up
		if delErr := s.bucket.DeleteFile(ctx, key); delErr != nil {
			s.log.Warn("orphaned template object", "error", delErr, "key", key)
		}
		s.metrics.IncTemplateBuild("error")
		return row, structure, err
	}
	row.StorageKey = key
	row.PublicURL = url

	s.log.Info("template exported", "course_id", courseID, "template_id", row.ID, "key", key)
	s.metrics.IncTemplateBuild("uploaded")
	return row, structure, nil
}

func (s *templateExportService) ListTemplates(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseTemplate, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	if _, err := s.courseRepo.GetOwned(ctx, transaction, courseID, userID); err != nil {
		return nil, err
	}
	return s.templateRepo.GetByCourseAndUser(ctx, transaction, courseID, userID)
}
