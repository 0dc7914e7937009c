package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dmhernandez2525/learning-hall/internal/domain"
	"github.com/dmhernandez2525/learning-hall/internal/domain/builder"
	"github.com/dmhernandez2525/learning-hall/internal/modules/builder/reorder"
)

// rowID maps a snapshot id to a row id. Editor-minted ids that are not uuids get a stable
// name-based uuid scoped to the course.
func rowID(courseID uuid.UUID, id string) uuid.UUID {
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed
	}
	return uuid.NewSHA1(courseID, []byte(id))
}

func optionalString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// snapshotFromRows builds the initial editor state from persisted structure.
func snapshotFromRows(modules []*types.CourseModule, lessons []*types.Lesson) builder.Snapshot {
	byModule := make(map[uuid.UUID][]builder.Lesson, len(modules))
	for _, l := range lessons {
		if l == nil {
			continue
		}
		byModule[l.ModuleID] = append(byModule[l.ModuleID], builder.Lesson{
			ID:          l.ID.String(),
			Title:       l.Title,
			Position:    l.Index,
			ContentType: builder.ContentType(l.Kind),
			IsPreview:   l.IsPreview,
			ContentText: optionalString(l.ContentMD),
		})
	}

	out := make([]builder.Module, 0, len(modules))
	for _, m := range modules {
		if m == nil {
			continue
		}
		ls := byModule[m.ID]
		if ls == nil {
			ls = []builder.Lesson{}
		}
		out = append(out, builder.Module{
			ID:          m.ID.String(),
			Title:       m.Title,
			Description: optionalString(m.Description),
			Position:    m.Index,
			Lessons:     ls,
		})
	}
	return builder.Snapshot{Modules: reorder.Renumber(out)}
}

// rowsFromSnapshot is the inverse of snapshotFromRows.
func rowsFromSnapshot(courseID uuid.UUID, snap builder.Snapshot) ([]*types.CourseModule, []*types.Lesson) {
	modules := make([]*types.CourseModule, 0, len(snap.Modules))
	lessons := make([]*types.Lesson, 0, snap.LessonCount())
	for _, m := range snap.Modules {
		moduleID := rowID(courseID, m.ID)
		modules = append(modules, &types.CourseModule{
			ID:          moduleID,
			CourseID:    courseID,
			Index:       m.Position,
			Title:       m.Title,
			Description: derefString(m.Description),
		})
		for _, l := range m.Lessons {
			lessons = append(lessons, &types.Lesson{
				ID:        rowID(courseID, l.ID),
				ModuleID:  moduleID,
				Index:     l.Position,
				Title:     l.Title,
				Kind:      string(l.ContentType),
				IsPreview: l.IsPreview,
				ContentMD: derefString(l.ContentText),
			})
		}
	}
	return modules, lessons
}

// syncStructure makes course_module and lesson rows mirror snap. Rows missing from snap are
// soft-deleted; lessons go first so no live lesson points at a deleted module.
func (s *builderService) syncStructure(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, snap builder.Snapshot) error {
	modules, lessons := rowsFromSnapshot(courseID, snap)

	if err := s.moduleRepo.Upsert(ctx, tx, modules); err != nil {
		return fmt.Errorf("upsert modules: %w", err)
	}
	if err := s.lessonRepo.Upsert(ctx, tx, lessons); err != nil {
		return fmt.Errorf("upsert lessons: %w", err)
	}

	lessonIDs := make([]uuid.UUID, 0, len(lessons))
	for _, l := range lessons {
		lessonIDs = append(lessonIDs, l.ID)
	}
	if err := s.lessonRepo.SoftDeleteByCourseIDExcept(ctx, tx, courseID, lessonIDs); err != nil {
		return fmt.Errorf("prune lessons: %w", err)
	}

	moduleIDs := make([]uuid.UUID, 0, len(modules))
	for _, m := range modules {
		moduleIDs = append(moduleIDs, m.ID)
	}
	if err := s.moduleRepo.SoftDeleteByCourseIDExcept(ctx, tx, courseID, moduleIDs); err != nil {
		return fmt.Errorf("prune modules: %w", err)
	}
	return nil
}
