package learning

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/dmhernandez2525/learning-hall/internal/data/repos/testutil"
	types "github.com/dmhernandez2525/learning-hall/internal/domain"
)

func TestLessonRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewLessonRepo(db, testutil.Logger(t))

	course := testutil.SeedCourse(t, ctx, tx, uuid.New())
	m1 := testutil.SeedCourseModule(t, ctx, tx, course.ID, 0)
	m2 := testutil.SeedCourseModule(t, ctx, tx, course.ID, 1)
	l1 := testutil.SeedLesson(t, ctx, tx, m1.ID, 0, "text")
	l2 := testutil.SeedLesson(t, ctx, tx, m1.ID, 1, "video")

	if rows, err := repo.GetByModuleIDs(ctx, tx, []uuid.UUID{m1.ID}); err != nil || len(rows) != 2 {
		t.Fatalf("GetByModuleIDs: err=%v len=%d", err, len(rows))
	}

	// move l2 into m2 and add a new lesson there
	l2.ModuleID, l2.Index = m2.ID, 0
	l3 := &types.Lesson{ID: uuid.New(), ModuleID: m2.ID, Index: 1, Title: "quiz", Kind: "quiz"}
	if err := repo.Upsert(ctx, tx, []*types.Lesson{l2, l3}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	rows, err := repo.GetByModuleIDs(ctx, tx, []uuid.UUID{m2.ID})
	if err != nil || len(rows) != 2 {
		t.Fatalf("m2 lessons: err=%v len=%d", err, len(rows))
	}
	for i, row := range rows {
		if row.Index != i {
			t.Fatalf("positions should stay dense: index=%d at %d", row.Index, i)
		}
	}

	if err := repo.SoftDeleteByCourseIDExcept(ctx, tx, course.ID, []uuid.UUID{l2.ID, l3.ID}); err != nil {
		t.Fatalf("SoftDeleteByCourseIDExcept: %v", err)
	}
	if rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{l1.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("l1 should be soft-deleted: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{l2.ID, l3.ID}); err != nil || len(rows) != 2 {
		t.Fatalf("kept lessons: err=%v len=%d", err, len(rows))
	}

	if _, err := repo.Create(ctx, tx, []*types.Lesson{{ModuleID: m1.ID, Title: "new", Kind: "text"}}); err != nil {
		t.Fatalf("Create: %v", err)
	}
}
