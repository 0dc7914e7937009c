package reorder

import (
	"reflect"
	"testing"

	"github.com/dmhernandez2525/learning-hall/internal/domain/builder"
)

func lesson(id string, pos int) builder.Lesson {
	return builder.Lesson{ID: id, Title: id, Position: pos, ContentType: builder.ContentText}
}

func fixture() []builder.Module {
	return []builder.Module{
		{ID: "module-a", Title: "A", Position: 0, Lessons: []builder.Lesson{lesson("a1", 0), lesson("a2", 1)}},
		{ID: "module-b", Title: "B", Position: 1, Lessons: []builder.Lesson{lesson("b1", 0)}},
	}
}

func moduleIDs(ms []builder.Module) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func lessonIDs(ls []builder.Lesson) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out
}

func assertDense(t *testing.T, ms []builder.Module) {
	t.Helper()
	for i, m := range ms {
		if m.Position != i {
			t.Fatalf("module %s position: want=%d got=%d", m.ID, i, m.Position)
		}
		for j, l := range m.Lessons {
			if l.Position != j {
				t.Fatalf("lesson %s position: want=%d got=%d", l.ID, j, l.Position)
			}
		}
	}
}

func TestModulesMovesDraggedIntoTargetSlot(t *testing.T) {
	got := Modules(fixture(), "module-b", "module-a")
	if ids := moduleIDs(got); !reflect.DeepEqual(ids, []string{"module-b", "module-a"}) {
		t.Fatalf("order: got=%v", ids)
	}
	assertDense(t, got)
}

func TestModulesForwardAndBackward(t *testing.T) {
	ms := []builder.Module{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}}
	tests := []struct {
		name            string
		dragged, target string
		want            []string
	}{
		{"backward", "C", "A", []string{"C", "A", "B", "D"}},
		{"forward", "A", "C", []string{"B", "C", "A", "D"}},
		{"to end", "B", "D", []string{"A", "C", "D", "B"}},
		{"self", "B", "B", []string{"A", "B", "C", "D"}},
		{"unknown dragged", "Z", "A", []string{"A", "B", "C", "D"}},
		{"unknown target", "A", "Z", []string{"A", "B", "C", "D"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Modules(ms, tt.dragged, tt.target)
			if ids := moduleIDs(got); !reflect.DeepEqual(ids, tt.want) {
				t.Fatalf("order: want=%v got=%v", tt.want, ids)
			}
		})
	}
}

func TestModulesSelfMoveStillRenumbers(t *testing.T) {
	ms := []builder.Module{{ID: "A", Position: 4}, {ID: "B", Position: 9}}
	got := Modules(ms, "A", "A")
	assertDense(t, got)
	if ms[0].Position != 4 {
		t.Fatalf("input was modified")
	}
}

func TestModulesUnknownIDReturnsEquivalentCopy(t *testing.T) {
	in := fixture()
	got := Modules(in, "missing", "module-a")
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("expected equivalent content")
	}
	got[0].Title = "mutated"
	if in[0].Title != "A" {
		t.Fatalf("copy shares storage with input")
	}
}

func TestLessonsReorderWithinModule(t *testing.T) {
	in := fixture()
	got := Lessons(in, "module-a", "a2", "a1")
	if ids := lessonIDs(got[0].Lessons); !reflect.DeepEqual(ids, []string{"a2", "a1"}) {
		t.Fatalf("lesson order: got=%v", ids)
	}
	assertDense(t, got)
	if !reflect.DeepEqual(got[1], in[1]) {
		t.Fatalf("module-b must be untouched")
	}
	if ids := lessonIDs(in[0].Lessons); !reflect.DeepEqual(ids, []string{"a1", "a2"}) {
		t.Fatalf("input was modified: %v", ids)
	}
}

func TestLessonsUnknownIDsAreNoOps(t *testing.T) {
	in := fixture()
	for _, args := range [][3]string{
		{"module-z", "a2", "a1"},
		{"module-a", "zz", "a1"},
		{"module-a", "a2", "b1"},
	} {
		got := Lessons(in, args[0], args[1], args[2])
		if !reflect.DeepEqual(got, in) {
			t.Fatalf("Lessons%v should be a no-op", args)
		}
	}
}

func TestMoveLessonAcrossModules(t *testing.T) {
	in := fixture()

	got := MoveLesson(in, "a1", "module-b", "b1")
	if ids := lessonIDs(got[0].Lessons); !reflect.DeepEqual(ids, []string{"a2"}) {
		t.Fatalf("source lessons: got=%v", ids)
	}
	if ids := lessonIDs(got[1].Lessons); !reflect.DeepEqual(ids, []string{"a1", "b1"}) {
		t.Fatalf("target lessons: got=%v", ids)
	}
	assertDense(t, got)

	appended := MoveLesson(in, "a2", "module-b", "")
	if ids := lessonIDs(appended[1].Lessons); !reflect.DeepEqual(ids, []string{"b1", "a2"}) {
		t.Fatalf("append: got=%v", ids)
	}

	same := MoveLesson(in, "a1", "module-a", "")
	if ids := lessonIDs(same[0].Lessons); !reflect.DeepEqual(ids, []string{"a2", "a1"}) {
		t.Fatalf("same-module move to end: got=%v", ids)
	}

	if !reflect.DeepEqual(MoveLesson(in, "a1", "module-z", ""), in) {
		t.Fatalf("unknown target module should be a no-op")
	}
	if !reflect.DeepEqual(MoveLesson(in, "a1", "module-b", "zz"), in) {
		t.Fatalf("unknown target lesson should be a no-op")
	}
}

func TestRenumber(t *testing.T) {
	in := []builder.Module{
		{ID: "x", Position: 3, Lessons: []builder.Lesson{lesson("l1", 7), lesson("l2", 7)}},
		{ID: "y", Position: 3},
	}
	got := Renumber(in)
	assertDense(t, got)
	if in[0].Lessons[0].Position != 7 {
		t.Fatalf("input was modified")
	}
}
