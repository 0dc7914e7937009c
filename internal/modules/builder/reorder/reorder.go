// Package reorder moves modules and lessons around a builder tree and keeps
// positions dense. Inputs are never modified; unknown ids yield an unchanged copy.
package reorder

import "github.com/dmhernandez2525/learning-hall/internal/domain/builder"

// Modules moves draggedID into the slot targetID occupied before the move and
// renumbers every module from 0. The dragged module takes the index the target
// held, so a forward drag lands after the target: A onto C in [A B C] gives [B C A].
func Modules(modules []builder.Module, draggedID, targetID string) []builder.Module {
	out := builder.CloneModules(modules)
	from := moduleIndex(out, draggedID)
	to := moduleIndex(out, targetID)
	if from < 0 || to < 0 {
		return out
	}
	out = move(out, from, to)
	renumberModules(out)
	return out
}

// Lessons applies the Modules rule to the lessons of moduleID. Other modules come
// back as structurally identical copies.
func Lessons(modules []builder.Module, moduleID, draggedLessonID, targetLessonID string) []builder.Module {
	out := builder.CloneModules(modules)
	mi := moduleIndex(out, moduleID)
	if mi < 0 {
		return out
	}
	lessons := out[mi].Lessons
	from := lessonIndex(lessons, draggedLessonID)
	to := lessonIndex(lessons, targetLessonID)
	if from < 0 || to < 0 {
		return out
	}
	out[mi].Lessons = move(lessons, from, to)
	renumberLessons(out[mi].Lessons)
	return out
}

// MoveLesson moves a lesson into targetModuleID, before the slot of targetLessonID,
// or to the end when targetLessonID is empty. Source and target lists are renumbered.
func MoveLesson(modules []builder.Module, lessonID, targetModuleID, targetLessonID string) []builder.Module {
	out := builder.CloneModules(modules)
	src, from := -1, -1
	for i := range out {
		if li := lessonIndex(out[i].Lessons, lessonID); li >= 0 {
			src, from = i, li
			break
		}
	}
	dst := moduleIndex(out, targetModuleID)
	if src < 0 || dst < 0 {
		return out
	}

	if src == dst {
		to := len(out[dst].Lessons) - 1
		if targetLessonID != "" {
			to = lessonIndex(out[dst].Lessons, targetLessonID)
			if to < 0 {
				return out
			}
		}
		out[dst].Lessons = move(out[dst].Lessons, from, to)
		renumberLessons(out[dst].Lessons)
		return out
	}

	to := len(out[dst].Lessons)
	if targetLessonID != "" {
		to = lessonIndex(out[dst].Lessons, targetLessonID)
		if to < 0 {
			return out
		}
	}
	moved := out[src].Lessons[from]
	out[src].Lessons = append(out[src].Lessons[:from:from], out[src].Lessons[from+1:]...)
	out[dst].Lessons = insert(out[dst].Lessons, to, moved)
	renumberLessons(out[src].Lessons)
	renumberLessons(out[dst].Lessons)
	return out
}

// Renumber returns a copy with module and lesson positions set to their indices.
func Renumber(modules []builder.Module) []builder.Module {
	out := builder.CloneModules(modules)
	renumberModules(out)
	for i := range out {
		renumberLessons(out[i].Lessons)
	}
	return out
}

// move removes items[from] and reinserts it so it ends up at index to.
// The removal happens first; to is applied to the shortened list.
func move[T any](items []T, from, to int) []T {
	if from == to {
		return items
	}
	moved := items[from]
	rest := make([]T, 0, len(items))
	rest = append(rest, items[:from]...)
	rest = append(rest, items[from+1:]...)
	return insert(rest, to, moved)
}

func insert[T any](items []T, at int, v T) []T {
	if at > len(items) {
		at = len(items)
	}
	out := make([]T, 0, len(items)+1)
	out = append(out, items[:at]...)
	out = append(out, v)
	out = append(out, items[at:]...)
	return out
}

func moduleIndex(modules []builder.Module, id string) int {
	for i := range modules {
		if modules[i].ID == id {
			return i
		}
	}
	return -1
}

func lessonIndex(lessons []builder.Lesson, id string) int {
	for i := range lessons {
		if lessons[i].ID == id {
			return i
		}
	}
	return -1
}

func renumberModules(modules []builder.Module) {
	for i := range modules {
		modules[i].Position = i
	}
}

func renumberLessons(lessons []builder.Lesson) {
	for i := range lessons {
		lessons[i].Position = i
	}
}
