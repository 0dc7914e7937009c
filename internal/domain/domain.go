package domain

import "github.com/dmhernandez2525/learning-hall/internal/domain/learning"

type (
	Course         = learning.Course
	CourseModule   = learning.CourseModule
	Lesson         = learning.Lesson
	CourseDraft    = learning.CourseDraft
	CourseTemplate = learning.CourseTemplate
)

// Models lists every persisted type in migration order.
func Models() []interface{} {
	return []interface{}{
		&Course{},
		&CourseModule{},
		&Lesson{},
		&CourseDraft{},
		&CourseTemplate{},
	}
}
