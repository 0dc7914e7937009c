package repos

import (
	"gorm.io/gorm"

	"github.com/dmhernandez2525/learning-hall/internal/data/repos/learning"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

type CourseRepo = learning.CourseRepo
type CourseModuleRepo = learning.CourseModuleRepo
type LessonRepo = learning.LessonRepo
type CourseDraftRepo = learning.CourseDraftRepo
type CourseTemplateRepo = learning.CourseTemplateRepo

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return learning.NewCourseRepo(db, baseLog)
}
func NewCourseModuleRepo(db *gorm.DB, baseLog *logger.Logger) CourseModuleRepo {
	return learning.NewCourseModuleRepo(db, baseLog)
}
func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return learning.NewLessonRepo(db, baseLog)
}
func NewCourseDraftRepo(db *gorm.DB, baseLog *logger.Logger) CourseDraftRepo {
	return learning.NewCourseDraftRepo(db, baseLog)
}
func NewCourseTemplateRepo(db *gorm.DB, baseLog *logger.Logger) CourseTemplateRepo {
	return learning.NewCourseTemplateRepo(db, baseLog)
}
