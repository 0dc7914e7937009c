package app

import (
	"gorm.io/gorm"

	"github.com/dmhernandez2525/learning-hall/internal/data/repos"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

type Repos struct {
	Course         repos.CourseRepo
	CourseModule   repos.CourseModuleRepo
	Lesson         repos.LessonRepo
	CourseDraft    repos.CourseDraftRepo
	CourseTemplate repos.CourseTemplateRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Course:         repos.NewCourseRepo(db, log),
		CourseModule:   repos.NewCourseModuleRepo(db, log),
		Lesson:         repos.NewLessonRepo(db, log),
		CourseDraft:    repos.NewCourseDraftRepo(db, log),
		CourseTemplate: repos.NewCourseTemplateRepo(db, log),
	}
}
