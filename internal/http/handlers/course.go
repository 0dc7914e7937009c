package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dmhernandez2525/learning-hall/internal/http/response"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
	"github.com/dmhernandez2525/learning-hall/internal/services"
)

type CourseHandler struct {
	log       *logger.Logger
	courses   services.CourseService
	templates services.TemplateExportService
}

func NewCourseHandler(log *logger.Logger, courses services.CourseService, templates services.TemplateExportService) *CourseHandler {
	return &CourseHandler{log: log.With("handler", "CourseHandler"), courses: courses, templates: templates}
}

// GET /api/courses
func (h *CourseHandler) ListUserCourses(c *gin.Context) {
	courses, err := h.courses.ListUserCourses(c.Request.Context(), nil)
	if err != nil {
		response.RespondAPIError(c, err, "list_courses_failed")
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /api/courses/:id/templates
func (h *CourseHandler) ListCourseTemplates(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "course")
	if !ok {
		return
	}
	templates, err := h.templates.ListTemplates(c.Request.Context(), nil, courseID)
	if err != nil {
		response.RespondAPIError(c, err, "list_templates_failed")
		return
	}
	response.RespondOK(c, gin.H{"templates": templates})
}
