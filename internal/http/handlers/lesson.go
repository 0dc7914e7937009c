package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dmhernandez2525/learning-hall/internal/http/response"
	"github.com/dmhernandez2525/learning-hall/internal/services"
)

type LessonHandler struct {
	svc services.LessonService
}

func NewLessonHandler(svc services.LessonService) *LessonHandler {
	return &LessonHandler{svc: svc}
}

// GET /api/modules/:id/lessons
func (h *LessonHandler) ListModuleLessons(c *gin.Context) {
	moduleID, ok := uuidParam(c, "id", "module")
	if !ok {
		return
	}

	lessons, err := h.svc.ListLessonsForModule(c.Request.Context(), nil, moduleID)
	if err != nil {
		response.RespondAPIError(c, err, "list_lessons_failed")
		return
	}

	response.RespondOK(c, gin.H{"lessons": lessons})
}
