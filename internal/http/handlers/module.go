package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dmhernandez2525/learning-hall/internal/http/response"
	"github.com/dmhernandez2525/learning-hall/internal/services"
)

type ModuleHandler struct {
	svc services.ModuleService
}

func NewModuleHandler(svc services.ModuleService) *ModuleHandler {
	return &ModuleHandler{svc: svc}
}

// GET /api/courses/:id/modules
func (h *ModuleHandler) ListModulesForCourse(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "course")
	if !ok {
		return
	}

	modules, err := h.svc.ListModulesForCourse(c.Request.Context(), nil, courseID)
	if err != nil {
		response.RespondAPIError(c, err, "list_modules_failed")
		return
	}

	response.RespondOK(c, gin.H{"modules": modules})
}
