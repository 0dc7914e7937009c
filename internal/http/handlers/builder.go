package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmhernandez2525/learning-hall/internal/domain/builder"
	"github.com/dmhernandez2525/learning-hall/internal/http/response"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
	"github.com/dmhernandez2525/learning-hall/internal/services"
)

const maxSnapshotBytes = 2 << 20

type BuilderHandler struct {
	log *logger.Logger
	svc services.BuilderService
}

func NewBuilderHandler(log *logger.Logger, svc services.BuilderService) *BuilderHandler {
	return &BuilderHandler{log: log.With("handler", "BuilderHandler"), svc: svc}
}

type reorderModulesRequest struct {
	DraggedID string `json:"draggedId" binding:"required"`
	TargetID  string `json:"targetId" binding:"required"`
}

type reorderLessonsRequest struct {
	ModuleID        string `json:"moduleId" binding:"required"`
	DraggedLessonID string `json:"draggedLessonId" binding:"required"`
	TargetLessonID  string `json:"targetLessonId" binding:"required"`
}

type moveLessonRequest struct {
	LessonID       string `json:"lessonId" binding:"required"`
	TargetModuleID string `json:"targetModuleId" binding:"required"`
	// Empty appends to the target module.
	TargetLessonID string `json:"targetLessonId"`
}

func (h *BuilderHandler) respondSession(c *gin.Context, view *services.SessionView, err error, code string) {
	if err != nil {
		response.RespondAPIError(c, err, code)
		return
	}
	response.RespondOK(c, gin.H{"session": view})
}

// POST /api/courses/:id/builder/sessions
func (h *BuilderHandler) OpenSession(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "course")
	if !ok {
		return
	}
	view, err := h.svc.OpenSession(c.Request.Context(), courseID)
	if err != nil {
		response.RespondAPIError(c, err, "open_session_failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": view})
}

// GET /api/builder/sessions/:id
func (h *BuilderHandler) GetSession(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	view, err := h.svc.GetSession(c.Request.Context(), sessionID)
	h.respondSession(c, view, err, "get_session_failed")
}

// PUT /api/builder/sessions/:id/snapshot
func (h *BuilderHandler) ApplySnapshot(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSnapshotBytes)
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "snapshot_too_large", err)
			return
		}
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	snap, err := builder.DecodeSnapshot(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_snapshot", err)
		return
	}
	view, err := h.svc.ApplySnapshot(c.Request.Context(), sessionID, snap)
	h.respondSession(c, view, err, "apply_snapshot_failed")
}

// POST /api/builder/sessions/:id/reorder/modules
func (h *BuilderHandler) ReorderModules(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	var req reorderModulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.svc.ReorderModules(c.Request.Context(), sessionID, req.DraggedID, req.TargetID)
	h.respondSession(c, view, err, "reorder_failed")
}

// POST /api/builder/sessions/:id/reorder/lessons
func (h *BuilderHandler) ReorderLessons(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	var req reorderLessonsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.svc.ReorderLessons(c.Request.Context(), sessionID, req.ModuleID, req.DraggedLessonID, req.TargetLessonID)
	h.respondSession(c, view, err, "reorder_failed")
}

// POST /api/builder/sessions/:id/lessons/move
func (h *BuilderHandler) MoveLesson(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	var req moveLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.svc.MoveLesson(c.Request.Context(), sessionID, req.LessonID, req.TargetModuleID, req.TargetLessonID)
	h.respondSession(c, view, err, "move_lesson_failed")
}

// POST /api/builder/sessions/:id/undo
func (h *BuilderHandler) Undo(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	view, err := h.svc.Undo(c.Request.Context(), sessionID)
	h.respondSession(c, view, err, "undo_failed")
}

// POST /api/builder/sessions/:id/redo
func (h *BuilderHandler) Redo(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	view, err := h.svc.Redo(c.Request.Context(), sessionID)
	h.respondSession(c, view, err, "redo_failed")
}

// POST /api/builder/sessions/:id/save
func (h *BuilderHandler) SaveNow(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	view, err := h.svc.SaveNow(c.Request.Context(), sessionID)
	if err != nil {
		h.log.Warn("manual save failed", "error", err, "session_id", sessionID)
	}
	h.respondSession(c, view, err, "autosave_failed")
}

// POST /api/builder/sessions/:id/template
func (h *BuilderHandler) BuildTemplate(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	res, err := h.svc.BuildTemplate(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondAPIError(c, err, "template_failed")
		return
	}
	c.JSON(http.StatusCreated, res)
}

// DELETE /api/builder/sessions/:id
func (h *BuilderHandler) CloseSession(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	if err := h.svc.CloseSession(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			// Closing twice is fine.
			c.Status(http.StatusNoContent)
			return
		}
		response.RespondAPIError(c, err, "close_session_failed")
		return
	}
	c.Status(http.StatusNoContent)
}
