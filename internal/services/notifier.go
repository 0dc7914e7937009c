package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/dmhernandez2525/learning-hall/internal/domain"
	"github.com/dmhernandez2525/learning-hall/internal/modules/builder/autosave"
	"github.com/dmhernandez2525/learning-hall/internal/realtime"
)

// =========================
// Builder notifier
// =========================

type BuilderNotifier interface {
	HistoryChanged(view *SessionView)
	AutoSaveStatus(courseID, sessionID uuid.UUID, state autosave.State)
	TemplateBuilt(courseID, sessionID uuid.UUID, tmpl *types.CourseTemplate)
	SessionClosed(courseID, sessionID uuid.UUID)
}

type builderNotifier struct {
	emit SSEEmitter
}

func NewBuilderNotifier(emit SSEEmitter) BuilderNotifier {
	return &builderNotifier{emit: emit}
}

func (n *builderNotifier) HistoryChanged(view *SessionView) {
	if n == nil || n.emit == nil || view == nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.BuilderChannel(view.CourseID),
		Event:   realtime.SSEEventBuilderHistoryChanged,
		Data: map[string]any{
			"sessionId": view.ID,
			"snapshot":  view.Snapshot,
			"canUndo":   view.CanUndo,
			"canRedo":   view.CanRedo,
		},
	})
}

func (n *builderNotifier) AutoSaveStatus(courseID, sessionID uuid.UUID, state autosave.State) {
	if n == nil || n.emit == nil || courseID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.BuilderChannel(courseID),
		Event:   realtime.SSEEventBuilderAutoSaveStatus,
		Data: map[string]any{
			"sessionId":   sessionID,
			"status":      state.Status,
			"lastSavedAt": state.LastSavedAt,
		},
	})
}

func (n *builderNotifier) TemplateBuilt(courseID, sessionID uuid.UUID, tmpl *types.CourseTemplate) {
	if n == nil || n.emit == nil || courseID == uuid.Nil || tmpl == nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.BuilderChannel(courseID),
		Event:   realtime.SSEEventBuilderTemplateBuilt,
		Data: map[string]any{
			"sessionId":      sessionID,
			"templateId":     tmpl.ID,
			"estimatedHours": tmpl.EstimatedHours,
			"publicUrl":      tmpl.PublicURL,
		},
	})
}

func (n *builderNotifier) SessionClosed(courseID, sessionID uuid.UUID) {
	if n == nil || n.emit == nil || courseID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.BuilderChannel(courseID),
		Event:   realtime.SSEEventBuilderSessionClosed,
		Data:    map[string]any{"sessionId": sessionID},
	})
}
