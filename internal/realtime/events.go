package realtime

import (
	"fmt"

	"github.com/google/uuid"
)

type SSEEvent string

const (
	SSEEventBuilderHistoryChanged SSEEvent = "BuilderHistoryChanged"
	SSEEventBuilderAutoSaveStatus SSEEvent = "BuilderAutoSaveStatus"
	SSEEventBuilderTemplateBuilt  SSEEvent = "BuilderTemplateBuilt"
	SSEEventBuilderSessionClosed  SSEEvent = "BuilderSessionClosed"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// BuilderChannel is the channel every editor tab of a course listens on.
func BuilderChannel(courseID uuid.UUID) string {
	return fmt.Sprintf("course-builder:%s", courseID)
}
