package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/dmhernandez2525/learning-hall/internal/domain"
	"github.com/dmhernandez2525/learning-hall/internal/modules/builder/autosave"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
	"github.com/dmhernandez2525/learning-hall/internal/realtime"
)

type captureEmitter struct {
	msgs []realtime.SSEMessage
}

func (e *captureEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.msgs = append(e.msgs, msg)
}

func TestBuilderNotifierChannelsAndEvents(t *testing.T) {
	emit := &captureEmitter{}
	n := NewBuilderNotifier(emit)
	courseID := uuid.New()
	sessionID := uuid.New()
	now := time.Now()

	n.HistoryChanged(&SessionView{ID: sessionID, CourseID: courseID, CanUndo: true})
	n.AutoSaveStatus(courseID, sessionID, autosave.State{Status: autosave.StatusSaved, LastSavedAt: &now})
	n.TemplateBuilt(courseID, sessionID, &types.CourseTemplate{ID: uuid.New(), EstimatedHours: 2})
	n.SessionClosed(courseID, sessionID)

	// Nothing is emitted for missing inputs.
	n.HistoryChanged(nil)
	n.AutoSaveStatus(uuid.Nil, sessionID, autosave.State{})
	n.TemplateBuilt(courseID, sessionID, nil)

	want := []realtime.SSEEvent{
		realtime.SSEEventBuilderHistoryChanged,
		realtime.SSEEventBuilderAutoSaveStatus,
		realtime.SSEEventBuilderTemplateBuilt,
		realtime.SSEEventBuilderSessionClosed,
	}
	if len(emit.msgs) != len(want) {
		t.Fatalf("messages: want=%d got=%d", len(want), len(emit.msgs))
	}
	for i, msg := range emit.msgs {
		if msg.Event != want[i] {
			t.Fatalf("event %d: want=%s got=%s", i, want[i], msg.Event)
		}
		if msg.Channel != realtime.BuilderChannel(courseID) {
			t.Fatalf("channel %d: got=%s", i, msg.Channel)
		}
	}
	data := emit.msgs[1].Data.(map[string]any)
	if data["status"] != autosave.StatusSaved {
		t.Fatalf("status payload: got=%v", data["status"])
	}
}

func TestHubEmitterDeliversToSubscribers(t *testing.T) {
	hub := realtime.NewSSEHub(logger.Nop())
	client := hub.NewSSEClient(uuid.New())
	courseID := uuid.New()
	hub.AddChannel(client, realtime.BuilderChannel(courseID))

	(&HubEmitter{Hub: hub}).Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.BuilderChannel(courseID),
		Event:   realtime.SSEEventBuilderSessionClosed,
	})

	select {
	case msg := <-client.Outbound:
		if msg.Event != realtime.SSEEventBuilderSessionClosed {
			t.Fatalf("event: got=%s", msg.Event)
		}
	case <-time.After(time.Second):
		t.Fatalf("no message delivered")
	}
	var nilEmitter *HubEmitter
	nilEmitter.Emit(context.Background(), realtime.SSEMessage{})
}
