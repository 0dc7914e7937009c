package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubReconnectAndOrdering(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := BuilderChannel(uuid.New())

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, channel)

	first := SSEMessage{Channel: channel, Event: SSEEventBuilderHistoryChanged, Data: map[string]any{"seq": 1}}
	second := SSEMessage{Channel: channel, Event: SSEEventBuilderAutoSaveStatus, Data: map[string]any{"seq": 2}}
	hub.Broadcast(first)
	hub.Broadcast(second)

	gotFirst := recvMessage(t, clientA.Outbound, time.Second)
	gotSecond := recvMessage(t, clientA.Outbound, time.Second)
	if gotFirst.Event != SSEEventBuilderHistoryChanged {
		t.Fatalf("first event: want=%s got=%s", SSEEventBuilderHistoryChanged, gotFirst.Event)
	}
	if gotSecond.Event != SSEEventBuilderAutoSaveStatus {
		t.Fatalf("second event: want=%s got=%s", SSEEventBuilderAutoSaveStatus, gotSecond.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}

	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventBuilderTemplateBuilt})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventBuilderTemplateBuilt {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventBuilderTemplateBuilt, got.Event)
	}
}

func TestSSEHubChannelIsolation(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	a, b := BuilderChannel(uuid.New()), BuilderChannel(uuid.New())
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, a)
	hub.AddChannel(client, "  ")

	hub.Broadcast(SSEMessage{Channel: b, Event: SSEEventBuilderHistoryChanged})
	hub.Broadcast(SSEMessage{Channel: "", Event: SSEEventBuilderHistoryChanged})
	select {
	case msg := <-client.Outbound:
		t.Fatalf("unexpected message: %+v", msg)
	default:
	}

	hub.RemoveChannel(client, a)
	hub.Broadcast(SSEMessage{Channel: a, Event: SSEEventBuilderHistoryChanged})
	select {
	case msg := <-client.Outbound:
		t.Fatalf("unsubscribed client got %+v", msg)
	default:
	}
}

func TestSSEHubServeHTTPStreamsMessages(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient(uuid.New())
	channel := BuilderChannel(uuid.New())
	hub.AddChannel(client, channel)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, client)
		close(done)
	}()
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventBuilderHistoryChanged, Data: map[string]int{"pastCount": 1}})

	deadline := time.Now().Add(time.Second)
	for len(client.Outbound) > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, "event: connected") || !strings.Contains(body, client.ID.String()) {
		t.Fatalf("missing connected event: %q", body)
	}
	if !strings.Contains(body, `"event":"BuilderHistoryChanged"`) {
		t.Fatalf("missing broadcast payload: %q", body)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content type: %s", got)
	}
}

func TestSSEHubDropsWhenBufferFull(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient(uuid.New())
	channel := BuilderChannel(uuid.New())
	hub.AddChannel(client, channel)

	for i := 0; i < outboundBuffer+3; i++ {
		hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventBuilderAutoSaveStatus})
	}
	if got := len(client.Outbound); got != outboundBuffer {
		t.Fatalf("buffered: want=%d got=%d", outboundBuffer, got)
	}
	if got := client.Dropped(); got != 3 {
		t.Fatalf("dropped: want=3 got=%d", got)
	}

	hub.CloseClient(client)
	select {
	case <-client.Done():
	default:
		t.Fatalf("Done should be closed after CloseClient")
	}
	if hub.Subscribers(channel) != 0 {
		t.Fatalf("closed client still subscribed")
	}
	hub.CloseClient(client)
}
