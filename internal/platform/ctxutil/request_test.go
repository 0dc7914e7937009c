package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestLogFields(t *testing.T) {
	if got := LogFields(context.Background()); len(got) != 0 {
		t.Fatalf("empty ctx: got=%v", got)
	}

	userID := uuid.New()
	ctx := WithRequestData(context.Background(), &RequestData{UserID: userID})
	ctx = WithTraceData(ctx, &TraceData{TraceID: "t-1"})

	got := LogFields(ctx)
	want := []interface{}{"trace_id", "t-1", "user_id", userID.String()}
	if len(got) != len(want) {
		t.Fatalf("fields: want=%v got=%v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d: want=%v got=%v", i, want[i], got[i])
		}
	}
	if UserID(context.Background()) != uuid.Nil {
		t.Fatalf("UserID on empty ctx should be Nil")
	}
}
