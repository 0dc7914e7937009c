package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/dmhernandez2525/learning-hall/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-123")
	req.Header.Set(headerTraceID, "trace.abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(headerRequestID); got != "req-123" {
		t.Fatalf("request id: want=req-123 got=%q", got)
	}
	if got := rec.Header().Get(headerTraceID); got != "trace.abc" {
		t.Fatalf("trace id: want=trace.abc got=%q", got)
	}
	if seen == nil || seen.RequestID != "req-123" || seen.TraceID != "trace.abc" {
		t.Fatalf("context trace data: %+v", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "bad id\nwith newline")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	got := rec.Header().Get(headerRequestID)
	if got == "" || strings.Contains(got, " ") {
		t.Fatalf("unsafe request id should be replaced: got=%q", got)
	}
}

func TestCleanRequestID(t *testing.T) {
	cases := map[string]string{
		"  abc-DEF_1.2 ":         "abc-DEF_1.2",
		"":                       "",
		"has space":              "",
		"semi;colon":             "",
		strings.Repeat("a", 129): "",
		strings.Repeat("b", 128): strings.Repeat("b", 128),
	}
	for in, want := range cases {
		if got := cleanRequestID(in); got != want {
			t.Fatalf("cleanRequestID(%q): want=%q got=%q", in, want, got)
		}
	}
}
