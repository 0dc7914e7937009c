package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmhernandez2525/learning-hall/internal/domain/builder"
	"github.com/dmhernandez2525/learning-hall/internal/http/response"
	"github.com/dmhernandez2525/learning-hall/internal/modules/builder/autosave"
	"github.com/dmhernandez2525/learning-hall/internal/platform/apierr"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
	"github.com/dmhernandez2525/learning-hall/internal/services"
)

type stubBuilder struct {
	applied  *builder.Snapshot
	reorder  []string
	saveErr  error
	closeErr error
}

func (s *stubBuilder) view(id uuid.UUID) *services.SessionView {
	return &services.SessionView{ID: id, AutoSave: autosave.State{Status: autosave.StatusIdle}}
}

func (s *stubBuilder) OpenSession(_ context.Context, courseID uuid.UUID) (*services.SessionView, error) {
	v := s.view(uuid.New())
	v.CourseID = courseID
	return v, nil
}
func (s *stubBuilder) GetSession(_ context.Context, id uuid.UUID) (*services.SessionView, error) {
	return s.view(id), nil
}
func (s *stubBuilder) ApplySnapshot(_ context.Context, id uuid.UUID, snap builder.Snapshot) (*services.SessionView, error) {
	s.applied = &snap
	v := s.view(id)
	v.Snapshot = snap
	return v, nil
}
func (s *stubBuilder) ReorderModules(_ context.Context, id uuid.UUID, dragged, target string) (*services.SessionView, error) {
	s.reorder = []string{dragged, target}
	return s.view(id), nil
}
func (s *stubBuilder) ReorderLessons(_ context.Context, id uuid.UUID, moduleID, dragged, target string) (*services.SessionView, error) {
	s.reorder = []string{moduleID, dragged, target}
	return s.view(id), nil
}
func (s *stubBuilder) MoveLesson(_ context.Context, id uuid.UUID, lessonID, moduleID, target string) (*services.SessionView, error) {
	s.reorder = []string{lessonID, moduleID, target}
	return s.view(id), nil
}
func (s *stubBuilder) Undo(_ context.Context, id uuid.UUID) (*services.SessionView, error) {
	return s.view(id), nil
}
func (s *stubBuilder) Redo(_ context.Context, id uuid.UUID) (*services.SessionView, error) {
	return s.view(id), nil
}
func (s *stubBuilder) SaveNow(_ context.Context, id uuid.UUID) (*services.SessionView, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return s.view(id), nil
}
func (s *stubBuilder) BuildTemplate(context.Context, uuid.UUID) (*services.TemplateResult, error) {
	return &services.TemplateResult{}, nil
}
func (s *stubBuilder) CloseSession(context.Context, uuid.UUID) error { return s.closeErr }
func (s *stubBuilder) FlushAll(context.Context) error                { return nil }
func (s *stubBuilder) Start(context.Context)                         {}

func newBuilderRouter(svc services.BuilderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBuilderHandler(logger.Nop(), svc)
	r := gin.New()
	r.POST("/courses/:id/builder/sessions", h.OpenSession)
	r.PUT("/sessions/:id/snapshot", h.ApplySnapshot)
	r.POST("/sessions/:id/reorder/modules", h.ReorderModules)
	r.POST("/sessions/:id/lessons/move", h.MoveLesson)
	r.POST("/sessions/:id/save", h.SaveNow)
	r.DELETE("/sessions/:id", h.CloseSession)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) response.APIError {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v body=%s", err, rec.Body.String())
	}
	return env.Error
}

func TestApplySnapshotValidatesPayload(t *testing.T) {
	stub := &stubBuilder{}
	r := newBuilderRouter(stub)
	path := fmt.Sprintf("/sessions/%s/snapshot", uuid.New())

	rec := do(r, http.MethodPut, path, `{"selectedLessonId":null,"modules":[{"id":"m1","title":"One","position":0,"lessons":[{"id":"l1","title":"Intro","position":0,"contentType":"video","isPreview":false}]}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid snapshot: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if stub.applied == nil || stub.applied.Modules[0].Lessons[0].ContentType != builder.ContentVideo {
		t.Fatalf("snapshot not forwarded: %+v", stub.applied)
	}

	for name, body := range map[string]string{
		"not json":      `{"modules":`,
		"missing title": `{"modules":[{"id":"m1","position":0,"lessons":[]}]}`,
		"bad type":      `{"modules":[{"id":"m1","title":"x","position":0,"lessons":[{"id":"l1","title":"x","position":0,"contentType":"podcast"}]}]}`,
	} {
		rec := do(r, http.MethodPut, path, body)
		if rec.Code != http.StatusBadRequest || errorCode(t, rec).Code != "invalid_snapshot" {
			t.Fatalf("%s: want 400 invalid_snapshot got=%d %s", name, rec.Code, rec.Body.String())
		}
	}

	rec = do(r, http.MethodPut, "/sessions/not-a-uuid/snapshot", `{}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec).Code != "invalid_session_id" {
		t.Fatalf("bad id: got=%d %s", rec.Code, rec.Body.String())
	}
}

func TestApplySnapshotRejectsHugeBody(t *testing.T) {
	r := newBuilderRouter(&stubBuilder{})
	body := `{"modules":[],"pad":"` + strings.Repeat("x", maxSnapshotBytes) + `"}`
	rec := do(r, http.MethodPut, fmt.Sprintf("/sessions/%s/snapshot", uuid.New()), body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("want=413 got=%d", rec.Code)
	}
}

func TestReorderBindsRequiredFields(t *testing.T) {
	stub := &stubBuilder{}
	r := newBuilderRouter(stub)
	id := uuid.New()

	rec := do(r, http.MethodPost, fmt.Sprintf("/sessions/%s/reorder/modules", id), `{"draggedId":"m2","targetId":"m1"}`)
	if rec.Code != http.StatusOK || len(stub.reorder) != 2 || stub.reorder[0] != "m2" {
		t.Fatalf("reorder: got=%d %v", rec.Code, stub.reorder)
	}
	rec = do(r, http.MethodPost, fmt.Sprintf("/sessions/%s/reorder/modules", id), `{"draggedId":"m2"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing target: want=400 got=%d", rec.Code)
	}
	rec = do(r, http.MethodPost, fmt.Sprintf("/sessions/%s/lessons/move", id), `{"lessonId":"l1","targetModuleId":"m2"}`)
	if rec.Code != http.StatusOK || stub.reorder[2] != "" {
		t.Fatalf("move append: got=%d %v", rec.Code, stub.reorder)
	}
}

func TestSaveNowFailureIs502(t *testing.T) {
	saveErr := apierr.New(http.StatusBadGateway, "autosave_failed", &autosave.SaveError{Err: errors.New("db down")})
	r := newBuilderRouter(&stubBuilder{saveErr: saveErr})

	rec := do(r, http.MethodPost, fmt.Sprintf("/sessions/%s/save", uuid.New()), "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("want=502 got=%d", rec.Code)
	}
	apiErr := errorCode(t, rec)
	if apiErr.Code != "autosave_failed" || apiErr.Message != "Auto-save failed" {
		t.Fatalf("envelope: got=%+v", apiErr)
	}
}

func TestCloseSessionIsIdempotent(t *testing.T) {
	notFound := apierr.NotFound("session_not_found", services.ErrSessionNotFound)
	r := newBuilderRouter(&stubBuilder{closeErr: notFound})
	rec := do(r, http.MethodDelete, fmt.Sprintf("/sessions/%s", uuid.New()), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("want=204 got=%d", rec.Code)
	}

	r = newBuilderRouter(&stubBuilder{closeErr: apierr.New(http.StatusBadGateway, "autosave_failed", errors.New("Auto-save failed"))})
	rec = do(r, http.MethodDelete, fmt.Sprintf("/sessions/%s", uuid.New()), "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("failed flush on close: want=502 got=%d", rec.Code)
	}
}

func TestOpenSessionReturnsCreated(t *testing.T) {
	r := newBuilderRouter(&stubBuilder{})
	courseID := uuid.New()
	rec := do(r, http.MethodPost, fmt.Sprintf("/courses/%s/builder/sessions", courseID), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("want=201 got=%d", rec.Code)
	}
	var body struct {
		Session services.SessionView `json:"session"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Session.CourseID != courseID {
		t.Fatalf("course id: want=%s got=%s", courseID, body.Session.CourseID)
	}
}
