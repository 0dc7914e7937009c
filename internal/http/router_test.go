package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmhernandez2525/learning-hall/internal/data/repos"
	"github.com/dmhernandez2525/learning-hall/internal/data/repos/testutil"
	httpH "github.com/dmhernandez2525/learning-hall/internal/http/handlers"
	httpMW "github.com/dmhernandez2525/learning-hall/internal/http/middleware"
	"github.com/dmhernandez2525/learning-hall/internal/modules/builder/template"
	"github.com/dmhernandez2525/learning-hall/internal/realtime"
	"github.com/dmhernandez2525/learning-hall/internal/services"
)

type apiHarness struct {
	router *gin.Engine
	token  string
	userID uuid.UUID
	tx     *gorm.DB
	drafts repos.CourseDraftRepo
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)

	courseRepo := repos.NewCourseRepo(tx, log)
	moduleRepo := repos.NewCourseModuleRepo(tx, log)
	lessonRepo := repos.NewLessonRepo(tx, log)
	draftRepo := repos.NewCourseDraftRepo(tx, log)
	templateRepo := repos.NewCourseTemplateRepo(tx, log)

	auth, err := services.NewAuthService(log, "router-test-secret")
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	source, err := template.NewSource("", log)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	hub := realtime.NewSSEHub(log)
	courses := services.NewCourseService(tx, log, courseRepo)
	exports := services.NewTemplateExportService(tx, log, source, courseRepo, templateRepo, nil, nil)
	builderSvc := services.NewBuilderService(tx, log, services.BuilderConfig{
		// Long enough that no debounced save fires while the test runs.
		AutosaveDebounce: time.Hour,
		HistoryLimit:     10,
		SessionIdleTTL:   time.Hour,
	}, courseRepo, moduleRepo, lessonRepo, draftRepo, exports,
		services.NewBuilderNotifier(&services.HubEmitter{Hub: hub}), nil)

	router := NewRouter(RouterConfig{
		Log:             log,
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, auth),
		HealthHandler:   httpH.NewHealthHandler(nil),
		RealtimeHandler: httpH.NewRealtimeHandler(log, hub, courses, nil),
		CourseHandler:   httpH.NewCourseHandler(log, courses, exports),
		ModuleHandler:   httpH.NewModuleHandler(services.NewModuleService(tx, log, courseRepo, moduleRepo)),
		LessonHandler:   httpH.NewLessonHandler(services.NewLessonService(tx, log, courseRepo, moduleRepo, lessonRepo)),
		BuilderHandler:  httpH.NewBuilderHandler(log, builderSvc),
	})

	userID := uuid.New()
	token, err := auth.IssueToken(userID, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return &apiHarness{router: router, token: token, userID: userID, tx: tx, drafts: draftRepo}
}

func (h *apiHarness) call(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

type sessionBody struct {
	Session services.SessionView `json:"session"`
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int) services.SessionView {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("status: want=%d got=%d body=%s", wantStatus, rec.Code, rec.Body.String())
	}
	var out sessionBody
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return out.Session
}

func TestBuilderSessionRoundTripOverHTTP(t *testing.T) {
	h := newAPIHarness(t)
	course := testutil.SeedCourse(t, context.Background(), h.tx, h.userID).ID

	opened := decodeSession(t, h.call(t, http.MethodPost, fmt.Sprintf("/api/courses/%s/builder/sessions", course), nil), http.StatusCreated)
	if len(opened.Snapshot.Modules) != 0 || opened.CanUndo {
		t.Fatalf("fresh session: %+v", opened)
	}
	base := fmt.Sprintf("/api/builder/sessions/%s", opened.ID)

	edited := map[string]any{
		"selectedLessonId": nil,
		"modules": []map[string]any{{
			"id": "m-1", "title": "Basics", "position": 0,
			"lessons": []map[string]any{
				{"id": "l-1", "title": "Welcome", "position": 0, "contentType": "video", "isPreview": true},
			},
		}},
	}
	applied := decodeSession(t, h.call(t, http.MethodPut, base+"/snapshot", edited), http.StatusOK)
	if len(applied.Snapshot.Modules) != 1 || !applied.CanUndo || applied.CanRedo {
		t.Fatalf("after apply: %+v", applied)
	}
	if applied.AutoSave.Status != "unsaved" {
		t.Fatalf("autosave status: want=unsaved got=%s", applied.AutoSave.Status)
	}

	undone := decodeSession(t, h.call(t, http.MethodPost, base+"/undo", nil), http.StatusOK)
	if len(undone.Snapshot.Modules) != 0 || undone.CanUndo || !undone.CanRedo {
		t.Fatalf("after undo: %+v", undone)
	}
	redone := decodeSession(t, h.call(t, http.MethodPost, base+"/redo", nil), http.StatusOK)
	if len(redone.Snapshot.Modules) != 1 || redone.Snapshot.Modules[0].Lessons[0].ID != "l-1" {
		t.Fatalf("after redo: %+v", redone)
	}

	saved := decodeSession(t, h.call(t, http.MethodPost, base+"/save", nil), http.StatusOK)
	if saved.AutoSave.Status != "saved" || saved.AutoSave.LastSavedAt == nil {
		t.Fatalf("after save: %+v", saved.AutoSave)
	}
	draft, err := h.drafts.GetByCourseAndUser(context.Background(), h.tx, course, h.userID)
	if err != nil {
		t.Fatalf("draft lookup: %v", err)
	}
	if draft.Revision != 1 {
		t.Fatalf("draft revision: want=1 got=%d", draft.Revision)
	}

	rec := h.call(t, http.MethodGet, fmt.Sprintf("/api/courses/%s/modules", course), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list modules: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}

	if rec := h.call(t, http.MethodDelete, base, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("close: want=204 got=%d", rec.Code)
	}
	if rec := h.call(t, http.MethodGet, base, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("closed session: want=404 got=%d", rec.Code)
	}
}

func TestAPIRequiresBearerToken(t *testing.T) {
	h := newAPIHarness(t)

	h.token = ""
	rec := h.call(t, http.MethodGet, "/api/courses", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: want=401 got=%d", rec.Code)
	}
	h.token = "not-a-jwt"
	rec = h.call(t, http.MethodGet, "/api/courses", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: want=401 got=%d", rec.Code)
	}

	rec = h.call(t, http.MethodGet, "/healthcheck", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthcheck: want=200 got=%d", rec.Code)
	}
	if rec.Header().Get("X-Trace-Id") == "" || rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("trace headers missing: %v", rec.Header())
	}
}

func TestForeignCourseIsNotFound(t *testing.T) {
	h := newAPIHarness(t)
	course := testutil.SeedCourse(t, context.Background(), h.tx, uuid.New()).ID

	rec := h.call(t, http.MethodPost, fmt.Sprintf("/api/courses/%s/builder/sessions", course), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign course: want=404 got=%d body=%s", rec.Code, rec.Body.String())
	}
}
