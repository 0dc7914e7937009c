package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dmhernandez2525/learning-hall/internal/data/repos"
	types "github.com/dmhernandez2525/learning-hall/internal/domain"
	"github.com/dmhernandez2525/learning-hall/internal/domain/builder"
	"github.com/dmhernandez2525/learning-hall/internal/modules/builder/autosave"
	"github.com/dmhernandez2525/learning-hall/internal/modules/builder/history"
	"github.com/dmhernandez2525/learning-hall/internal/modules/builder/reorder"
	"github.com/dmhernandez2525/learning-hall/internal/modules/builder/template"
	"github.com/dmhernandez2525/learning-hall/internal/observability"
	"github.com/dmhernandez2525/learning-hall/internal/platform/apierr"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

var ErrSessionNotFound = errors.New("builder session not found")

type BuilderConfig struct {
	AutosaveDebounce time.Duration
	// HistoryLimit caps undo depth per session; <= 0 is unlimited.
	HistoryLimit   int
	SessionIdleTTL time.Duration
	// Clock drives autosave timers. Nil uses the wall clock.
	Clock autosave.Clock
}

func (c BuilderConfig) withDefaults() BuilderConfig {
	if c.AutosaveDebounce <= 0 {
		c.AutosaveDebounce = 2 * time.Second
	}
	if c.SessionIdleTTL <= 0 {
		c.SessionIdleTTL = 30 * time.Minute
	}
	return c
}

// SessionView is what callers see of a session after every operation.
type SessionView struct {
	ID          uuid.UUID        `json:"id"`
	CourseID    uuid.UUID        `json:"courseId"`
	Snapshot    builder.Snapshot `json:"snapshot"`
	CanUndo     bool             `json:"canUndo"`
	CanRedo     bool             `json:"canRedo"`
	PastDepth   int              `json:"pastDepth"`
	FutureDepth int              `json:"futureDepth"`
	AutoSave    autosave.State   `json:"autoSave"`
}

type TemplateResult struct {
	Template  *types.CourseTemplate `json:"template"`
	Structure template.Structure    `json:"structure"`
}

type BuilderService interface {
	OpenSession(ctx context.Context, courseID uuid.UUID) (*SessionView, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionView, error)
	ApplySnapshot(ctx context.Context, sessionID uuid.UUID, snap builder.Snapshot) (*SessionView, error)
	ReorderModules(ctx context.Context, sessionID uuid.UUID, draggedID, targetID string) (*SessionView, error)
	ReorderLessons(ctx context.Context, sessionID uuid.UUID, moduleID, draggedLessonID, targetLessonID string) (*SessionView, error)
	MoveLesson(ctx context.Context, sessionID uuid.UUID, lessonID, targetModuleID, targetLessonID string) (*SessionView, error)
	Undo(ctx context.Context, sessionID uuid.UUID) (*SessionView, error)
	Redo(ctx context.Context, sessionID uuid.UUID) (*SessionView, error)
	// SaveNow flushes the session. A failed save is a 502 "autosave_failed" wrapping
	// autosave.ErrSaveFailed.
	SaveNow(ctx context.Context, sessionID uuid.UUID) (*SessionView, error)
	BuildTemplate(ctx context.Context, sessionID uuid.UUID) (*TemplateResult, error)
	CloseSession(ctx context.Context, sessionID uuid.UUID) error
	// FlushAll saves every session with unsaved work. Used on shutdown.
	FlushAll(ctx context.Context) error
	// Start runs the idle-session reaper until ctx is done.
	Start(ctx context.Context)
}

type builderSession struct {
	id       uuid.UUID
	courseID uuid.UUID
	userID   uuid.UUID
	saver    *autosave.Controller

	mu       sync.Mutex
	hist     history.State
	lastUsed time.Time
}

func (ss *builderSession) present() builder.Snapshot {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.hist.Present.Clone()
}

func (ss *builderSession) view() *SessionView {
	ss.mu.Lock()
	v := &SessionView{
		ID:          ss.id,
		CourseID:    ss.courseID,
		Snapshot:    ss.hist.Present.Clone(),
		CanUndo:     history.CanUndo(ss.hist),
		CanRedo:     history.CanRedo(ss.hist),
		PastDepth:   len(ss.hist.Past),
		FutureDepth: len(ss.hist.Future),
	}
	ss.mu.Unlock()
	v.AutoSave = ss.saver.State()
	return v
}

// dirty reports work the database has not seen yet.
func (ss *builderSession) dirty() bool {
	st := ss.saver.State().Status
	return ss.saver.Pending() || st == autosave.StatusUnsaved || st == autosave.StatusError
}

type builderService struct {
	db         *gorm.DB
	log        *logger.Logger
	cfg        BuilderConfig
	courseRepo repos.CourseRepo
	moduleRepo repos.CourseModuleRepo
	lessonRepo repos.LessonRepo
	draftRepo  repos.CourseDraftRepo
	templates  TemplateExportService
	notify     BuilderNotifier
	metrics    *observability.Metrics
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*builderSession
}

func NewBuilderService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg BuilderConfig,
	courseRepo repos.CourseRepo,
	moduleRepo repos.CourseModuleRepo,
	lessonRepo repos.LessonRepo,
	draftRepo repos.CourseDraftRepo,
	templates TemplateExportService,
	notify BuilderNotifier,
	metrics *observability.Metrics,
) BuilderService {
	cfg = cfg.withDefaults()
	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock.Now
	}
	return &builderService{
		db:         db,
		log:        baseLog.With("service", "BuilderService"),
		cfg:        cfg,
		courseRepo: courseRepo,
		moduleRepo: moduleRepo,
		lessonRepo: lessonRepo,
		draftRepo:  draftRepo,
		templates:  templates,
		notify:     notify,
		metrics:    metrics,
		now:        now,
		sessions:   map[uuid.UUID]*builderSession{},
	}
}

func (s *builderService) OpenSession(ctx context.Context, courseID uuid.UUID) (*SessionView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.courseRepo.GetOwned(ctx, s.db, courseID, userID); err != nil {
		return nil, err
	}

	snap, err := s.loadInitialSnapshot(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}

	sess := &builderSession{
		id:       uuid.New(),
		courseID: courseID,
		userID:   userID,
		hist:     history.New(snap),
		lastUsed: s.now(),
	}
	opts := []autosave.Option{
		autosave.WithOnChange(func(st autosave.State) {
			s.notify.AutoSaveStatus(sess.courseID, sess.id, st)
		}),
	}
	if s.cfg.Clock != nil {
		opts = append(opts, autosave.WithClock(s.cfg.Clock))
	}
	sess.saver = autosave.New(s.cfg.AutosaveDebounce, opts...)

	s.mu.Lock()
	s.sessions[sess.id] = sess
	active := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetSessionsActive(active)

	s.log.Info("builder session opened", "session_id", sess.id, "course_id", courseID, "user_id", userID)
	return sess.view(), nil
}

// loadInitialSnapshot prefers the user's saved draft and falls back to the course rows.
func (s *builderService) loadInitialSnapshot(ctx context.Context, courseID, userID uuid.UUID) (builder.Snapshot, error) {
	draft, err := s.draftRepo.GetByCourseAndUser(ctx, s.db, courseID, userID)
	if err != nil {
		return builder.Snapshot{}, err
	}
	if draft != nil {
		snap, derr := builder.DecodeSnapshot(draft.Snapshot)
		if derr == nil {
			return snap.WithModules(reorder.Renumber(snap.Modules)), nil
		}
		s.log.Warn("stored draft is invalid, rebuilding from course", "error", derr, "course_id", courseID, "revision", draft.Revision)
	}

	modules, err := s.moduleRepo.GetByCourseIDs(ctx, s.db, []uuid.UUID{courseID})
	if err != nil {
		return builder.Snapshot{}, err
	}
	moduleIDs := make([]uuid.UUID, 0, len(modules))
	for _, m := range modules {
		moduleIDs = append(moduleIDs, m.ID)
	}
	lessons, err := s.lessonRepo.GetByModuleIDs(ctx, s.db, moduleIDs)
	if err != nil {
		return builder.Snapshot{}, err
	}
	return snapshotFromRows(modules, lessons), nil
}

func (s *builderService) session(ctx context.Context, sessionID uuid.UUID) (*builderSession, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	// Another user's session reads as missing.
	if !ok || sess.userID != userID {
		return nil, apierr.NotFound("session_not_found", ErrSessionNotFound)
	}
	return sess, nil
}

func (s *builderService) GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.view(), nil
}

func (s *builderService) ApplySnapshot(ctx context.Context, sessionID uuid.UUID, snap builder.Snapshot) (*SessionView, error) {
	return s.mutate(ctx, sessionID, "apply", func(present builder.Snapshot) (builder.Snapshot, error) {
		next := snap.WithModules(reorder.Renumber(snap.Modules))
		if err := next.Validate(); err != nil {
			return builder.Snapshot{}, apierr.BadRequest("invalid_snapshot", err)
		}
		return next, nil
	})
}

func (s *builderService) ReorderModules(ctx context.Context, sessionID uuid.UUID, draggedID, targetID string) (*SessionView, error) {
	return s.mutate(ctx, sessionID, "reorder_modules", func(present builder.Snapshot) (builder.Snapshot, error) {
		return present.WithModules(reorder.Modules(present.Modules, draggedID, targetID)), nil
	})
}

func (s *builderService) ReorderLessons(ctx context.Context, sessionID uuid.UUID, moduleID, draggedLessonID, targetLessonID string) (*SessionView, error) {
	return s.mutate(ctx, sessionID, "reorder_lessons", func(present builder.Snapshot) (builder.Snapshot, error) {
		return present.WithModules(reorder.Lessons(present.Modules, moduleID, draggedLessonID, targetLessonID)), nil
	})
}

func (s *builderService) MoveLesson(ctx context.Context, sessionID uuid.UUID, lessonID, targetModuleID, targetLessonID string) (*SessionView, error) {
	return s.mutate(ctx, sessionID, "move_lesson", func(present builder.Snapshot) (builder.Snapshot, error) {
		return present.WithModules(reorder.MoveLesson(present.Modules, lessonID, targetModuleID, targetLessonID)), nil
	})
}

// mutate pushes fn's result onto the session history and schedules a save. Apply always
// pushes; a structural edit that changes nothing (unknown ids) is reported as a no-op.
func (s *builderService) mutate(ctx context.Context, sessionID uuid.UUID, op string, fn func(builder.Snapshot) (builder.Snapshot, error)) (*SessionView, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	next, err := fn(sess.hist.Present)
	if err != nil {
		sess.mu.Unlock()
		s.metrics.IncBuilderOp(op, "error")
		return nil, err
	}
	if op != "apply" && reflect.DeepEqual(next, sess.hist.Present) {
		sess.lastUsed = s.now()
		sess.mu.Unlock()
		s.metrics.IncBuilderOp(op, "noop")
		return sess.view(), nil
	}
	sess.hist = history.Limit(history.Push(sess.hist, next), s.cfg.HistoryLimit)
	sess.lastUsed = s.now()
	sess.mu.Unlock()

	return s.afterChange(sess, op), nil
}

func (s *builderService) Undo(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	return s.step(ctx, sessionID, "undo", history.CanUndo, history.Undo)
}

func (s *builderService) Redo(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	return s.step(ctx, sessionID, "redo", history.CanRedo, history.Redo)
}

// step applies undo or redo. At a stack boundary nothing changes and no save is scheduled.
func (s *builderService) step(ctx context.Context, sessionID uuid.UUID, op string, can func(history.State) bool, apply func(history.State) history.State) (*SessionView, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.lastUsed = s.now()
	if !can(sess.hist) {
		sess.mu.Unlock()
		s.metrics.IncBuilderOp(op, "noop")
		return sess.view(), nil
	}
	sess.hist = apply(sess.hist)
	sess.mu.Unlock()

	return s.afterChange(sess, op), nil
}

func (s *builderService) afterChange(sess *builderSession, op string) *SessionView {
	sess.saver.MarkUnsaved()
	sess.saver.Schedule(s.saveAction(sess, "debounce"))
	s.metrics.IncBuilderOp(op, "ok")

	view := sess.view()
	s.notify.HistoryChanged(view)
	return view
}

func (s *builderService) SaveNow(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.flush(ctx, sess); err != nil {
		return nil, err
	}
	return sess.view(), nil
}

func (s *builderService) flush(ctx context.Context, sess *builderSession) error {
	err := sess.saver.Flush(ctx, s.saveAction(sess, "flush"))
	if err == nil {
		return nil
	}
	if errors.Is(err, autosave.ErrSaveFailed) {
		return apierr.New(http.StatusBadGateway, "autosave_failed", err)
	}
	return err
}

// saveAction persists whatever the session's present is when the action runs, so a
// debounced save always writes the latest state.
func (s *builderService) saveAction(sess *builderSession, trigger string) autosave.Action {
	return func(ctx context.Context) error {
		start := time.Now()
		err := s.persist(ctx, sess)
		status := "saved"
		if err != nil {
			status = "error"
			s.log.Warn("builder save failed", "error", err, "session_id", sess.id, "course_id", sess.courseID, "trigger", trigger)
		}
		s.metrics.ObserveAutoSave(trigger, status, time.Since(start))
		return err
	}
}

func (s *builderService) persist(ctx context.Context, sess *builderSession) (err error) {
	ctx, span := observability.Tracer().Start(ctx, "builder.save")
	span.SetAttributes(
		attribute.String("builder.session_id", sess.id.String()),
		attribute.String("builder.course_id", sess.courseID.String()),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	snap := sess.present()
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	span.SetAttributes(attribute.Int("builder.lessons", snap.LessonCount()))

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		draft, err := s.draftRepo.Save(ctx, tx, sess.courseID, sess.userID, datatypes.JSON(raw), s.now())
		if err != nil {
			return fmt.Errorf("save draft: %w", err)
		}
		span.SetAttributes(attribute.Int("builder.revision", draft.Revision))
		return s.syncStructure(ctx, tx, sess.courseID, snap)
	})
}

func (s *builderService) BuildTemplate(ctx context.Context, sessionID uuid.UUID) (*TemplateResult, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.templates == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "templates_unavailable", errors.New("template export not configured"))
	}

	snap := sess.present()
	row, structure, err := s.templates.Export(ctx, s.db, sess.courseID, snap.Modules)
	if err != nil {
		return nil, err
	}
	s.notify.TemplateBuilt(sess.courseID, sess.id, row)
	return &TemplateResult{Template: row, Structure: structure}, nil
}

func (s *builderService) CloseSession(ctx context.Context, sessionID uuid.UUID) error {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.dirty() {
		// Keep the session on failure so the editor can retry.
		if err := s.flush(ctx, sess); err != nil {
			return err
		}
	}
	s.evict(sess)
	s.log.Info("builder session closed", "session_id", sess.id, "course_id", sess.courseID)
	return nil
}

func (s *builderService) evict(sess *builderSession) {
	sess.saver.Close()
	s.mu.Lock()
	delete(s.sessions, sess.id)
	active := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetSessionsActive(active)
	s.notify.SessionClosed(sess.courseID, sess.id)
}

func (s *builderService) snapshotSessions() []*builderSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*builderSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

func (s *builderService) FlushAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, sess := range s.snapshotSessions() {
		if !sess.dirty() {
			continue
		}
		sess := sess
		g.Go(func() error {
			if err := s.flush(gctx, sess); err != nil {
				return fmt.Errorf("flush session %s: %w", sess.id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *builderService) Start(ctx context.Context) {
	interval := s.cfg.SessionIdleTTL / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.reapIdle(ctx)
			}
		}
	}()
}

// reapIdle flushes and evicts sessions idle for longer than SessionIdleTTL. A session whose
// flush fails stays open and is retried on the next tick.
func (s *builderService) reapIdle(ctx context.Context) int {
	cutoff := s.now().Add(-s.cfg.SessionIdleTTL)
	reaped := 0
	for _, sess := range s.snapshotSessions() {
		sess.mu.Lock()
		idle := sess.lastUsed.Before(cutoff)
		sess.mu.Unlock()
		if !idle {
			continue
		}
		if sess.dirty() {
			flushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := s.flush(flushCtx, sess)
			cancel()
			if err != nil {
				s.log.Warn("idle session flush failed", "error", err, "session_id", sess.id)
				continue
			}
		}
		s.evict(sess)
		reaped++
	}
	if reaped > 0 {
		s.log.Info("reaped idle builder sessions", "count", reaped)
	}
	return reaped
}
