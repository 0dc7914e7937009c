// Package autosave implements the debounced save controller behind a builder session.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusUnsaved Status = "unsaved"
	StatusSaving  Status = "saving"
	StatusSaved   Status = "saved"
	StatusError   Status = "error"
)

type State struct {
	Status      Status     `json:"status"`
	LastSavedAt *time.Time `json:"lastSavedAt"`
}

// Action persists whatever the caller considers current. It is invoked at most once at a time
// per controller.
type Action func(ctx context.Context) error

var ErrSaveFailed = errors.New("Auto-save failed")

// SaveError is returned by Flush when the action fails. Its message is fixed so callers can
// surface it verbatim; Unwrap exposes the cause.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string { return ErrSaveFailed.Error() }

func (e *SaveError) Unwrap() error { return e.Err }

func (e *SaveError) Is(target error) bool { return target == ErrSaveFailed }

type Option func(*Controller)

func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithBaseContext sets the context handed to debounced actions. Flush uses its own ctx.
func WithBaseContext(ctx context.Context) Option {
	return func(c *Controller) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}

// WithOnChange registers a hook called after every status change, outside the controller lock.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

type Controller struct {
	debounce time.Duration
	clock    Clock
	baseCtx  context.Context
	onChange func(State)

	mu       sync.Mutex
	state    State
	timer    Timer
	timerSeq uint64
	inFlight bool
	idle     chan struct{}
	queued   Action
	closed   bool
}

func New(debounce time.Duration, opts ...Option) *Controller {
	c := &Controller{
		debounce: debounce,
		clock:    realClock{},
		baseCtx:  context.Background(),
		state:    State{Status: StatusIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Pending reports whether a debounce timer is armed.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// MarkUnsaved flags local changes. The debounce timer is left alone.
func (c *Controller) MarkUnsaved() {
	c.mu.Lock()
	changed := c.state.Status != StatusUnsaved
	c.state.Status = StatusUnsaved
	st := c.snapshotLocked()
	c.mu.Unlock()
	if changed {
		c.notify(st)
	}
}

// Schedule (re)arms the debounce timer with action. Only the most recent action runs.
// Failures end in StatusError and are not reported to the caller.
func (c *Controller) Schedule(action Action) {
	if action == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopTimerLocked()
	seq := c.timerSeq
	c.timer = c.clock.AfterFunc(c.debounce, func() { c.fire(seq, action) })
}

// Flush cancels any pending timer and runs action now, after waiting for an in-flight save.
// A failed action yields a *SaveError.
func (c *Controller) Flush(ctx context.Context, action Action) error {
	if action == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	c.stopTimerLocked()
	c.queued = nil
	for c.inFlight {
		idle := c.idle
		c.mu.Unlock()
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
	}
	st := c.beginLocked()
	c.mu.Unlock()
	c.notify(st)

	err := action(ctx)

	next := c.finish(err)
	if next != nil {
		go c.run(next)
	}
	if err != nil {
		return &SaveError{Err: err}
	}
	return nil
}

// Close stops the timer and drops queued work. An in-flight save is allowed to finish and
// Flush keeps working.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTimerLocked()
	c.queued = nil
}

func (c *Controller) fire(seq uint64, action Action) {
	c.mu.Lock()
	if c.closed || seq != c.timerSeq || c.timer == nil {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	if c.inFlight {
		c.queued = action
		c.mu.Unlock()
		return
	}
	st := c.beginLocked()
	c.mu.Unlock()
	c.notify(st)
	c.run(action)
}

// run executes action and then drains anything queued while it was in flight.
func (c *Controller) run(action Action) {
	for action != nil {
		err := action(c.baseCtx)
		action = c.finish(err)
	}
}

// finish records the outcome of the in-flight action. If a debounced action was queued
// meanwhile it is returned with the controller still marked in flight.
func (c *Controller) finish(err error) Action {
	c.mu.Lock()
	if err != nil {
		c.state.Status = StatusError
	} else {
		now := c.clock.Now()
		c.state.Status = StatusSaved
		c.state.LastSavedAt = &now
	}
	st := c.snapshotLocked()

	next := c.queued
	c.queued = nil
	if next != nil && !c.closed {
		c.mu.Unlock()
		c.notify(st)
		c.mu.Lock()
		st = c.beginLocked()
		c.mu.Unlock()
		c.notify(st)
		return next
	}
	c.inFlight = false
	if c.idle != nil {
		close(c.idle)
		c.idle = nil
	}
	c.mu.Unlock()
	c.notify(st)
	return nil
}

func (c *Controller) beginLocked() State {
	if !c.inFlight {
		c.inFlight = true
		c.idle = make(chan struct{})
	}
	c.state.Status = StatusSaving
	return c.snapshotLocked()
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerSeq++
}

func (c *Controller) snapshotLocked() State {
	st := State{Status: c.state.Status}
	if c.state.LastSavedAt != nil {
		t := *c.state.LastSavedAt
		st.LastSavedAt = &t
	}
	return st
}

func (c *Controller) notify(st State) {
	if c.onChange != nil {
		c.onChange(st)
	}
}
