package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dealerhubhq/dealerhub-backend/internal/drafts"
	pkgerrors "github.com/dealerhubhq/dealerhub-backend/pkg/errors"
	"github.com/dealerhubhq/dealerhub-backend/pkg/logger"
	"github.com/dealerhubhq/dealerhub-backend/pkg/metrics"
)

// Locker is the slice of the redis client used to gate submissions.
type Locker interface {
	AcquireSubmitLock(ctx context.Context, kind, ownerID string, ttl time.Duration) (bool, error)
	ReleaseSubmitLock(ctx context.Context, kind, ownerID string) error
}

// Sequencer hands out monotonically increasing numbers for stock and deal
// number generation.
type Sequencer interface {
	NextSequence(ctx context.Context, name string) (int64, error)
}

// State is the wizard state returned to the client after every operation.
type State[D any] struct {
	Kind       string            `json:"kind"`
	Step       int               `json:"step"`
	Draft      D                 `json:"draft"`
	Errors     map[string]string `json:"errors"`
	Submitting bool              `json:"submitting"`
	SavedAt    string            `json:"saved_at,omitempty"`
}

type session[D any] struct {
	mu      sync.Mutex
	machine *Machine[D]
	dirty   bool
	// touched is read by Flush concurrently with request-path writes, so it
	// lives outside both mutexes as unix nanos.
	touched atomic.Int64
}

func (s *session[D]) touch() {
	s.touched.Store(time.Now().UnixNano())
}

func (s *session[D]) idleFor(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.touched.Load()))
}

// ManagerConfig wires a Manager.
type ManagerConfig[D any] struct {
	Kind             string
	Store            *drafts.Store[D]
	Locker           Locker
	Fresh            func(ctx context.Context) (D, error)
	Validate         StepValidator[D]
	Review           ReviewValidator[D]
	SubmitLockTTL    time.Duration
	AutosaveInterval time.Duration
	SessionIdleTTL   time.Duration
	Logger           *logger.Logger
	Metrics          *metrics.WizardMetrics
}

// Manager owns the live wizard sessions for one wizard kind. Each owner gets
// at most one session; the session holds the machine, and drafts flow to the
// draft store on step transitions plus a periodic autosave flush.
type Manager[D any] struct {
	cfg      ManagerConfig[D]
	mu       sync.Mutex
	sessions map[string]*session[D]
}

func NewManager[D any](cfg ManagerConfig[D]) (*Manager[D], error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("wizard kind required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("draft store required")
	}
	if cfg.Locker == nil {
		return nil, fmt.Errorf("submit locker required")
	}
	if cfg.Fresh == nil {
		return nil, fmt.Errorf("fresh draft factory required")
	}
	if cfg.Validate == nil {
		return nil, fmt.Errorf("step validator required")
	}
	if cfg.Review == nil {
		return nil, fmt.Errorf("review validator required")
	}
	if cfg.SubmitLockTTL <= 0 {
		cfg.SubmitLockTTL = 30 * time.Second
	}
	if cfg.AutosaveInterval <= 0 {
		cfg.AutosaveInterval = 30 * time.Second
	}
	if cfg.SessionIdleTTL <= 0 {
		cfg.SessionIdleTTL = time.Hour
	}
	return &Manager[D]{
		cfg:      cfg,
		sessions: make(map[string]*session[D]),
	}, nil
}

// State returns the owner's wizard state, restoring a persisted draft or
// seeding a fresh one on first touch.
func (m *Manager[D]) State(ctx context.Context, ownerID string) (State[D], error) {
	sess, err := m.session(ctx, ownerID)
	if err != nil {
		return State[D]{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return m.state(ctx, ownerID, sess), nil
}

// ApplyField merges a single-or-few-field patch and clears errors for the
// patched fields.
func (m *Manager[D]) ApplyField(ctx context.Context, ownerID string, patch json.RawMessage) (State[D], error) {
	return m.mutate(ctx, ownerID, func(sess *session[D]) error {
		if err := sess.machine.Apply(patch); err != nil {
			return err
		}
		sess.dirty = true
		return nil
	})
}

// ApplyBatch merges a multi-field patch without clearing errors (VIN-decode
// auto-fill, batched toggles).
func (m *Manager[D]) ApplyBatch(ctx context.Context, ownerID string, patch json.RawMessage) (State[D], error) {
	return m.mutate(ctx, ownerID, func(sess *session[D]) error {
		if err := sess.machine.ApplyBatch(patch); err != nil {
			return err
		}
		sess.dirty = true
		return nil
	})
}

// Advance validates the current step and moves forward on success. A
// successful transition saves the draft immediately.
func (m *Manager[D]) Advance(ctx context.Context, ownerID string) (State[D], error) {
	return m.mutate(ctx, ownerID, func(sess *session[D]) error {
		if sess.machine.Advance() {
			m.saveLocked(ctx, ownerID, sess)
		}
		return nil
	})
}

// Back retreats one step.
func (m *Manager[D]) Back(ctx context.Context, ownerID string) (State[D], error) {
	return m.mutate(ctx, ownerID, func(sess *session[D]) error {
		sess.machine.Back()
		sess.dirty = true
		return nil
	})
}

// GoTo jumps to a step; landing on review re-validates prior steps.
func (m *Manager[D]) GoTo(ctx context.Context, ownerID string, step int) (State[D], error) {
	return m.mutate(ctx, ownerID, func(sess *session[D]) error {
		sess.machine.GoTo(step)
		sess.dirty = true
		return nil
	})
}

// Submit runs fn with the draft under a redis submit lock. Success clears the
// persisted draft and resets the session; failure leaves draft and step
// intact so the owner retries without data loss.
func (m *Manager[D]) Submit(ctx context.Context, ownerID string, fn func(context.Context, D) error) (State[D], error) {
	sess, err := m.session(ctx, ownerID)
	if err != nil {
		return State[D]{}, err
	}

	acquired, err := m.cfg.Locker.AcquireSubmitLock(ctx, m.cfg.Kind, ownerID, m.cfg.SubmitLockTTL)
	if err != nil {
		return State[D]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire submit lock")
	}
	if !acquired {
		return State[D]{}, pkgerrors.New(pkgerrors.CodeSubmitLocked, "a submission is already in progress")
	}
	defer func() {
		if releaseErr := m.cfg.Locker.ReleaseSubmitLock(ctx, m.cfg.Kind, ownerID); releaseErr != nil {
			m.warn(ctx, ownerID, "release submit lock failed")
		}
	}()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	submitErr := sess.machine.Submit(ctx, func(ctx context.Context) error {
		return fn(ctx, sess.machine.Draft())
	})
	if submitErr != nil {
		if m.cfg.Metrics != nil {
			m.cfg.Metrics.IncSubmitFailure(m.cfg.Kind)
		}
		return m.state(ctx, ownerID, sess), submitErr
	}

	if clearErr := m.cfg.Store.Clear(ctx, ownerID); clearErr != nil {
		m.warn(ctx, ownerID, "clear draft after submit failed")
	}
	fresh, freshErr := m.cfg.Fresh(ctx)
	if freshErr != nil {
		return State[D]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, freshErr, "seed fresh draft")
	}
	sess.machine.Reset(fresh)
	sess.dirty = false
	if m.cfg.Metrics != nil {
		m.cfg.Metrics.IncSubmitSuccess(m.cfg.Kind)
	}
	return m.state(ctx, ownerID, sess), nil
}

// Reset discards the draft and returns the wizard to step one.
func (m *Manager[D]) Reset(ctx context.Context, ownerID string) (State[D], error) {
	return m.mutate(ctx, ownerID, func(sess *session[D]) error {
		if err := m.cfg.Store.Clear(ctx, ownerID); err != nil {
			m.warn(ctx, ownerID, "clear draft on reset failed")
		}
		fresh, err := m.cfg.Fresh(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed fresh draft")
		}
		sess.machine.Reset(fresh)
		sess.dirty = false
		return nil
	})
}

// Flush autosaves every dirty session and evicts sessions idle past the TTL.
func (m *Manager[D]) Flush(ctx context.Context) {
	m.mu.Lock()
	snapshot := make(map[string]*session[D], len(m.sessions))
	for owner, sess := range m.sessions {
		snapshot[owner] = sess
	}
	m.mu.Unlock()

	now := time.Now()
	for owner, sess := range snapshot {
		sess.mu.Lock()
		if sess.dirty {
			m.saveLocked(ctx, owner, sess)
			if m.cfg.Metrics != nil {
				m.cfg.Metrics.IncAutosave(m.cfg.Kind)
			}
		}
		idle := sess.idleFor(now) > m.cfg.SessionIdleTTL && !sess.dirty
		sess.mu.Unlock()

		if !idle {
			continue
		}
		m.mu.Lock()
		sess.mu.Lock()
		// A request may have landed since the check above; evict only if the
		// session is still clean and stale.
		if !sess.dirty && sess.idleFor(time.Now()) > m.cfg.SessionIdleTTL {
			delete(m.sessions, owner)
		}
		sess.mu.Unlock()
		m.mu.Unlock()
	}
}

// Run drives the autosave flusher until ctx is cancelled.
func (m *Manager[D]) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.AutosaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.Flush(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			m.Flush(ctx)
		}
	}
}

func (m *Manager[D]) mutate(ctx context.Context, ownerID string, fn func(*session[D]) error) (State[D], error) {
	sess, err := m.session(ctx, ownerID)
	if err != nil {
		return State[D]{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := fn(sess); err != nil {
		return State[D]{}, err
	}
	return m.state(ctx, ownerID, sess), nil
}

// session returns the owner's live session, creating it from the draft store
// or a fresh seed.
func (m *Manager[D]) session(ctx context.Context, ownerID string) (*session[D], error) {
	if ownerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user identity")
	}

	m.mu.Lock()
	if sess, ok := m.sessions[ownerID]; ok {
		sess.touch()
		m.mu.Unlock()
		return sess, nil
	}
	m.mu.Unlock()

	// Build outside the map lock; draft load hits redis.
	fresh, err := m.cfg.Fresh(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed fresh draft")
	}
	machine, err := NewMachine(fresh, m.cfg.Validate, m.cfg.Review)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build wizard machine")
	}

	if snapshot, loadErr := m.cfg.Store.Load(ctx, ownerID); loadErr != nil {
		m.warn(ctx, ownerID, "draft restore failed, starting fresh")
	} else if snapshot != nil {
		machine.Restore(snapshot.Draft, snapshot.Step)
		if m.cfg.Metrics != nil {
			m.cfg.Metrics.IncDraftRestore(m.cfg.Kind)
		}
	}

	sess := &session[D]{machine: machine}
	sess.touch()

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[ownerID]; ok {
		existing.touch()
		return existing, nil
	}
	m.sessions[ownerID] = sess
	return sess, nil
}

// saveLocked persists the draft; the caller holds sess.mu. Persistence is
// advisory, so failures log and the wizard keeps going.
func (m *Manager[D]) saveLocked(ctx context.Context, ownerID string, sess *session[D]) {
	if err := m.cfg.Store.Save(ctx, ownerID, sess.machine.Draft(), sess.machine.Step()); err != nil {
		m.warn(ctx, ownerID, "draft save failed")
		return
	}
	sess.dirty = false
}

func (m *Manager[D]) state(ctx context.Context, ownerID string, sess *session[D]) State[D] {
	savedAt, err := m.cfg.Store.SavedAt(ctx, ownerID)
	if err != nil {
		savedAt = ""
	}
	return State[D]{
		Kind:       m.cfg.Kind,
		Step:       sess.machine.Step(),
		Draft:      sess.machine.Draft(),
		Errors:     sess.machine.Errors(),
		Submitting: sess.machine.Submitting(),
		SavedAt:    savedAt,
	}
}

func (m *Manager[D]) warn(ctx context.Context, ownerID string, msg string) {
	if m.cfg.Logger == nil {
		return
	}
	ctx = m.cfg.Logger.WithWizard(ctx, m.cfg.Kind)
	ctx = m.cfg.Logger.WithFields(ctx, map[string]any{"owner_id": ownerID})
	m.cfg.Logger.Warn(ctx, msg)
}
