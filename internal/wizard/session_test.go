package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerhubhq/dealerhub-backend/internal/drafts"
	pkgerrors "github.com/dealerhubhq/dealerhub-backend/pkg/errors"
)

type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}}
}

func (m *memoryKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryKV) DraftKey(kind, ownerID string) string {
	return fmt.Sprintf("dh:draft:%s:%s", kind, ownerID)
}

func (m *memoryKV) DraftSavedAtKey(kind, ownerID string) string {
	return m.DraftKey(kind, ownerID) + ":saved_at"
}

type fakeLocker struct {
	mu     sync.Mutex
	held   map[string]bool
	denied bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (f *fakeLocker) AcquireSubmitLock(_ context.Context, kind, ownerID string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denied {
		return false, nil
	}
	key := kind + ":" + ownerID
	if f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *fakeLocker) ReleaseSubmitLock(_ context.Context, kind, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, kind+":"+ownerID)
	return nil
}

type countingSequencer struct {
	mu sync.Mutex
	n  int64
}

func (c *countingSequencer) NextSequence(context.Context, string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.n, nil
}

type managerFixture struct {
	manager *Manager[VehicleFormData]
	kv      *memoryKV
	locker  *fakeLocker
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()
	kv := newMemoryKV()
	store, err := drafts.NewStore[VehicleFormData](kv, "vehicle", time.Hour, nil)
	require.NoError(t, err)

	locker := newFakeLocker()
	manager, err := NewManager(ManagerConfig[VehicleFormData]{
		Kind:     "vehicle",
		Store:    store,
		Locker:   locker,
		Fresh:    VehicleDraftFactory(&countingSequencer{}),
		Validate: ValidateVehicleStep,
		Review:   VehicleReviewErrors,
	})
	require.NoError(t, err)
	return &managerFixture{manager: manager, kv: kv, locker: locker}
}

func TestManagerSeedsFreshDraft(t *testing.T) {
	fx := newManagerFixture(t)

	state, err := fx.manager.State(context.Background(), "owner-1")
	require.NoError(t, err)

	assert.Equal(t, "vehicle", state.Kind)
	assert.Equal(t, FirstStep, state.Step)
	assert.Equal(t, "STK-000001", state.Draft.StockNumber)
	assert.Empty(t, state.Errors)
}

func TestManagerRejectsEmptyOwner(t *testing.T) {
	fx := newManagerFixture(t)

	_, err := fx.manager.State(context.Background(), "")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestManagerAdvancePersistsDraft(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	patch, err := json.Marshal(validVehicleDraft())
	require.NoError(t, err)
	_, err = fx.manager.ApplyBatch(ctx, "owner-1", patch)
	require.NoError(t, err)

	state, err := fx.manager.Advance(ctx, "owner-1")
	require.NoError(t, err)
	require.Equal(t, 2, state.Step)
	assert.NotEmpty(t, state.SavedAt, "step transition saves the draft")

	fx.kv.mu.Lock()
	_, saved := fx.kv.data[fx.kv.DraftKey("vehicle", "owner-1")]
	fx.kv.mu.Unlock()
	assert.True(t, saved)
}

func TestManagerRestoresPersistedDraft(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	patch, err := json.Marshal(validVehicleDraft())
	require.NoError(t, err)
	_, err = fx.manager.ApplyBatch(ctx, "owner-1", patch)
	require.NoError(t, err)
	_, err = fx.manager.Advance(ctx, "owner-1")
	require.NoError(t, err)

	// a second manager over the same store simulates a restarted process
	store, err := drafts.NewStore[VehicleFormData](fx.kv, "vehicle", time.Hour, nil)
	require.NoError(t, err)
	restarted, err := NewManager(ManagerConfig[VehicleFormData]{
		Kind:     "vehicle",
		Store:    store,
		Locker:   newFakeLocker(),
		Fresh:    VehicleDraftFactory(&countingSequencer{}),
		Validate: ValidateVehicleStep,
		Review:   VehicleReviewErrors,
	})
	require.NoError(t, err)

	state, err := restarted.State(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 2, state.Step, "restored session resumes in place")
	assert.Equal(t, "1FA6P8F99G5123456", state.Draft.VIN)
}

func TestManagerFlushSavesDirtySessions(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	_, err := fx.manager.ApplyField(ctx, "owner-1", json.RawMessage(`{"make":"Ford"}`))
	require.NoError(t, err)

	fx.kv.mu.Lock()
	_, savedBefore := fx.kv.data[fx.kv.DraftKey("vehicle", "owner-1")]
	fx.kv.mu.Unlock()
	require.False(t, savedBefore, "field edits alone do not save")

	fx.manager.Flush(ctx)

	fx.kv.mu.Lock()
	_, savedAfter := fx.kv.data[fx.kv.DraftKey("vehicle", "owner-1")]
	fx.kv.mu.Unlock()
	assert.True(t, savedAfter, "flush persists dirty sessions")
}

func TestManagerFlushConcurrentWithRequests(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	_, err := fx.manager.State(ctx, "owner-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if _, err := fx.manager.State(ctx, "owner-1"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	for i := 0; i < 200; i++ {
		fx.manager.Flush(ctx)
	}
	wg.Wait()

	state, err := fx.manager.State(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "STK-000001", state.Draft.StockNumber, "session survives concurrent flushes")
}

func TestManagerFlushEvictsIdleSessions(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	_, err := fx.manager.ApplyField(ctx, "owner-1", json.RawMessage(`{"make":"Ford"}`))
	require.NoError(t, err)

	fx.manager.mu.Lock()
	sess := fx.manager.sessions["owner-1"]
	fx.manager.mu.Unlock()
	require.NotNil(t, sess)
	sess.touched.Store(time.Now().Add(-2 * time.Hour).UnixNano())

	fx.manager.Flush(ctx)

	fx.manager.mu.Lock()
	_, alive := fx.manager.sessions["owner-1"]
	fx.manager.mu.Unlock()
	assert.False(t, alive, "stale session evicted after its draft is flushed")

	fx.kv.mu.Lock()
	_, saved := fx.kv.data[fx.kv.DraftKey("vehicle", "owner-1")]
	fx.kv.mu.Unlock()
	assert.True(t, saved, "dirty draft persisted before eviction")

	// the next request rebuilds the session from the persisted draft
	state, err := fx.manager.State(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "Ford", state.Draft.Make)
}

func TestManagerFlushKeepsFreshlyTouchedSession(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	_, err := fx.manager.State(ctx, "owner-1")
	require.NoError(t, err)

	fx.manager.Flush(ctx)

	fx.manager.mu.Lock()
	_, alive := fx.manager.sessions["owner-1"]
	fx.manager.mu.Unlock()
	assert.True(t, alive, "a just-touched session is not evicted")
}

func TestManagerSubmitSuccessClearsDraft(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	patch, err := json.Marshal(validVehicleDraft())
	require.NoError(t, err)
	_, err = fx.manager.ApplyBatch(ctx, "owner-1", patch)
	require.NoError(t, err)
	_, err = fx.manager.GoTo(ctx, "owner-1", ReviewStep)
	require.NoError(t, err)

	var submitted VehicleFormData
	state, err := fx.manager.Submit(ctx, "owner-1", func(_ context.Context, draft VehicleFormData) error {
		submitted = draft
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "1FA6P8F99G5123456", submitted.VIN)
	assert.Equal(t, FirstStep, state.Step, "session resets after success")
	assert.Equal(t, "STK-000002", state.Draft.StockNumber, "fresh draft seeded")

	fx.kv.mu.Lock()
	assert.Empty(t, fx.kv.data, "persisted draft cleared")
	fx.kv.mu.Unlock()
}

func TestManagerSubmitFailureKeepsDraft(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	patch, err := json.Marshal(validVehicleDraft())
	require.NoError(t, err)
	_, err = fx.manager.ApplyBatch(ctx, "owner-1", patch)
	require.NoError(t, err)
	_, err = fx.manager.GoTo(ctx, "owner-1", ReviewStep)
	require.NoError(t, err)

	boom := errors.New("backend down")
	state, err := fx.manager.Submit(ctx, "owner-1", func(context.Context, VehicleFormData) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, ReviewStep, state.Step)
	assert.Equal(t, "1FA6P8F99G5123456", state.Draft.VIN, "draft intact for manual retry")

	// and the lock released, so a retry is possible
	_, err = fx.manager.Submit(ctx, "owner-1", func(context.Context, VehicleFormData) error {
		return nil
	})
	require.NoError(t, err)
}

func TestManagerSubmitLockContention(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	patch, err := json.Marshal(validVehicleDraft())
	require.NoError(t, err)
	_, err = fx.manager.ApplyBatch(ctx, "owner-1", patch)
	require.NoError(t, err)

	fx.locker.denied = true
	_, err = fx.manager.Submit(ctx, "owner-1", func(context.Context, VehicleFormData) error {
		t.Fatal("submit fn must not run without the lock")
		return nil
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeSubmitLocked, typed.Code())
}

func TestManagerResetDiscardsDraft(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	_, err := fx.manager.ApplyField(ctx, "owner-1", json.RawMessage(`{"make":"Ford"}`))
	require.NoError(t, err)
	fx.manager.Flush(ctx)

	state, err := fx.manager.Reset(ctx, "owner-1")
	require.NoError(t, err)

	assert.Equal(t, FirstStep, state.Step)
	assert.Empty(t, state.Draft.Make)

	fx.kv.mu.Lock()
	assert.Empty(t, fx.kv.data)
	fx.kv.mu.Unlock()
}
