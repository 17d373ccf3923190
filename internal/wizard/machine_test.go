package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/dealerhubhq/dealerhub-backend/pkg/errors"
)

func newVehicleMachine(t *testing.T, draft VehicleFormData) *Machine[VehicleFormData] {
	t.Helper()
	m, err := NewMachine(draft, ValidateVehicleStep, VehicleReviewErrors)
	require.NoError(t, err)
	return m
}

func TestMachineStartsAtStepOne(t *testing.T) {
	m := newVehicleMachine(t, VehicleFormData{})
	assert.Equal(t, FirstStep, m.Step())
	assert.Empty(t, m.Errors())
	assert.False(t, m.Submitting())
}

func TestMachineApplyClearsErrorForPatchedField(t *testing.T) {
	m := newVehicleMachine(t, VehicleFormData{})

	require.False(t, m.Advance())
	require.Contains(t, m.Errors(), "vin")
	require.Contains(t, m.Errors(), "make")

	require.NoError(t, m.Apply(json.RawMessage(`{"vin":"1FA6P8F99G5123456"}`)))

	errs := m.Errors()
	assert.NotContains(t, errs, "vin")
	assert.Contains(t, errs, "make", "errors for unpatched fields stay")
	assert.Equal(t, "1FA6P8F99G5123456", m.Draft().VIN)
}

func TestMachineApplyBatchKeepsErrors(t *testing.T) {
	m := newVehicleMachine(t, VehicleFormData{})

	require.False(t, m.Advance())
	require.Contains(t, m.Errors(), "make")

	require.NoError(t, m.ApplyBatch(json.RawMessage(`{"make":"Ford","model":"Mustang"}`)))

	assert.Contains(t, m.Errors(), "make", "batch merge must not clear errors")
	assert.Equal(t, "Ford", m.Draft().Make)
}

func TestMachineApplyRejectsBadPatch(t *testing.T) {
	m := newVehicleMachine(t, VehicleFormData{})

	err := m.Apply(json.RawMessage(`not json`))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	err = m.Apply(json.RawMessage(`{}`))
	require.Error(t, err)

	err = m.Apply(json.RawMessage(`{"year":"not a number"}`))
	require.Error(t, err)
}

func TestMachineAdvanceBlocksOnInvalidStep(t *testing.T) {
	m := newVehicleMachine(t, VehicleFormData{})

	assert.False(t, m.Advance())
	assert.Equal(t, FirstStep, m.Step())
	assert.NotEmpty(t, m.Errors())
}

func TestMachineAdvanceWalksToReview(t *testing.T) {
	m := newVehicleMachine(t, validVehicleDraft())

	for step := FirstStep; step < ReviewStep; step++ {
		require.True(t, m.Advance(), "step %d should validate", step)
	}
	assert.Equal(t, ReviewStep, m.Step())
	assert.Empty(t, m.Errors())

	// advancing past review stays put
	require.True(t, m.Advance())
	assert.Equal(t, ReviewStep, m.Step())
}

func TestMachineBackFloorsAtOne(t *testing.T) {
	m := newVehicleMachine(t, validVehicleDraft())
	require.True(t, m.Advance())
	require.Equal(t, 2, m.Step())

	m.Back()
	assert.Equal(t, FirstStep, m.Step())
	m.Back()
	assert.Equal(t, FirstStep, m.Step())
}

func TestMachineBackClearsErrors(t *testing.T) {
	m := newVehicleMachine(t, VehicleFormData{})
	require.False(t, m.Advance())
	require.NotEmpty(t, m.Errors())

	m.Back()
	assert.Empty(t, m.Errors())
}

func TestMachineGoToClampsStep(t *testing.T) {
	m := newVehicleMachine(t, validVehicleDraft())

	m.GoTo(0)
	assert.Equal(t, FirstStep, m.Step())
	m.GoTo(3)
	assert.Equal(t, 3, m.Step())
	m.GoTo(42)
	assert.Equal(t, ReviewStep, m.Step())
}

func TestMachineReviewEntryRevalidatesEarlierSteps(t *testing.T) {
	m := newVehicleMachine(t, validVehicleDraft())

	// walk to review, jump back, corrupt a validated field, jump forward
	for m.Step() < ReviewStep {
		require.True(t, m.Advance())
	}
	m.GoTo(VehicleStepIdentity)
	require.NoError(t, m.ApplyBatch(json.RawMessage(`{"vin":"bad"}`)))

	m.GoTo(ReviewStep)
	assert.Contains(t, m.Errors(), "vin", "review entry must re-validate prior steps")
}

func TestMachineSubmitRefusesInvalidDraft(t *testing.T) {
	m := newVehicleMachine(t, VehicleFormData{})

	err := m.Submit(context.Background(), func(context.Context) error { return nil })
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.NotEmpty(t, m.Errors())
}

func TestMachineSubmitFailureLeavesStateIntact(t *testing.T) {
	m := newVehicleMachine(t, validVehicleDraft())
	m.GoTo(ReviewStep)

	boom := errors.New("backend down")
	err := m.Submit(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)

	assert.Equal(t, ReviewStep, m.Step(), "failed submit stays on review")
	assert.Equal(t, "1FA6P8F99G5123456", m.Draft().VIN, "draft intact for retry")
	assert.False(t, m.Submitting(), "flag always clears")
}

func TestMachineSubmitRefusesReentry(t *testing.T) {
	m := newVehicleMachine(t, validVehicleDraft())
	m.GoTo(ReviewStep)

	var nested error
	err := m.Submit(context.Background(), func(ctx context.Context) error {
		nested = m.Submit(ctx, func(context.Context) error { return nil })
		return nil
	})
	require.NoError(t, err)
	require.Error(t, nested)
	typed := pkgerrors.As(nested)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeSubmitLocked, typed.Code())
}

func TestMachineResetReturnsToInitial(t *testing.T) {
	m := newVehicleMachine(t, validVehicleDraft())
	require.True(t, m.Advance())

	m.Reset(VehicleFormData{StockNumber: "STK-000002"})

	assert.Equal(t, FirstStep, m.Step())
	assert.Equal(t, "STK-000002", m.Draft().StockNumber)
	assert.Empty(t, m.Errors())
}

func TestMachineRestoreClampsStep(t *testing.T) {
	m := newVehicleMachine(t, VehicleFormData{})
	m.Restore(validVehicleDraft(), 9)
	assert.Equal(t, ReviewStep, m.Step())

	m.Restore(validVehicleDraft(), -1)
	assert.Equal(t, FirstStep, m.Step())
}
