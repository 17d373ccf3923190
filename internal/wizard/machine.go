package wizard

import (
	"context"
	"encoding/json"
	"fmt"

	pkgerrors "github.com/dealerhubhq/dealerhub-backend/pkg/errors"
)

const (
	FirstStep  = 1
	ReviewStep = 5
)

// StepValidator returns field errors for one step of a draft.
type StepValidator[D any] func(draft D, step int) map[string]string

// ReviewValidator re-runs every data-entry step; used on review entry and
// before submission so a jump-back edit cannot smuggle an invalid draft
// through a previously passed step.
type ReviewValidator[D any] func(draft D) map[string]string

// Machine owns one wizard's state: current step, draft, field errors and the
// submitting flag. It is not safe for concurrent use; Session serializes
// access.
type Machine[D any] struct {
	step       int
	draft      D
	errors     map[string]string
	submitting bool
	validate   StepValidator[D]
	review     ReviewValidator[D]
}

func NewMachine[D any](draft D, validate StepValidator[D], review ReviewValidator[D]) (*Machine[D], error) {
	if validate == nil {
		return nil, fmt.Errorf("step validator required")
	}
	if review == nil {
		return nil, fmt.Errorf("review validator required")
	}
	return &Machine[D]{
		step:     FirstStep,
		draft:    draft,
		errors:   map[string]string{},
		validate: validate,
		review:   review,
	}, nil
}

// Restore places the machine on a previously saved step without validation.
func (m *Machine[D]) Restore(draft D, step int) {
	m.draft = draft
	m.step = clampStep(step)
	m.errors = map[string]string{}
}

func (m *Machine[D]) Step() int        { return m.step }
func (m *Machine[D]) Draft() D         { return m.draft }
func (m *Machine[D]) Submitting() bool { return m.submitting }

// Errors returns a copy of the current field error map.
func (m *Machine[D]) Errors() map[string]string {
	out := make(map[string]string, len(m.errors))
	for k, v := range m.errors {
		out[k] = v
	}
	return out
}

// Apply merges a JSON patch into the draft and clears any existing error for
// each patched top-level field. No validation is performed.
func (m *Machine[D]) Apply(patch json.RawMessage) error {
	keys, err := patchKeys(patch)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(patch, &m.draft); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "patch does not match draft shape")
	}
	for _, key := range keys {
		delete(m.errors, key)
	}
	return nil
}

// ApplyBatch merges several fields at once without touching the error map.
// Used for VIN-decode auto-fill and batched toggles.
func (m *Machine[D]) ApplyBatch(patch json.RawMessage) error {
	if _, err := patchKeys(patch); err != nil {
		return err
	}
	if err := json.Unmarshal(patch, &m.draft); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "patch does not match draft shape")
	}
	return nil
}

// Advance validates the current step. On failure the machine stays put with
// the error map set. On success errors clear and the step increments, capped
// at review; entering review re-validates all prior steps.
func (m *Machine[D]) Advance() bool {
	if errs := m.validate(m.draft, m.step); len(errs) > 0 {
		m.errors = errs
		return false
	}
	m.errors = map[string]string{}
	if m.step < ReviewStep {
		m.step++
	}
	if m.step == ReviewStep {
		m.errors = m.review(m.draft)
	}
	return true
}

// Back retreats one step, floored at the first, and clears errors. Retreating
// never re-validates.
func (m *Machine[D]) Back() {
	if m.step > FirstStep {
		m.step--
	}
	m.errors = map[string]string{}
}

// GoTo jumps directly to a step (clamped). Jumping to review re-validates all
// data-entry steps and surfaces aggregated failures.
func (m *Machine[D]) GoTo(step int) {
	m.step = clampStep(step)
	m.errors = map[string]string{}
	if m.step == ReviewStep {
		m.errors = m.review(m.draft)
	}
}

// Submit runs fn under the submitting flag. A second submit while one is in
// flight is refused. The flag always clears; on failure the draft and step
// stay intact so the caller can retry without data loss.
func (m *Machine[D]) Submit(ctx context.Context, fn func(context.Context) error) error {
	if m.submitting {
		return pkgerrors.New(pkgerrors.CodeSubmitLocked, "a submission is already in progress")
	}
	if errs := m.review(m.draft); len(errs) > 0 {
		m.errors = errs
		return pkgerrors.New(pkgerrors.CodeValidation, "draft has validation errors").WithDetails(errs)
	}
	if fn == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "submit function required")
	}

	m.submitting = true
	defer func() { m.submitting = false }()

	return fn(ctx)
}

// Reset returns the machine to step one with a fresh draft.
func (m *Machine[D]) Reset(fresh D) {
	m.step = FirstStep
	m.draft = fresh
	m.errors = map[string]string{}
	m.submitting = false
}

func clampStep(step int) int {
	if step < FirstStep {
		return FirstStep
	}
	if step > ReviewStep {
		return ReviewStep
	}
	return step
}

func patchKeys(patch json.RawMessage) ([]string, error) {
	if len(patch) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "patch body required")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "patch must be a JSON object")
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "patch must set at least one field")
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	return keys, nil
}
