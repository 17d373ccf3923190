package metrics

import "github.com/prometheus/client_golang/prometheus"

// WizardMetrics counts wizard session activity per wizard kind.
type WizardMetrics struct {
	submitSuccess *prometheus.CounterVec
	submitFailure *prometheus.CounterVec
	autosaves     *prometheus.CounterVec
	draftRestores *prometheus.CounterVec
}

// NewWizardMetrics registers the wizard metrics on the provided registerer.
func NewWizardMetrics(reg prometheus.Registerer) *WizardMetrics {
	if reg == nil {
		return &WizardMetrics{}
	}
	submitSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wizard_submit_success_total",
		Help: "Successful wizard submissions.",
	}, []string{"wizard"})
	submitFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wizard_submit_failure_total",
		Help: "Failed wizard submissions.",
	}, []string{"wizard"})
	autosaves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wizard_autosave_total",
		Help: "Draft autosaves flushed to the draft store.",
	}, []string{"wizard"})
	draftRestores := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wizard_draft_restore_total",
		Help: "Wizard sessions restored from a persisted draft.",
	}, []string{"wizard"})
	reg.MustRegister(submitSuccess, submitFailure, autosaves, draftRestores)
	return &WizardMetrics{
		submitSuccess: submitSuccess,
		submitFailure: submitFailure,
		autosaves:     autosaves,
		draftRestores: draftRestores,
	}
}

// IncSubmitSuccess increments the success counter for the named wizard.
func (w *WizardMetrics) IncSubmitSuccess(wizard string) {
	if w == nil || w.submitSuccess == nil {
		return
	}
	w.submitSuccess.WithLabelValues(normalizeLabel(wizard)).Inc()
}

// IncSubmitFailure increments the failure counter for the named wizard.
func (w *WizardMetrics) IncSubmitFailure(wizard string) {
	if w == nil || w.submitFailure == nil {
		return
	}
	w.submitFailure.WithLabelValues(normalizeLabel(wizard)).Inc()
}

// IncAutosave increments the autosave counter for the named wizard.
func (w *WizardMetrics) IncAutosave(wizard string) {
	if w == nil || w.autosaves == nil {
		return
	}
	w.autosaves.WithLabelValues(normalizeLabel(wizard)).Inc()
}

// IncDraftRestore increments the restore counter for the named wizard.
func (w *WizardMetrics) IncDraftRestore(wizard string) {
	if w == nil || w.draftRestores == nil {
		return
	}
	w.draftRestores.WithLabelValues(normalizeLabel(wizard)).Inc()
}
