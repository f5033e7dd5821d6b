// Package wizard sequences the five intake steps: it validates each step,
// merges accepted answers, asks the enrichment service for suggestions in
// the background and hands the finished answers to a submission gateway.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"devcraft-studio/backend/internal/features/intake/domain"
)

const (
	DefaultSubmitTimeout = 30 * time.Second
	DefaultEnrichTimeout = 20 * time.Second
)

var (
	ErrIllegalTransition = errors.New("illegal wizard transition")
	ErrStepMismatch      = errors.New("input does not belong to the current step")
	ErrSubmitting        = errors.New("submission in progress")
	ErrFinished          = errors.New("wizard already submitted")
)

// SubmissionError reports a failed gateway call. The wizard is back on the
// contact step with every answer kept.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "submit project request: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Enricher produces feature suggestions for a project.
type Enricher interface {
	FetchSuggestions(ctx context.Context, projectType domain.ProjectType, features []string) ([]domain.Suggestion, error)
}

// Gateway persists a completed request.
type Gateway interface {
	Submit(ctx context.Context, req domain.ProjectRequest) (*domain.Submission, error)
}

// Option configures a Wizard.
type Option func(*Wizard)

func WithID(id string) Option { return func(w *Wizard) { w.id = id } }

func WithLogger(logger *slog.Logger) Option { return func(w *Wizard) { w.logger = logger } }

func WithSubmitTimeout(d time.Duration) Option { return func(w *Wizard) { w.submitTimeout = d } }

func WithEnrichTimeout(d time.Duration) Option { return func(w *Wizard) { w.enrichTimeout = d } }

// WithPrompts sets the assistant message shown on each step.
func WithPrompts(prompts map[domain.Step]string) Option {
	return func(w *Wizard) { w.prompts = prompts }
}

// Wizard is one client's run through the intake steps. All methods are safe
// for concurrent use; transitions are serialized.
type Wizard struct {
	id            string
	enricher      Enricher
	gateway       Gateway
	logger        *slog.Logger
	submitTimeout time.Duration
	enrichTimeout time.Duration
	prompts       map[domain.Step]string

	mu               sync.Mutex
	machine          *stepMachine
	answers          domain.AnswerSet
	suggestions      []domain.Suggestion
	issued           uint64
	enrichedFeatures []string
	submission       *domain.Submission
	lastErr          string
	lastActive       time.Time

	inflight sync.WaitGroup
}

// New starts a wizard on step 1. enricher may be nil to disable suggestions.
func New(enricher Enricher, gateway Gateway, opts ...Option) (*Wizard, error) {
	if gateway == nil {
		return nil, errors.New("wizard: gateway is required")
	}
	w := &Wizard{
		enricher:      enricher,
		gateway:       gateway,
		submitTimeout: DefaultSubmitTimeout,
		enrichTimeout: DefaultEnrichTimeout,
		lastActive:    time.Now(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.id == "" {
		w.id = uuid.NewString()
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	w.logger = w.logger.With("session", w.id)

	machine, err := newStepMachine(w.id)
	if err != nil {
		return nil, err
	}
	w.machine = machine
	return w, nil
}

// ID identifies the wizard session.
func (w *Wizard) ID() string { return w.id }

// Advance validates in against the current step. Invalid input returns
// domain.ValidationErrors and leaves the wizard untouched. On step 5 the
// merged answers are submitted and Advance blocks until the gateway answers.
func (w *Wizard) Advance(ctx context.Context, in domain.StepInput) error {
	w.mu.Lock()
	w.lastActive = time.Now()
	if err := w.guardLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	step := w.machine.step()
	if in.Step() != step {
		w.mu.Unlock()
		return fmt.Errorf("%w: got %s input on %s", ErrStepMismatch, in.Step(), step)
	}
	if errs := domain.SchemaFor(step)(in, w.answers); len(errs) > 0 {
		w.mu.Unlock()
		return errs
	}

	next := w.answers.With(in)
	switch step {
	case domain.StepProjectType:
		next = dropForeignFeatures(next)
		projectType, _ := next.SelectedType()
		w.requestSuggestionsLocked(ctx, projectType, nil)
	case domain.StepFeatures:
		projectType, _ := next.SelectedType()
		if features := next.SelectedFeatures(); !sameFeatures(features, w.enrichedFeatures) {
			w.requestSuggestionsLocked(ctx, projectType, features)
		}
	}

	if step < domain.StepContact {
		if err := w.machine.fire(eventAdvance); err != nil {
			w.mu.Unlock()
			return err
		}
		w.answers = next
		w.logger.Debug("wizard advanced", "step", w.machine.step())
		w.mu.Unlock()
		return nil
	}

	req, ok := next.Complete()
	if !ok {
		w.mu.Unlock()
		panic("wizard: contact step reached with an incomplete answer set")
	}
	if err := w.machine.fire(eventAdvance); err != nil {
		w.mu.Unlock()
		return err
	}
	w.answers = next
	w.lastErr = ""
	w.mu.Unlock()

	sub, err := w.submit(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastActive = time.Now()
	if err != nil {
		if ferr := w.machine.fire(eventFailed); ferr != nil {
			return ferr
		}
		w.lastErr = err.Error()
		w.logger.Warn("submission failed", "error", err)
		return &SubmissionError{Err: err}
	}
	if err := w.machine.fire(eventSucceeded); err != nil {
		return err
	}
	w.submission = sub
	w.logger.Info("submission accepted", "submission_id", sub.ID)
	return nil
}

func (w *Wizard) submit(ctx context.Context, req domain.ProjectRequest) (*domain.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, w.submitTimeout)
	defer cancel()

	sub, err := w.gateway.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errors.New("gateway returned no submission")
	}
	return sub, nil
}

// Retreat moves back one step, keeping every merged answer.
func (w *Wizard) Retreat() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastActive = time.Now()
	if err := w.guardLocked(); err != nil {
		return err
	}
	if err := w.machine.fire(eventRetreat); err != nil {
		return err
	}
	w.logger.Debug("wizard retreated", "step", w.machine.step())
	return nil
}

// RefreshSuggestions asks for suggestions matching a feature selection that
// is still being edited on step 2. Nothing is merged into the answers.
func (w *Wizard) RefreshSuggestions(ctx context.Context, features []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastActive = time.Now()
	if err := w.guardLocked(); err != nil {
		return err
	}
	if step := w.machine.step(); step != domain.StepFeatures {
		return fmt.Errorf("%w: feature refresh on %s", ErrStepMismatch, step)
	}
	projectType, _ := w.answers.SelectedType()
	var errs domain.ValidationErrors
	for _, id := range features {
		if !projectType.HasFeature(id) {
			errs = append(errs, domain.FieldError{
				Field:   "features",
				Message: fmt.Sprintf("%q is not a %s feature", id, projectType),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	if !sameFeatures(features, w.enrichedFeatures) {
		w.requestSuggestionsLocked(ctx, projectType, features)
	}
	return nil
}

// Ready returns ErrSubmitting or ErrFinished when the wizard takes no input.
func (w *Wizard) Ready() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.guardLocked()
}

func (w *Wizard) guardLocked() error {
	switch w.machine.phase() {
	case PhaseSubmitting:
		return ErrSubmitting
	case PhaseSubmitted:
		return ErrFinished
	}
	return nil
}

// requestSuggestionsLocked issues an enrichment call tagged with a fresh
// token. Only the call holding the newest token may replace the list.
func (w *Wizard) requestSuggestionsLocked(ctx context.Context, projectType domain.ProjectType, features []string) {
	if w.enricher == nil {
		return
	}
	w.issued++
	token := w.issued
	features = slices.Clone(features)
	w.enrichedFeatures = features

	w.inflight.Add(1)
	go w.enrich(context.WithoutCancel(ctx), token, projectType, features)
}

func (w *Wizard) enrich(ctx context.Context, token uint64, projectType domain.ProjectType, features []string) {
	defer w.inflight.Done()

	ctx, cancel := context.WithTimeout(ctx, w.enrichTimeout)
	defer cancel()

	list, err := w.enricher.FetchSuggestions(ctx, projectType, features)
	if err != nil {
		w.logger.Warn("enrichment failed", "token", token, "project_type", projectType, "error", err)
		list = nil
	}
	w.applySuggestions(token, list)
}

func (w *Wizard) applySuggestions(token uint64, list []domain.Suggestion) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if token != w.issued {
		w.logger.Debug("stale suggestions dropped", "token", token, "latest", w.issued)
		return
	}
	if list == nil {
		list = []domain.Suggestion{}
	}
	w.suggestions = slices.Clone(list)
}

// WaitForSuggestions blocks until every issued enrichment call returned.
func (w *Wizard) WaitForSuggestions() {
	w.inflight.Wait()
}

// LastActive is the time of the last call that touched the wizard.
func (w *Wizard) LastActive() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive
}

// Snapshot is a read-only view of a wizard.
type Snapshot struct {
	ID          string                 `json:"id"`
	Phase       Phase                  `json:"phase"`
	Step        domain.Step            `json:"step"`
	TotalSteps  int                    `json:"totalSteps"`
	Prompt      string                 `json:"prompt,omitempty"`
	Answers     domain.AnswerSet       `json:"answers"`
	Catalog     []domain.FeatureOption `json:"catalog,omitempty"`
	Suggestions []domain.Suggestion    `json:"suggestions"`
	Submission  *domain.Submission     `json:"submission,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// Snapshot copies the current wizard state.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	step := w.machine.step()
	if step == 0 {
		step = domain.StepContact
	}
	snap := Snapshot{
		ID:          w.id,
		Phase:       w.machine.phase(),
		Step:        step,
		TotalSteps:  domain.TotalSteps,
		Prompt:      w.prompts[step],
		Answers:     w.answers.Clone(),
		Suggestions: slices.Clone(w.suggestions),
		Error:       w.lastErr,
	}
	if snap.Suggestions == nil {
		snap.Suggestions = []domain.Suggestion{}
	}
	if projectType, ok := w.answers.SelectedType(); ok {
		snap.Catalog = domain.CatalogFor(projectType)
	}
	if w.submission != nil {
		sub := *w.submission
		snap.Submission = &sub
	}
	return snap
}

// dropForeignFeatures removes feature tags that the newly chosen project type
// does not offer. An emptied selection clears the step 2 slot.
func dropForeignFeatures(answers domain.AnswerSet) domain.AnswerSet {
	projectType, ok := answers.SelectedType()
	if !ok || answers.Features == nil {
		return answers
	}
	kept := slices.DeleteFunc(answers.Features.Features, func(id string) bool {
		return !projectType.HasFeature(id)
	})
	if len(kept) == 0 {
		answers.Features = nil
		return answers
	}
	answers.Features.Features = kept
	return answers
}

func sameFeatures(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
