package wizard_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"devcraft-studio/backend/internal/features/intake/domain"
	"devcraft-studio/backend/internal/features/intake/wizard"
)

type enrichCall struct {
	projectType domain.ProjectType
	features    []string
}

// echoEnricher answers immediately with one suggestion naming its input.
type echoEnricher struct {
	mu    sync.Mutex
	calls []enrichCall
	err   error
}

func (e *echoEnricher) FetchSuggestions(_ context.Context, pt domain.ProjectType, features []string) ([]domain.Suggestion, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, enrichCall{projectType: pt, features: features})
	if e.err != nil {
		return nil, e.err
	}
	return []domain.Suggestion{{
		Suggestion: string(pt) + ":" + strings.Join(features, ","),
		Category:   "echo",
		Impact:     domain.ImpactLow,
	}}, nil
}

func (e *echoEnricher) recorded() []enrichCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]enrichCall(nil), e.calls...)
}

type pendingCall struct {
	features []string
	reply    chan []domain.Suggestion
}

// gatedEnricher holds every call until the test releases it.
type gatedEnricher struct {
	calls chan *pendingCall
}

func (e *gatedEnricher) FetchSuggestions(ctx context.Context, _ domain.ProjectType, features []string) ([]domain.Suggestion, error) {
	c := &pendingCall{features: features, reply: make(chan []domain.Suggestion, 1)}
	e.calls <- c
	select {
	case list := <-c.reply:
		return list, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type fakeGateway struct {
	mu       sync.Mutex
	failures []error
	requests []domain.ProjectRequest
	entered  chan struct{}
	release  chan struct{}
	waitCtx  bool
}

func (g *fakeGateway) Submit(ctx context.Context, req domain.ProjectRequest) (*domain.Submission, error) {
	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.release != nil {
		<-g.release
	}
	if g.waitCtx {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if len(g.failures) > 0 {
		err := g.failures[0]
		g.failures = g.failures[1:]
		return nil, err
	}
	sub := domain.NewSubmission(int64(len(g.requests)), req, time.Now())
	return &sub, nil
}

func (g *fakeGateway) submitted() []domain.ProjectRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.ProjectRequest(nil), g.requests...)
}

func websiteRequest() domain.ProjectRequest {
	return domain.ProjectRequest{
		ProjectType:        domain.ProjectWebsite,
		Features:           []string{"seo"},
		ProjectDescription: "Brochure site for a bakery",
		TargetAudience:     "Local families",
		Timeline:           "1-2 months",
		BudgetRange:        "Under $5,000",
		Priorities:         domain.Priorities{Speed: "1", Quality: "2", Cost: "3"},
		Name:               "Ada Baker",
		Email:              "ada@example.com",
		Phone:              "555-123-4567",
		TermsAccepted:      true,
	}
}

func newWizard(t *testing.T, enricher wizard.Enricher, gateway wizard.Gateway, opts ...wizard.Option) *wizard.Wizard {
	t.Helper()
	w, err := wizard.New(enricher, gateway, opts...)
	if err != nil {
		t.Fatalf("new wizard: %v", err)
	}
	t.Cleanup(w.WaitForSuggestions)
	return w
}

// advanceTo feeds the first n-1 steps of req so the wizard sits on step n.
func advanceTo(t *testing.T, w *wizard.Wizard, req domain.ProjectRequest, n domain.Step) {
	t.Helper()
	for _, in := range req.Inputs()[:n-1] {
		if err := w.Advance(context.Background(), in); err != nil {
			t.Fatalf("advance %s: %v", in.Step(), err)
		}
	}
}

func TestWizard_FullRun(t *testing.T) {
	gateway := &fakeGateway{}
	w := newWizard(t, &echoEnricher{}, gateway)
	req := websiteRequest()

	advanceTo(t, w, req, domain.StepContact+1)

	snap := w.Snapshot()
	if snap.Phase != wizard.PhaseSubmitted {
		t.Fatalf("phase = %s, want %s", snap.Phase, wizard.PhaseSubmitted)
	}
	if snap.Submission == nil {
		t.Fatal("expected a submission")
	}
	if snap.Submission.Viewed {
		t.Error("new submission must not be viewed")
	}
	if diff := cmp.Diff(req, snap.Submission.ProjectRequest); diff != "" {
		t.Errorf("submitted fields mismatch (-want +got):\n%s", diff)
	}
	if n := len(gateway.submitted()); n != 1 {
		t.Errorf("gateway called %d times, want 1", n)
	}
}

func TestWizard_InvalidInputLeavesStateUntouched(t *testing.T) {
	req := websiteRequest()
	invalid := map[domain.Step]domain.StepInput{
		domain.StepProjectType: domain.ProjectTypeAnswers{ProjectType: "kiosk"},
		domain.StepFeatures:    domain.FeatureAnswers{Features: []string{"shopping-cart"}},
		domain.StepDetails:     domain.DetailAnswers{ProjectDescription: "tiny"},
		domain.StepBudget:      domain.BudgetAnswers{BudgetRange: "Under $5,000"},
		domain.StepContact:     domain.ContactAnswers{Name: "Ada", Email: "ada@", Phone: "123"},
	}

	for step := domain.StepProjectType; step <= domain.StepContact; step++ {
		t.Run(step.String(), func(t *testing.T) {
			gateway := &fakeGateway{}
			w := newWizard(t, nil, gateway)
			advanceTo(t, w, req, step)
			before := w.Snapshot()

			err := w.Advance(context.Background(), invalid[step])
			var verrs domain.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected validation errors, got %v", err)
			}

			after := w.Snapshot()
			if diff := cmp.Diff(before, after); diff != "" {
				t.Fatalf("snapshot changed (-before +after):\n%s", diff)
			}
			if len(gateway.submitted()) != 0 {
				t.Fatal("gateway must not be called")
			}
		})
	}
}

func TestWizard_AnswersOnlyGrow(t *testing.T) {
	w := newWizard(t, nil, &fakeGateway{})
	req := websiteRequest()

	prev := w.Snapshot().Answers
	for _, in := range req.Inputs()[:4] {
		if err := w.Advance(context.Background(), in); err != nil {
			t.Fatalf("advance %s: %v", in.Step(), err)
		}
		cur := w.Snapshot().Answers
		if prev.ProjectType != nil && cmp.Diff(prev.ProjectType, cur.ProjectType) != "" ||
			prev.Features != nil && cmp.Diff(prev.Features, cur.Features) != "" ||
			prev.Details != nil && cmp.Diff(prev.Details, cur.Details) != "" {
			t.Fatalf("answers lost after %s: before %+v after %+v", in.Step(), prev, cur)
		}
		prev = cur
	}
}

func TestWizard_RetreatThenAdvanceRoundTrip(t *testing.T) {
	w := newWizard(t, nil, &fakeGateway{})
	req := websiteRequest()
	advanceTo(t, w, req, domain.StepBudget)
	before := w.Snapshot()

	if err := w.Retreat(); err != nil {
		t.Fatalf("retreat: %v", err)
	}
	if got := w.Snapshot().Step; got != domain.StepDetails {
		t.Fatalf("step after retreat = %d, want %d", got, domain.StepDetails)
	}
	if diff := cmp.Diff(before.Answers, w.Snapshot().Answers); diff != "" {
		t.Fatalf("retreat changed answers (-want +got):\n%s", diff)
	}

	if err := w.Advance(context.Background(), req.Inputs()[domain.StepDetails-1]); err != nil {
		t.Fatalf("re-advance: %v", err)
	}
	after := w.Snapshot()
	if after.Step != domain.StepBudget {
		t.Fatalf("step = %d, want %d", after.Step, domain.StepBudget)
	}
	if diff := cmp.Diff(before.Answers, after.Answers); diff != "" {
		t.Fatalf("round trip changed answers (-want +got):\n%s", diff)
	}
}

func TestWizard_EnrichmentCalls(t *testing.T) {
	enricher := &echoEnricher{}
	w := newWizard(t, enricher, &fakeGateway{})
	req := websiteRequest()

	for _, in := range req.Inputs()[:2] {
		if err := w.Advance(context.Background(), in); err != nil {
			t.Fatalf("advance %s: %v", in.Step(), err)
		}
		w.WaitForSuggestions()
	}

	want := []enrichCall{
		{projectType: domain.ProjectWebsite, features: nil},
		{projectType: domain.ProjectWebsite, features: []string{"seo"}},
	}
	if diff := cmp.Diff(want, enricher.recorded(), cmp.AllowUnexported(enrichCall{})); diff != "" {
		t.Fatalf("enrichment calls mismatch (-want +got):\n%s", diff)
	}
	got := w.Snapshot().Suggestions
	if len(got) != 1 || got[0].Suggestion != "website:seo" {
		t.Fatalf("suggestions = %+v, want the step 2 result", got)
	}

	// Same features again after going back: no new call.
	if err := w.Retreat(); err != nil {
		t.Fatalf("retreat: %v", err)
	}
	if err := w.Advance(context.Background(), req.Inputs()[domain.StepFeatures-1]); err != nil {
		t.Fatalf("advance: %v", err)
	}
	w.WaitForSuggestions()
	if n := len(enricher.recorded()); n != 2 {
		t.Fatalf("enricher called %d times, want 2", n)
	}
}

func TestWizard_StaleSuggestionsDropped(t *testing.T) {
	enricher := &gatedEnricher{calls: make(chan *pendingCall, 4)}
	w := newWizard(t, enricher, &fakeGateway{})

	if err := w.Advance(context.Background(), domain.ProjectTypeAnswers{ProjectType: domain.ProjectEcommerce}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	first := <-enricher.calls

	if err := w.RefreshSuggestions(context.Background(), []string{"shopping-cart"}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	second := <-enricher.calls

	second.reply <- []domain.Suggestion{{Suggestion: "newer", Category: "c", Impact: domain.ImpactHigh}}
	first.reply <- []domain.Suggestion{{Suggestion: "older", Category: "c", Impact: domain.ImpactLow}}
	w.WaitForSuggestions()

	got := w.Snapshot().Suggestions
	if len(got) != 1 || got[0].Suggestion != "newer" {
		t.Fatalf("suggestions = %+v, want only the newer result", got)
	}
}

func TestWizard_EnrichmentFailureYieldsEmptyList(t *testing.T) {
	enricher := &echoEnricher{err: errors.New("model unavailable")}
	w := newWizard(t, enricher, &fakeGateway{})

	if err := w.Advance(context.Background(), domain.ProjectTypeAnswers{ProjectType: domain.ProjectDashboard}); err != nil {
		t.Fatalf("advance must not fail on enrichment errors: %v", err)
	}
	w.WaitForSuggestions()
	snap := w.Snapshot()
	if snap.Step != domain.StepFeatures {
		t.Fatalf("step = %d, want %d", snap.Step, domain.StepFeatures)
	}
	if len(snap.Suggestions) != 0 {
		t.Fatalf("suggestions = %+v, want none", snap.Suggestions)
	}
}

func TestWizard_EcommerceCatalogGatesFeatures(t *testing.T) {
	w := newWizard(t, nil, &fakeGateway{})
	if err := w.Advance(context.Background(), domain.ProjectTypeAnswers{ProjectType: domain.ProjectEcommerce}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	snap := w.Snapshot()
	if diff := cmp.Diff(domain.CatalogFor(domain.ProjectEcommerce), snap.Catalog); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}

	err := w.Advance(context.Background(), domain.FeatureAnswers{Features: []string{"shopping-cart", "blog"}})
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if err := w.Advance(context.Background(), domain.FeatureAnswers{Features: []string{"shopping-cart", "payment-gateway"}}); err != nil {
		t.Fatalf("catalog features rejected: %v", err)
	}
}

func TestWizard_TermsNotAcceptedSkipsGateway(t *testing.T) {
	gateway := &fakeGateway{}
	w := newWizard(t, nil, gateway)
	req := websiteRequest()
	advanceTo(t, w, req, domain.StepContact)

	contact := req.Inputs()[domain.StepContact-1].(domain.ContactAnswers)
	contact.TermsAccepted = false
	err := w.Advance(context.Background(), contact)

	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if _, ok := verrs.Fields()["termsAccepted"]; !ok {
		t.Fatalf("expected termsAccepted error, got %v", verrs)
	}
	if len(gateway.submitted()) != 0 {
		t.Fatal("gateway must not be called")
	}
}

func TestWizard_SubmissionFailureThenRetry(t *testing.T) {
	gateway := &fakeGateway{failures: []error{errors.New("connection refused")}}
	w := newWizard(t, nil, gateway)
	req := websiteRequest()
	advanceTo(t, w, req, domain.StepContact)
	contact := req.Inputs()[domain.StepContact-1]

	err := w.Advance(context.Background(), contact)
	var subErr *wizard.SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected submission error, got %v", err)
	}
	failed := w.Snapshot()
	if failed.Phase != wizard.PhaseStep || failed.Step != domain.StepContact {
		t.Fatalf("after failure phase=%s step=%d, want step 5", failed.Phase, failed.Step)
	}
	if failed.Error == "" {
		t.Error("failure reason should be surfaced")
	}
	got, ok := failed.Answers.Complete()
	if !ok {
		t.Fatal("answers should still be complete")
	}
	if diff := cmp.Diff(req, got); diff != "" {
		t.Fatalf("answers changed (-want +got):\n%s", diff)
	}

	if err := w.Advance(context.Background(), contact); err != nil {
		t.Fatalf("retry: %v", err)
	}
	done := w.Snapshot()
	if done.Phase != wizard.PhaseSubmitted || done.Error != "" {
		t.Fatalf("phase=%s error=%q after retry", done.Phase, done.Error)
	}
	if n := len(gateway.submitted()); n != 2 {
		t.Fatalf("gateway called %d times, want 2", n)
	}
}

func TestWizard_SubmitTimeout(t *testing.T) {
	gateway := &fakeGateway{waitCtx: true}
	w := newWizard(t, nil, gateway, wizard.WithSubmitTimeout(20*time.Millisecond))
	req := websiteRequest()
	advanceTo(t, w, req, domain.StepContact)

	err := w.Advance(context.Background(), req.Inputs()[domain.StepContact-1])
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if snap := w.Snapshot(); snap.Phase != wizard.PhaseStep || snap.Step != domain.StepContact {
		t.Fatalf("phase=%s step=%d, want back on step 5", snap.Phase, snap.Step)
	}
}

func TestWizard_BlocksWhileSubmitting(t *testing.T) {
	gateway := &fakeGateway{entered: make(chan struct{}), release: make(chan struct{})}
	w := newWizard(t, nil, gateway)
	req := websiteRequest()
	advanceTo(t, w, req, domain.StepContact)

	done := make(chan error, 1)
	go func() {
		done <- w.Advance(context.Background(), req.Inputs()[domain.StepContact-1])
	}()
	<-gateway.entered

	if snap := w.Snapshot(); snap.Phase != wizard.PhaseSubmitting {
		t.Fatalf("phase = %s, want %s", snap.Phase, wizard.PhaseSubmitting)
	}
	if err := w.Retreat(); !errors.Is(err, wizard.ErrSubmitting) {
		t.Fatalf("retreat while submitting: %v", err)
	}
	if err := w.Advance(context.Background(), req.Inputs()[domain.StepContact-1]); !errors.Is(err, wizard.ErrSubmitting) {
		t.Fatalf("advance while submitting: %v", err)
	}

	close(gateway.release)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := w.Retreat(); !errors.Is(err, wizard.ErrFinished) {
		t.Fatalf("retreat after submit: %v", err)
	}
}

func TestWizard_IllegalMoves(t *testing.T) {
	w := newWizard(t, nil, &fakeGateway{})

	if err := w.Retreat(); !errors.Is(err, wizard.ErrIllegalTransition) {
		t.Fatalf("retreat on step 1: %v", err)
	}
	if err := w.Advance(context.Background(), domain.FeatureAnswers{Features: []string{"seo"}}); !errors.Is(err, wizard.ErrStepMismatch) {
		t.Fatalf("step 2 input on step 1: %v", err)
	}
	if err := w.RefreshSuggestions(context.Background(), nil); !errors.Is(err, wizard.ErrStepMismatch) {
		t.Fatalf("refresh on step 1: %v", err)
	}
}

func TestWizard_ProjectTypeChangeDropsForeignFeatures(t *testing.T) {
	w := newWizard(t, nil, &fakeGateway{})
	ctx := context.Background()

	steps := []domain.StepInput{
		domain.ProjectTypeAnswers{ProjectType: domain.ProjectWebsite},
		domain.FeatureAnswers{Features: []string{"seo", "blog"}},
	}
	for _, in := range steps {
		if err := w.Advance(ctx, in); err != nil {
			t.Fatalf("advance %s: %v", in.Step(), err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := w.Retreat(); err != nil {
			t.Fatalf("retreat: %v", err)
		}
	}

	// Redesign still offers "seo" but not "blog".
	if err := w.Advance(ctx, domain.ProjectTypeAnswers{ProjectType: domain.ProjectRedesign}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if diff := cmp.Diff([]string{"seo"}, w.Snapshot().Answers.SelectedFeatures()); diff != "" {
		t.Fatalf("features mismatch (-want +got):\n%s", diff)
	}

	if err := w.Retreat(); err != nil {
		t.Fatalf("retreat: %v", err)
	}
	if err := w.Advance(ctx, domain.ProjectTypeAnswers{ProjectType: domain.ProjectMobileApp}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if w.Snapshot().Answers.Features != nil {
		t.Fatal("no mobile-app feature was selected, the slot should be cleared")
	}
}
